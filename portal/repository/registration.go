package repository

import (
	"context"
	"time"

	"accesshub/portal/model"

	"gorm.io/gorm"
)

type RegistrationRepository interface {
	WithTx(tx *gorm.DB) RegistrationRepository

	Create(ctx context.Context, request *model.RegistrationRequest) error
	GetByID(ctx context.Context, id string) (*model.RegistrationRequest, error)
	GetByToken(ctx context.Context, token string) (*model.RegistrationRequest, error)

	// ListPending is the first admin queue: submitted, no token yet.
	ListPending(ctx context.Context) ([]*model.RegistrationRequest, error)
	// ListAwaitingActivation is the second queue: approved, mail sent,
	// user has not activated yet.
	ListAwaitingActivation(ctx context.Context) ([]*model.RegistrationRequest, error)

	// Approve stamps the activation token and its absolute expiry and
	// moves the row to APPROVED.
	Approve(ctx context.Context, id, token string, expiresAt time.Time) error

	// Delete removes the row whatever its status. Rejection and
	// activation both consume the request this way.
	Delete(ctx context.Context, id string) error
}

var _ RegistrationRepository = (*registrationRepository)(nil)

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) WithTx(tx *gorm.DB) RegistrationRepository {
	return NewRegistrationRepository(tx)
}

func (r *registrationRepository) Create(ctx context.Context, request *model.RegistrationRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*model.RegistrationRequest, error) {
	var request model.RegistrationRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *registrationRepository) GetByToken(ctx context.Context, token string) (*model.RegistrationRequest, error) {
	var request model.RegistrationRequest
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *registrationRepository) ListPending(ctx context.Context) ([]*model.RegistrationRequest, error) {
	var requests []*model.RegistrationRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND token IS NULL", model.StatusPending).
		Order("created_at desc").
		Find(&requests).Error
	return requests, err
}

func (r *registrationRepository) ListAwaitingActivation(ctx context.Context) ([]*model.RegistrationRequest, error) {
	var requests []*model.RegistrationRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND token IS NOT NULL", model.StatusApproved).
		Order("updated_at desc").
		Find(&requests).Error
	return requests, err
}

func (r *registrationRepository) Approve(ctx context.Context, id, token string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.RegistrationRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.StatusApproved,
			"token":      token,
			"expires_at": expiresAt,
		}).Error
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.RegistrationRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
