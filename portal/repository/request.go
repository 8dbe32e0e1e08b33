package repository

import (
	"context"

	"accesshub/portal/model"

	"gorm.io/gorm"
)

type RequestRepository interface {
	WithTx(tx *gorm.DB) RequestRepository

	Create(ctx context.Context, request *model.PermissionRequest) error
	GetByID(ctx context.Context, id string) (*model.PermissionRequest, error)

	// ListPending returns all PENDING requests with display data,
	// newest first.
	ListPending(ctx context.Context) ([]*model.PermissionRequest, error)
	ListPendingByUser(ctx context.Context, userID string) ([]*model.PermissionRequest, error)

	HasPendingForService(ctx context.Context, userID, serviceID string) (bool, error)

	// Resolve transitions a PENDING request to a terminal status. It
	// reports false when the row exists but is no longer PENDING; the
	// guarded update makes the terminal transition race-safe.
	Resolve(ctx context.Context, id string, status model.RequestStatus) (bool, error)
}

var _ RequestRepository = (*requestRepository)(nil)

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) WithTx(tx *gorm.DB) RequestRepository {
	return NewRequestRepository(tx)
}

func (r *requestRepository) Create(ctx context.Context, request *model.PermissionRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*model.PermissionRequest, error) {
	var request model.PermissionRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) ListPending(ctx context.Context) ([]*model.PermissionRequest, error) {
	var requests []*model.PermissionRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Service").
		Preload("Role").
		Preload("Department").
		Where("status = ?", model.StatusPending).
		Order("created_at desc").
		Find(&requests).Error
	return requests, err
}

func (r *requestRepository) ListPendingByUser(ctx context.Context, userID string) ([]*model.PermissionRequest, error) {
	var requests []*model.PermissionRequest
	err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Role").
		Preload("Department").
		Where("user_id = ? AND status = ?", userID, model.StatusPending).
		Order("created_at desc").
		Find(&requests).Error
	return requests, err
}

func (r *requestRepository) HasPendingForService(ctx context.Context, userID, serviceID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PermissionRequest{}).
		Where("user_id = ? AND service_id = ? AND status = ?", userID, serviceID, model.StatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *requestRepository) Resolve(ctx context.Context, id string, status model.RequestStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.PermissionRequest{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
