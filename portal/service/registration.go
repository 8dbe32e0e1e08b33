package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accesshub/pkg/huberrors"
	"accesshub/pkg/log"
	"accesshub/portal/metrics"
	"accesshub/portal/model"
	"accesshub/portal/repository"
	"accesshub/portal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// activationWindow is the absolute token lifetime from the approval
// instant.
const activationWindow = 24 * time.Hour

// ApprovalResult reports an approval plus the outcome of the activation
// mail. EmailErr is informational: the approval has committed either way
// and the operator can resend out of band.
type ApprovalResult struct {
	Email     string `json:"email"`
	EmailSent bool   `json:"email_sent"`
	EmailErr  string `json:"email_error,omitempty"`
}

// RegistrationService drives the account-registration state machine:
// submit -> PENDING -> APPROVED (token issued, mail sent) -> activated
// (row consumed, User exists), with rejection deleting the row at either
// pre-activation stage.
type RegistrationService interface {
	Submit(ctx context.Context, name, email, password string) (*model.RegistrationRequest, error)
	ListPending(ctx context.Context) ([]*model.RegistrationRequest, error)
	ListAwaitingActivation(ctx context.Context) ([]*model.RegistrationRequest, error)
	Approve(ctx context.Context, requestID string) (*ApprovalResult, error)
	Reject(ctx context.Context, requestID string) error
	Activate(ctx context.Context, token string) (*model.User, error)
}

var _ RegistrationService = (*registrationServiceImpl)(nil)

type registrationServiceImpl struct {
	db      *gorm.DB
	regRepo repository.RegistrationRepository
	mail    MailSender
	baseURL string
	logger  *log.Logger
}

func NewRegistrationService(db *gorm.DB, mail MailSender, baseURL string) RegistrationService {
	return &registrationServiceImpl{
		db:      db,
		regRepo: repository.NewRegistrationRepository(db),
		mail:    mail,
		baseURL: baseURL,
		logger:  log.NewLogger(log.Loglevel, "registration-service"),
	}
}

func (s *registrationServiceImpl) Submit(ctx context.Context, name, email, password string) (*model.RegistrationRequest, error) {
	if name == "" || email == "" || password == "" {
		return nil, huberrors.ErrMissingField
	}

	// an existing account wins over any request state
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, huberrors.ErrEmailTaken
	}

	hashed, err := utils.EncryptPassword(password)
	if err != nil {
		return nil, err
	}

	request := &model.RegistrationRequest{
		Name:     name,
		Email:    email,
		Password: hashed,
		Status:   model.StatusPending,
	}
	if err := s.regRepo.Create(ctx, request); err != nil {
		// the unique index on email is the canonical duplicate guard;
		// the pre-check above only covers activated accounts
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, huberrors.ErrDuplicateRequest
		}
		return nil, err
	}

	metrics.RegistrationTransitions.WithLabelValues("submitted").Inc()
	s.logger.Infof("registration submitted for %s", email)
	return request, nil
}

func (s *registrationServiceImpl) ListPending(ctx context.Context) ([]*model.RegistrationRequest, error) {
	return s.regRepo.ListPending(ctx)
}

func (s *registrationServiceImpl) ListAwaitingActivation(ctx context.Context) ([]*model.RegistrationRequest, error) {
	return s.regRepo.ListAwaitingActivation(ctx)
}

// Approve stamps a fresh token and 24h expiry, commits, then attempts
// the activation mail. Approving an already-approved request re-issues
// the token, which doubles as the operator's resend path.
func (s *registrationServiceImpl) Approve(ctx context.Context, requestID string) (*ApprovalResult, error) {
	request, err := s.regRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huberrors.ErrRequestNotFound
		}
		return nil, err
	}

	token := uuid.New().String()
	expiresAt := time.Now().Add(activationWindow)
	if err := s.regRepo.Approve(ctx, request.ID, token, expiresAt); err != nil {
		return nil, err
	}
	metrics.RegistrationTransitions.WithLabelValues("approved").Inc()

	activationURL := fmt.Sprintf("%s/verify-registration?token=%s", s.baseURL, token)
	result := &ApprovalResult{Email: request.Email, EmailSent: true}
	if err := s.mail.SendActivationEmail(request.Email, activationURL); err != nil {
		// the approval stands; surface the failure on the result only
		s.logger.Errorf("activation mail for %s failed: %v", request.Email, err)
		metrics.ActivationEmails.WithLabelValues("failed").Inc()
		result.EmailSent = false
		result.EmailErr = err.Error()
		return result, nil
	}
	metrics.ActivationEmails.WithLabelValues("sent").Inc()
	return result, nil
}

// Reject deletes the row whatever its status; the applicant must
// resubmit. A deleted request's token can never be activated.
func (s *registrationServiceImpl) Reject(ctx context.Context, requestID string) error {
	if err := s.regRepo.Delete(ctx, requestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return huberrors.ErrRequestNotFound
		}
		return err
	}
	metrics.RegistrationTransitions.WithLabelValues("rejected").Inc()
	return nil
}

// Activate consumes an approved request: one transaction creates the
// User from the stored name, email and password hash and deletes the
// request, so a crash can never leave a half-activated state.
func (s *registrationServiceImpl) Activate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, huberrors.ErrInvalidToken
	}

	request, err := s.regRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huberrors.ErrInvalidToken
		}
		return nil, err
	}
	if request.ExpiresAt == nil {
		return nil, huberrors.ErrInvalidToken
	}
	if time.Now().After(*request.ExpiresAt) {
		return nil, huberrors.ErrTokenExpired
	}

	user := &model.User{
		Name:     request.Name,
		Email:    request.Email,
		Password: request.Password,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return repository.NewRegistrationRepository(tx).Delete(ctx, request.ID)
	})
	if err != nil {
		return nil, err
	}

	metrics.RegistrationTransitions.WithLabelValues("activated").Inc()
	s.logger.Infof("registration for %s activated", user.Email)
	return user, nil
}
