package service

import (
	"context"
	"errors"

	"accesshub/pkg/huberrors"
	"accesshub/pkg/log"
	"accesshub/portal/metrics"
	"accesshub/portal/model"
	"accesshub/portal/repository"

	"gorm.io/gorm"
)

// RequestService drives the permission-request state machine:
// submit -> PENDING -> APPROVED | REJECTED. Terminal states are never
// re-transitioned; approval also writes the grant.
type RequestService interface {
	Submit(ctx context.Context, userID, serviceID, roleID string, departmentID *string) (*model.PermissionRequest, error)
	ListPending(ctx context.Context) ([]*model.PermissionRequest, error)
	ListPendingFor(ctx context.Context, userID string) ([]*model.PermissionRequest, error)
	Approve(ctx context.Context, requestID string) error
	Reject(ctx context.Context, requestID string) error
}

var _ RequestService = (*requestServiceImpl)(nil)

type requestServiceImpl struct {
	db        *gorm.DB
	reqRepo   repository.RequestRepository
	directory DirectoryService
	logger    *log.Logger
}

func NewRequestService(db *gorm.DB, directory DirectoryService) RequestService {
	return &requestServiceImpl{
		db:        db,
		reqRepo:   repository.NewRequestRepository(db),
		directory: directory,
		logger:    log.NewLogger(log.Loglevel, "request-service"),
	}
}

func (s *requestServiceImpl) Submit(ctx context.Context, userID, serviceID, roleID string, departmentID *string) (*model.PermissionRequest, error) {
	if userID == "" || serviceID == "" || roleID == "" {
		return nil, huberrors.ErrMissingField
	}

	pending, err := s.reqRepo.HasPendingForService(ctx, userID, serviceID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, huberrors.ErrDuplicatePending
	}

	request := &model.PermissionRequest{
		UserID:       userID,
		ServiceID:    serviceID,
		RoleID:       roleID,
		DepartmentID: departmentID,
		Status:       model.StatusPending,
	}
	if err := s.reqRepo.Create(ctx, request); err != nil {
		return nil, err
	}
	metrics.RequestTransitions.WithLabelValues("submitted").Inc()
	return request, nil
}

func (s *requestServiceImpl) ListPending(ctx context.Context) ([]*model.PermissionRequest, error) {
	return s.reqRepo.ListPending(ctx)
}

func (s *requestServiceImpl) ListPendingFor(ctx context.Context, userID string) ([]*model.PermissionRequest, error) {
	return s.reqRepo.ListPendingByUser(ctx, userID)
}

// Approve runs the two-row transition in one transaction: the status
// update and the grant upsert commit together or not at all. The grant
// upsert overwrites role and department for an already-granted service,
// never duplicates.
func (s *requestServiceImpl) Approve(ctx context.Context, requestID string) error {
	request, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return huberrors.ErrRequestNotFound
		}
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.reqRepo.WithTx(tx).Resolve(ctx, request.ID, model.StatusApproved)
		if err != nil {
			return err
		}
		if !ok {
			return huberrors.ErrAlreadyResolved
		}
		return repository.NewPermissionRepository(tx).
			Upsert(ctx, request.UserID, request.ServiceID, request.RoleID, request.DepartmentID)
	})
	if err != nil {
		return err
	}

	s.directory.InvalidatePermissions(ctx, request.UserID)
	metrics.RequestTransitions.WithLabelValues("approved").Inc()
	s.logger.Infof("request %s approved: user=%s service=%s", request.ID, request.UserID, request.ServiceID)
	return nil
}

// Reject marks the request REJECTED in place. The row is retained as the
// audit trail, unlike registration rejection which deletes.
func (s *requestServiceImpl) Reject(ctx context.Context, requestID string) error {
	ok, err := s.reqRepo.Resolve(ctx, requestID, model.StatusRejected)
	if err != nil {
		return err
	}
	if !ok {
		if _, err := s.reqRepo.GetByID(ctx, requestID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return huberrors.ErrRequestNotFound
			}
			return err
		}
		return huberrors.ErrAlreadyResolved
	}
	metrics.RequestTransitions.WithLabelValues("rejected").Inc()
	return nil
}
