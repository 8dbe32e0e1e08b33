package service

import (
	"context"
	"errors"

	"accesshub/pkg/huberrors"
	"accesshub/pkg/log"
	"accesshub/portal/model"
	"accesshub/portal/repository"

	"gorm.io/gorm"
)

// AdminService is the privileged surface. Every method re-checks the
// caller against the store before doing anything: holding the reserved
// admin role is verified per call, not read from a session snapshot, so
// a revoked admin loses the surface immediately.
type AdminService interface {
	// PromoteToSystemAdmin grants the reserved role on every service in
	// the catalog. The upserts are independent; a service added later is
	// not granted retroactively.
	PromoteToSystemAdmin(ctx context.Context, callerID, email string) error

	ListUsers(ctx context.Context, callerID string) ([]*model.User, error)
	DeleteUser(ctx context.Context, callerID, userID string) error

	PendingRequests(ctx context.Context, callerID string) ([]*model.PermissionRequest, error)
	ApproveRequest(ctx context.Context, callerID, requestID string) error
	RejectRequest(ctx context.Context, callerID, requestID string) error

	PendingRegistrations(ctx context.Context, callerID string) ([]*model.RegistrationRequest, error)
	AwaitingActivation(ctx context.Context, callerID string) ([]*model.RegistrationRequest, error)
	ApproveRegistration(ctx context.Context, callerID, requestID string) (*ApprovalResult, error)
	RejectRegistration(ctx context.Context, callerID, requestID string) error
}

var _ AdminService = (*adminServiceImpl)(nil)

type adminServiceImpl struct {
	userRepo      repository.UserRepository
	catalogRepo   repository.CatalogRepository
	permRepo      repository.PermissionRepository
	directory     DirectoryService
	registrations RegistrationService
	requests      RequestService
	logger        *log.Logger
}

func NewAdminService(db *gorm.DB, directory DirectoryService, registrations RegistrationService, requests RequestService) AdminService {
	return &adminServiceImpl{
		userRepo:      repository.NewUserRepository(db),
		catalogRepo:   repository.NewCatalogRepository(db),
		permRepo:      repository.NewPermissionRepository(db),
		directory:     directory,
		registrations: registrations,
		requests:      requests,
		logger:        log.NewLogger(log.Loglevel, "admin-service"),
	}
}

func (s *adminServiceImpl) ensureSystemAdmin(ctx context.Context, callerID string) error {
	if callerID == "" {
		return huberrors.ErrUnauthorized
	}
	ok, err := s.directory.IsSystemAdmin(ctx, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return huberrors.ErrUnauthorized
	}
	return nil
}

func (s *adminServiceImpl) PromoteToSystemAdmin(ctx context.Context, callerID, email string) error {
	if err := s.ensureSystemAdmin(ctx, callerID); err != nil {
		return err
	}
	if err := Promote(ctx, s.userRepo, s.catalogRepo, s.permRepo, s.directory.AdminRole(), email); err != nil {
		return err
	}
	if user, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		s.directory.InvalidatePermissions(ctx, user.ID)
	}
	s.logger.Infof("promoted %s across the service catalog", email)
	return nil
}

// Promote is the ungated promotion core, shared with the operator CLI:
// the very first administrator has to be minted without an admin caller.
// For every service in the catalog the reserved role is upserted as an
// independent write; a crash mid-loop leaves a partial promotion that a
// rerun completes.
func Promote(ctx context.Context, userRepo repository.UserRepository, catalogRepo repository.CatalogRepository, permRepo repository.PermissionRepository, adminRole, email string) error {
	user, err := userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return huberrors.ErrUserNotFound
		}
		return err
	}

	role, err := catalogRepo.GetRoleByName(ctx, adminRole)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return huberrors.ErrRoleNotFound
		}
		return err
	}

	services, err := catalogRepo.ListServices(ctx)
	if err != nil {
		return err
	}
	for _, svc := range services {
		if err := permRepo.Upsert(ctx, user.ID, svc.ID, role.ID, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *adminServiceImpl) ListUsers(ctx context.Context, callerID string) ([]*model.User, error) {
	if err := s.ensureSystemAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.userRepo.ListWithGrants(ctx)
}

func (s *adminServiceImpl) DeleteUser(ctx context.Context, callerID, userID string) error {
	if err := s.ensureSystemAdmin(ctx, callerID); err != nil {
		return err
	}
	if err := s.userRepo.DeleteCascade(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return huberrors.ErrUserNotFound
		}
		return err
	}
	s.directory.InvalidatePermissions(ctx, userID)
	s.logger.Infof("deleted user %s and cascaded grants", userID)
	return nil
}

func (s *adminServiceImpl) PendingRequests(ctx context.Context, callerID string) ([]*model.PermissionRequest, error) {
	if err := s.ensureSystemAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.requests.ListPending(ctx)
}

func (s *adminServiceImpl) ApproveRequest(ctx context.Context, callerID, requestID string) error {
	if err := s.ensureSystemAdmin(ctx, callerID); err != nil {
		return err
	}
	return s.requests.Approve(ctx, requestID)
}

func (s *adminServiceImpl) RejectRequest(ctx context.Context, callerID, requestID string) error {
	if err := s.ensureSystemAdmin(ctx, callerID); err != nil {
		return err
	}
	return s.requests.Reject(ctx, requestID)
}

func (s *adminServiceImpl) PendingRegistrations(ctx context.Context, callerID string) ([]*model.RegistrationRequest, error) {
	if err := s.ensureSystemAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.registrations.ListPending(ctx)
}

func (s *adminServiceImpl) AwaitingActivation(ctx context.Context, callerID string) ([]*model.RegistrationRequest, error) {
	if err := s.ensureSystemAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.registrations.ListAwaitingActivation(ctx)
}

func (s *adminServiceImpl) ApproveRegistration(ctx context.Context, callerID, requestID string) (*ApprovalResult, error) {
	if err := s.ensureSystemAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.registrations.Approve(ctx, requestID)
}

func (s *adminServiceImpl) RejectRegistration(ctx context.Context, callerID, requestID string) error {
	if err := s.ensureSystemAdmin(ctx, callerID); err != nil {
		return err
	}
	return s.registrations.Reject(ctx, requestID)
}
