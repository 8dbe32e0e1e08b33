package service

import (
	"context"
	"errors"
	"time"

	"accesshub/pkg/huberrors"
	"accesshub/pkg/log"
	"accesshub/portal/model"
	"accesshub/portal/repository"
	"accesshub/portal/utils"

	"gorm.io/gorm"
)

const sessionTTL = 12 * time.Hour

// FederatedClaims is what the identity provider asserts about a user.
// The assertion is trusted as-is; the OIDC layer has already verified it.
type FederatedClaims struct {
	Subject string
	Name    string
	Email   string
	Avatar  string
}

// LoginResult carries the session snapshot and its bearer token.
type LoginResult struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

// AuthService is the identity gate: credential or federated assertion in,
// authenticated principal out.
type AuthService interface {
	// Login verifies a local email+password pair. Unknown email, absent
	// hash and wrong password all collapse to ErrInvalidCredentials —
	// account existence must not leak.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// LoginFederated finds or creates the user matching a verified
	// identity-provider assertion.
	LoginFederated(ctx context.Context, claims *FederatedClaims) (*LoginResult, error)

	// SessionFor rebuilds a Session for an already-verified user id, as
	// the auth filter does on each request.
	SessionFor(ctx context.Context, userID string) (*Session, error)
}

var _ AuthService = (*authServiceImpl)(nil)

type authServiceImpl struct {
	userRepo  repository.UserRepository
	directory DirectoryService
	logger    *log.Logger
}

func NewAuthService(db *gorm.DB, directory DirectoryService) AuthService {
	return &authServiceImpl{
		userRepo:  repository.NewUserRepository(db),
		directory: directory,
		logger:    log.NewLogger(log.Loglevel, "auth-service"),
	}
}

func (a *authServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, huberrors.ErrInvalidCredentials
	}

	user, err := a.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huberrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Password == "" {
		// federated-only account, no local credential
		return nil, huberrors.ErrInvalidCredentials
	}

	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, huberrors.ErrInvalidCredentials
	}

	return a.buildResult(ctx, user)
}

func (a *authServiceImpl) LoginFederated(ctx context.Context, claims *FederatedClaims) (*LoginResult, error) {
	if claims == nil || claims.Email == "" {
		return nil, huberrors.ErrInvalidCredentials
	}

	// prefer the provider's stable subject; email is the linking
	// fallback for accounts that predate federation
	if claims.Subject != "" {
		if user, err := a.userRepo.GetByExternalID(ctx, claims.Subject); err == nil {
			return a.buildResult(ctx, user)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	user, err := a.userRepo.GetByEmail(ctx, claims.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// first federated sign-in creates the user
		user = &model.User{
			Name:       claims.Name,
			Email:      claims.Email,
			ExternalID: claims.Subject,
			Avatar:     claims.Avatar,
		}
		if err := a.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		a.logger.Infof("created user %s from federated sign-in", user.Email)
	} else if user.ExternalID == "" && claims.Subject != "" {
		user.ExternalID = claims.Subject
		if claims.Avatar != "" {
			user.Avatar = claims.Avatar
		}
		if err := a.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return a.buildResult(ctx, user)
}

func (a *authServiceImpl) SessionFor(ctx context.Context, userID string) (*Session, error) {
	user, err := a.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huberrors.ErrUserNotFound
		}
		return nil, err
	}
	return a.session(ctx, user)
}

func (a *authServiceImpl) buildResult(ctx context.Context, user *model.User) (*LoginResult, error) {
	session, err := a.session(ctx, user)
	if err != nil {
		return nil, err
	}
	token, err := utils.GenerateSessionToken(user.ID, user.Email, sessionTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: session, Token: token}, nil
}

func (a *authServiceImpl) session(ctx context.Context, user *model.User) (*Session, error) {
	perms, err := a.directory.UserPermissions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Avatar:      user.Avatar,
		Permissions: perms,
	}, nil
}
