package huberrors

import "errors"

var (
	// identity gate
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("system administrator role required")

	// registration workflow
	ErrEmailTaken       = errors.New("this email is already registered")
	ErrDuplicateRequest = errors.New("a registration request for this email already exists")
	ErrInvalidToken     = errors.New("invalid activation token")
	ErrTokenExpired     = errors.New("activation token expired")

	// request workflow
	ErrDuplicatePending = errors.New("this service is already pending approval")
	ErrAlreadyResolved  = errors.New("request already resolved")

	// shared
	ErrRequestNotFound = errors.New("request not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrRoleNotFound    = errors.New("role not found")
	ErrMissingField    = errors.New("missing required field")
)
