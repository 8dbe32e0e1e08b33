package http

import (
	"errors"
	"strings"

	"accesshub/pkg/huberrors"
	"accesshub/portal/service"
	"accesshub/portal/utils"

	"github.com/gin-gonic/gin"
)

// CtxSessionKey is where the auth filter stores the caller's Session.
const CtxSessionKey = "session"

// authCheck validates the bearer token and rebuilds the caller session
// for downstream handlers.
func (s *Server) authCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			WriteUnauthorized(c.JSON, "authorization header is missing or invalid")
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ParseSessionToken(tokenString)
		if err != nil {
			WriteUnauthorized(c.JSON, "token is expired or invalid")
			c.Abort()
			return
		}

		session, err := s.auth.SessionFor(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, huberrors.ErrUserNotFound) {
				WriteUnauthorized(c.JSON, "token is expired or invalid")
			} else {
				WriteError(c.JSON, err.Error())
			}
			c.Abort()
			return
		}

		c.Set(CtxSessionKey, session)
		c.Next()
	}
}

// adminCheck gates the admin route group on the session snapshot. The
// admin services re-verify against the store per call; this filter only
// rejects obvious non-admins at the edge.
func (s *Server) adminCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		if session == nil {
			WriteUnauthorized(c.JSON, "no session")
			c.Abort()
			return
		}
		if !session.HasRole(s.directory.AdminRole()) {
			WriteForbidden(c.JSON, huberrors.ErrUnauthorized.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *service.Session {
	v, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*service.Session)
	return session
}

// writeServiceError maps the error taxonomy onto the response envelope.
// Raw storage errors never carry a sentinel and land in the 500 bucket.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, huberrors.ErrMissingField):
		WriteBadRequest(c.JSON, err.Error())
	case errors.Is(err, huberrors.ErrInvalidCredentials):
		WriteUnauthorized(c.JSON, err.Error())
	case errors.Is(err, huberrors.ErrUnauthorized):
		WriteForbidden(c.JSON, err.Error())
	case errors.Is(err, huberrors.ErrRequestNotFound),
		errors.Is(err, huberrors.ErrUserNotFound),
		errors.Is(err, huberrors.ErrRoleNotFound),
		errors.Is(err, huberrors.ErrInvalidToken),
		errors.Is(err, huberrors.ErrTokenExpired):
		WriteNotFound(c.JSON, err.Error())
	case errors.Is(err, huberrors.ErrEmailTaken),
		errors.Is(err, huberrors.ErrDuplicateRequest),
		errors.Is(err, huberrors.ErrDuplicatePending),
		errors.Is(err, huberrors.ErrAlreadyResolved):
		WriteConflict(c.JSON, err.Error())
	default:
		WriteError(c.JSON, err.Error())
	}
}
