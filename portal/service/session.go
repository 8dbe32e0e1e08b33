package service

import "accesshub/portal/model"

// Session is the authenticated principal handed to every downstream
// authorization check: the user's identity plus the resolved (service,
// role) pairs at login time. Admin operations re-resolve against the
// store per call instead of trusting this snapshot.
type Session struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name,omitempty"`
	Email       string                 `json:"email"`
	Avatar      string                 `json:"avatar,omitempty"`
	Permissions []model.PermissionInfo `json:"permissions"`
}

// HasRole reports whether any held grant carries the role name.
func (s *Session) HasRole(role string) bool {
	for _, p := range s.Permissions {
		if p.Role == role {
			return true
		}
	}
	return false
}
