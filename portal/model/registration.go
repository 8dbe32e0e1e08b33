package model

import "time"

// RegistrationRequest is a pending or admin-approved ask to create a User.
// The row is consumed: activation and rejection both delete it, so a
// surviving row is always pre-activation. Invariants:
//   - PENDING  => Token nil, ExpiresAt nil
//   - APPROVED => Token and ExpiresAt non-nil
//
// The unique index on email is the storage-level guard against concurrent
// duplicate submissions; the token index makes activation a point lookup.
type RegistrationRequest struct {
	Model
	Name     string        `gorm:"not null" json:"name"`
	Email    string        `gorm:"uniqueIndex;not null" json:"email"`
	Password string        `gorm:"not null" json:"-"` // bcrypt hash, carried into the User on activation
	Status   RequestStatus `gorm:"type:varchar(20);default:PENDING;not null" json:"status"`

	Token     *string    `gorm:"uniqueIndex" json:"-"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (RegistrationRequest) TableName() string {
	return "t_registration_request"
}
