package model

// UserPermission is one user's standing grant on one service. The
// composite unique index is the invariant: at most one role per user per
// service at any time. Approving a request for an already-granted service
// overwrites role and department in place.
type UserPermission struct {
	Model
	UserID       string  `gorm:"uniqueIndex:idx_user_service;not null" json:"user_id"`
	ServiceID    string  `gorm:"uniqueIndex:idx_user_service;not null" json:"service_id"`
	RoleID       string  `gorm:"not null" json:"role_id"`
	DepartmentID *string `json:"department_id,omitempty"`

	User       *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Service    *Service    `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Role       *Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

func (UserPermission) TableName() string {
	return "t_user_permission"
}

// PermissionInfo is the session-facing projection of a grant: service and
// role display names only, in grant order.
type PermissionInfo struct {
	Service string `json:"service"`
	Role    string `json:"role"`
}
