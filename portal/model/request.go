package model

// RequestStatus is the permission-request state machine:
// PENDING -> APPROVED | REJECTED, both terminal.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

// PermissionRequest is a pending or resolved ask for a UserPermission.
// Resolved rows are retained as the audit trail; only the owning user's
// deletion removes them.
type PermissionRequest struct {
	Model
	UserID       string        `gorm:"index;not null" json:"user_id"`
	ServiceID    string        `gorm:"index;not null" json:"service_id"`
	RoleID       string        `gorm:"not null" json:"role_id"`
	DepartmentID *string       `json:"department_id,omitempty"`
	Status       RequestStatus `gorm:"type:varchar(20);default:PENDING;not null" json:"status"`

	User       *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Service    *Service    `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Role       *Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

func (PermissionRequest) TableName() string {
	return "t_permission_request"
}
