package model

// Service is a protectable internal application. The catalog is static,
// seeded out of band.
type Service struct {
	Model
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
}

func (Service) TableName() string {
	return "t_service"
}

// Role is a permission level. One reserved name denotes the system
// administrator super-role; see DefaultSystemAdminRole.
type Role struct {
	Model
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

func (Role) TableName() string {
	return "t_role"
}

// Department is one node of the org tree, stored flat. ParentID is
// assigned once at creation so the structure is acyclic by construction.
type Department struct {
	Model
	Name     string  `gorm:"not null" json:"name"`
	ParentID *string `gorm:"index" json:"parent_id,omitempty"`
}

func (Department) TableName() string {
	return "t_department"
}

// DepartmentNode is the read-side tree materialization of Department.
type DepartmentNode struct {
	Department
	Children []*DepartmentNode `json:"children"`
}
