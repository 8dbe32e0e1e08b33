package model

// User is an authenticated principal. Rows come from three places:
// federated first sign-in, registration activation, and nothing else —
// admins never create users directly, they approve registrations.
type User struct {
	Model
	Name       string `json:"name"`
	Email      string `gorm:"uniqueIndex;not null" json:"email"`
	Password   string `json:"-"` // bcrypt hash; empty for federated-only users
	ExternalID string `gorm:"column:external_id" json:"external_id,omitempty"`
	Avatar     string `json:"avatar,omitempty"`

	Permissions []UserPermission `gorm:"foreignKey:UserID" json:"permissions,omitempty"`
}

func (User) TableName() string {
	return "t_user"
}
