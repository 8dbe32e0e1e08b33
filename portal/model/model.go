package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model is the embedded base for every portal entity: a text uuid primary
// key issued on create plus timestamps. Rows are hard-deleted; several
// workflows (email re-registration, grant uniqueness) depend on unique
// indexes that soft-deleted rows would keep occupied.
type Model struct {
	ID        string    `gorm:"primaryKey;type:text;autoIncrement:false" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Model) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// DefaultSystemAdminRole is the reserved role name. Holding it on any
// service grants blanket authority portal-wide. The effective name is
// resolved once at startup from config; this is only the fallback.
const DefaultSystemAdminRole = "システム管理者"
