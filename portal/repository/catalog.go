package repository

import (
	"context"

	"accesshub/portal/model"

	"gorm.io/gorm"
)

// CatalogRepository is read-only access to the static catalogs.
type CatalogRepository interface {
	ListServices(ctx context.Context) ([]*model.Service, error)

	// ListRoles returns the assignable roles, excluding the reserved
	// admin role: it must never be self-requested.
	ListRoles(ctx context.Context, excludeName string) ([]*model.Role, error)

	GetRoleByName(ctx context.Context, name string) (*model.Role, error)
	ListDepartments(ctx context.Context) ([]*model.Department, error)
}

var _ CatalogRepository = (*catalogRepository)(nil)

type catalogRepository struct {
	services    *BaseRepository[model.Service]
	roles       *BaseRepository[model.Role]
	departments *BaseRepository[model.Department]
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{
		services:    NewBaseRepository[model.Service](db),
		roles:       NewBaseRepository[model.Role](db),
		departments: NewBaseRepository[model.Department](db),
	}
}

func byName(db *gorm.DB) *gorm.DB {
	return db.Order("name asc")
}

func (r *catalogRepository) ListServices(ctx context.Context) ([]*model.Service, error) {
	return r.services.Find(ctx, byName)
}

func (r *catalogRepository) ListRoles(ctx context.Context, excludeName string) ([]*model.Role, error) {
	return r.roles.Find(ctx, byName, func(db *gorm.DB) *gorm.DB {
		return db.Where("name <> ?", excludeName)
	})
}

func (r *catalogRepository) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	role, err := r.roles.First(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("name = ?", name)
	})
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return role, nil
}

func (r *catalogRepository) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	return r.departments.Find(ctx)
}
