package repository

import (
	"context"

	"accesshub/portal/model"

	"gorm.io/gorm"
)

type PermissionRepository interface {
	WithTx(tx *gorm.DB) PermissionRepository

	// ListByUser returns the user's grants with service and role
	// display data preloaded, oldest grant first.
	ListByUser(ctx context.Context, userID string) ([]*model.UserPermission, error)

	// Upsert writes the grant for (user, service): update in place when
	// one exists, create otherwise. The composite unique index keeps
	// this race-safe under concurrent approvals.
	Upsert(ctx context.Context, userID, serviceID, roleID string, departmentID *string) error

	// HoldsRole reports whether the user holds a grant whose role name
	// equals roleName on any service.
	HoldsRole(ctx context.Context, userID, roleName string) (bool, error)
}

var _ PermissionRepository = (*permissionRepository)(nil)

type permissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) WithTx(tx *gorm.DB) PermissionRepository {
	return NewPermissionRepository(tx)
}

func (r *permissionRepository) ListByUser(ctx context.Context, userID string) ([]*model.UserPermission, error) {
	var grants []*model.UserPermission
	err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Role").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&grants).Error
	return grants, err
}

func (r *permissionRepository) Upsert(ctx context.Context, userID, serviceID, roleID string, departmentID *string) error {
	var grant model.UserPermission
	return r.db.WithContext(ctx).
		Where(model.UserPermission{UserID: userID, ServiceID: serviceID}).
		Assign(map[string]interface{}{
			"role_id":       roleID,
			"department_id": departmentID,
		}).
		FirstOrCreate(&grant).Error
}

func (r *permissionRepository) HoldsRole(ctx context.Context, userID, roleName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserPermission{}).
		Joins("JOIN t_role ON t_role.id = t_user_permission.role_id").
		Where("t_user_permission.user_id = ? AND t_role.name = ?", userID, roleName).
		Count(&count).Error
	return count > 0, err
}
