package service

import (
	"context"
	"encoding/json"
	"time"

	"accesshub/pkg/log"
	"accesshub/pkg/redis"
	"accesshub/portal/model"
	"accesshub/portal/repository"

	"gorm.io/gorm"
)

const permCacheTTL = 5 * time.Minute

// DirectoryService answers read-only questions about the catalogs and a
// user's standing grants.
type DirectoryService interface {
	ListServices(ctx context.Context) ([]*model.Service, error)
	ListRoles(ctx context.Context) ([]*model.Role, error)
	DepartmentTree(ctx context.Context) ([]*model.DepartmentNode, error)

	// UserPermissions returns the resolved (service, role) pairs in
	// grant order, cached briefly when redis is wired.
	UserPermissions(ctx context.Context, userID string) ([]model.PermissionInfo, error)

	// HasPermission is the central authorization predicate. A holder of
	// the reserved admin role on any service passes unconditionally;
	// role == "" means any role on the service.
	HasPermission(ctx context.Context, userID, service, role string) (bool, error)

	// IsSystemAdmin hits the store directly, bypassing the cache — the
	// admin gate is checked per call, never from a stale snapshot.
	IsSystemAdmin(ctx context.Context, userID string) (bool, error)

	// InvalidatePermissions drops the cached set after a grant change.
	InvalidatePermissions(ctx context.Context, userID string)

	AdminRole() string
}

var _ DirectoryService = (*directoryServiceImpl)(nil)

type directoryServiceImpl struct {
	catalogRepo repository.CatalogRepository
	permRepo    repository.PermissionRepository
	rdb         *redis.Client
	adminRole   string
	logger      *log.Logger
}

// NewDirectoryService wires the directory. rdb may be nil; the cache is
// then skipped entirely.
func NewDirectoryService(db *gorm.DB, rdb *redis.Client, adminRole string) DirectoryService {
	if adminRole == "" {
		adminRole = model.DefaultSystemAdminRole
	}
	return &directoryServiceImpl{
		catalogRepo: repository.NewCatalogRepository(db),
		permRepo:    repository.NewPermissionRepository(db),
		rdb:         rdb,
		adminRole:   adminRole,
		logger:      log.NewLogger(log.Loglevel, "directory-service"),
	}
}

func (d *directoryServiceImpl) AdminRole() string {
	return d.adminRole
}

func (d *directoryServiceImpl) ListServices(ctx context.Context) ([]*model.Service, error) {
	return d.catalogRepo.ListServices(ctx)
}

func (d *directoryServiceImpl) ListRoles(ctx context.Context) ([]*model.Role, error) {
	return d.catalogRepo.ListRoles(ctx, d.adminRole)
}

// DepartmentTree materializes the forest in one pass: group rows by
// parent, then walk down from the roots. Parent assignment is write-once
// so a cycle cannot occur; none is checked for here.
func (d *directoryServiceImpl) DepartmentTree(ctx context.Context) ([]*model.DepartmentNode, error) {
	departments, err := d.catalogRepo.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}

	children := make(map[string][]*model.Department)
	var roots []*model.Department
	for _, dept := range departments {
		if dept.ParentID == nil {
			roots = append(roots, dept)
			continue
		}
		children[*dept.ParentID] = append(children[*dept.ParentID], dept)
	}

	var build func(dept *model.Department) *model.DepartmentNode
	build = func(dept *model.Department) *model.DepartmentNode {
		node := &model.DepartmentNode{Department: *dept, Children: []*model.DepartmentNode{}}
		for _, child := range children[dept.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	tree := make([]*model.DepartmentNode, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root))
	}
	return tree, nil
}

func permCacheKey(userID string) string {
	return "accesshub:perms:" + userID
}

func (d *directoryServiceImpl) UserPermissions(ctx context.Context, userID string) ([]model.PermissionInfo, error) {
	if d.rdb != nil {
		if cached, err := d.rdb.Get(ctx, permCacheKey(userID)); err == nil {
			var infos []model.PermissionInfo
			if err := json.Unmarshal([]byte(cached), &infos); err == nil {
				return infos, nil
			}
		} else if !redis.IsMiss(err) {
			d.logger.Warningf("permission cache read for %s failed: %v", userID, err)
		}
	}

	grants, err := d.permRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	infos := make([]model.PermissionInfo, 0, len(grants))
	for _, g := range grants {
		if g.Service == nil || g.Role == nil {
			continue
		}
		infos = append(infos, model.PermissionInfo{Service: g.Service.Name, Role: g.Role.Name})
	}

	if d.rdb != nil {
		if raw, err := json.Marshal(infos); err == nil {
			if err := d.rdb.SetWithExpire(ctx, permCacheKey(userID), string(raw), permCacheTTL); err != nil {
				d.logger.Warningf("permission cache write for %s failed: %v", userID, err)
			}
		}
	}
	return infos, nil
}

func (d *directoryServiceImpl) HasPermission(ctx context.Context, userID, service, role string) (bool, error) {
	perms, err := d.UserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, p := range perms {
		if p.Role == d.adminRole {
			return true, nil
		}
	}

	for _, p := range perms {
		if p.Service != service {
			continue
		}
		if role == "" || p.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (d *directoryServiceImpl) IsSystemAdmin(ctx context.Context, userID string) (bool, error) {
	return d.permRepo.HoldsRole(ctx, userID, d.adminRole)
}

func (d *directoryServiceImpl) InvalidatePermissions(ctx context.Context, userID string) {
	if d.rdb == nil {
		return
	}
	if err := d.rdb.Del(ctx, permCacheKey(userID)); err != nil {
		d.logger.Warningf("permission cache invalidation for %s failed: %v", userID, err)
	}
}
