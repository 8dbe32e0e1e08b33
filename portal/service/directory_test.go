package service

import (
	"context"
	"testing"

	"accesshub/portal/model"
	"accesshub/portal/repository"
)

func TestDirectoryHasPermission(t *testing.T) {
	gdb := newTestDB(t)
	c := seedCatalog(t, gdb)
	directory := NewDirectoryService(gdb, nil, "")
	ctx := context.Background()
	user := createUser(t, gdb, "一般ユーザ", "member@example.com")

	permRepo := repository.NewPermissionRepository(gdb)
	if err := permRepo.Upsert(ctx, user.ID, c.services[0].ID, c.roles["一般"].ID, nil); err != nil {
		t.Fatalf("seed grant: %v", err)
	}

	cases := []struct {
		name    string
		service string
		role    string
		want    bool
	}{
		{"granted service, any role", c.services[0].Name, "", true},
		{"granted service, held role", c.services[0].Name, "一般", true},
		{"granted service, other role", c.services[0].Name, "管理者", false},
		{"ungranted service", c.services[1].Name, "", false},
		{"unknown service", "存在しないシステム", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := directory.HasPermission(ctx, user.ID, tc.service, tc.role)
			if err != nil {
				t.Fatalf("HasPermission: %v", err)
			}
			if got != tc.want {
				t.Fatalf("HasPermission(%q, %q) = %v, want %v", tc.service, tc.role, got, tc.want)
			}
		})
	}
}

func TestDirectorySystemAdminBlanket(t *testing.T) {
	gdb := newTestDB(t)
	c := seedCatalog(t, gdb)
	directory := NewDirectoryService(gdb, nil, "")
	ctx := context.Background()
	admin := createUser(t, gdb, "管理者ユーザ", "admin@example.com")
	makeAdmin(t, gdb, c, admin.ID)

	// one reserved-role grant answers for every service and role
	checks := [][2]string{
		{c.services[0].Name, ""},
		{c.services[1].Name, "一般"},
		{"存在しないシステム", "管理者"},
	}
	for _, chk := range checks {
		ok, err := directory.HasPermission(ctx, admin.ID, chk[0], chk[1])
		if err != nil {
			t.Fatalf("HasPermission: %v", err)
		}
		if !ok {
			t.Fatalf("system admin denied on (%q, %q)", chk[0], chk[1])
		}
	}

	ok, err := directory.IsSystemAdmin(ctx, admin.ID)
	if err != nil || !ok {
		t.Fatalf("IsSystemAdmin = %v, %v", ok, err)
	}

	plain := createUser(t, gdb, "一般ユーザ", "member@example.com")
	ok, err = directory.IsSystemAdmin(ctx, plain.ID)
	if err != nil || ok {
		t.Fatalf("IsSystemAdmin for plain user = %v, %v", ok, err)
	}
}

func TestDirectoryListRolesExcludesReserved(t *testing.T) {
	gdb := newTestDB(t)
	seedCatalog(t, gdb)
	directory := NewDirectoryService(gdb, nil, "")

	roles, err := directory.ListRoles(context.Background())
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("role count = %d, want 2", len(roles))
	}
	for _, r := range roles {
		if r.Name == model.DefaultSystemAdminRole {
			t.Fatal("reserved role leaked into the request catalog")
		}
	}
}

func TestDirectoryDepartmentTree(t *testing.T) {
	gdb := newTestDB(t)
	c := seedCatalog(t, gdb)
	directory := NewDirectoryService(gdb, nil, "")

	grandchild := &model.Department{Name: "第1課", ParentID: &c.child.ID}
	if err := gdb.Create(grandchild).Error; err != nil {
		t.Fatalf("seed grandchild: %v", err)
	}
	second := &model.Department{Name: "営業本部"}
	if err := gdb.Create(second).Error; err != nil {
		t.Fatalf("seed second root: %v", err)
	}

	tree, err := directory.DepartmentTree(context.Background())
	if err != nil {
		t.Fatalf("department tree: %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("root count = %d, want 2", len(tree))
	}

	var tech *model.DepartmentNode
	for _, root := range tree {
		if root.Name == c.root.Name {
			tech = root
		}
	}
	if tech == nil {
		t.Fatalf("root %s missing from tree", c.root.Name)
	}
	if len(tech.Children) != 1 || tech.Children[0].Name != c.child.Name {
		t.Fatalf("children of %s = %+v", c.root.Name, tech.Children)
	}
	if len(tech.Children[0].Children) != 1 || tech.Children[0].Children[0].Name != "第1課" {
		t.Fatalf("grandchildren = %+v", tech.Children[0].Children)
	}
}

func TestDirectoryUserPermissionsOrder(t *testing.T) {
	gdb := newTestDB(t)
	c := seedCatalog(t, gdb)
	directory := NewDirectoryService(gdb, nil, "")
	ctx := context.Background()
	user := createUser(t, gdb, "一般ユーザ", "member@example.com")

	permRepo := repository.NewPermissionRepository(gdb)
	if err := permRepo.Upsert(ctx, user.ID, c.services[1].ID, c.roles["管理者"].ID, nil); err != nil {
		t.Fatalf("seed grant: %v", err)
	}
	if err := permRepo.Upsert(ctx, user.ID, c.services[0].ID, c.roles["一般"].ID, nil); err != nil {
		t.Fatalf("seed grant: %v", err)
	}

	perms, err := directory.UserPermissions(ctx, user.ID)
	if err != nil {
		t.Fatalf("user permissions: %v", err)
	}
	if len(perms) != 2 {
		t.Fatalf("permission count = %d, want 2", len(perms))
	}
	// grant order, not catalog order
	if perms[0].Service != c.services[1].Name || perms[0].Role != "管理者" {
		t.Fatalf("first grant = %+v", perms[0])
	}
	if perms[1].Service != c.services[0].Name || perms[1].Role != "一般" {
		t.Fatalf("second grant = %+v", perms[1])
	}

	// no grants is an empty list, not an error
	other := createUser(t, gdb, "新規ユーザ", "fresh@example.com")
	perms, err = directory.UserPermissions(ctx, other.ID)
	if err != nil {
		t.Fatalf("user permissions: %v", err)
	}
	if len(perms) != 0 {
		t.Fatalf("expected no permissions, got %+v", perms)
	}
}
