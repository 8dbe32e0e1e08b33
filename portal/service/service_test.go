package service

import (
	"context"
	"errors"
	"testing"

	"accesshub/portal/db"
	"accesshub/portal/model"
	"accesshub/portal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	// each pooled connection to :memory: would get its own database
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

type catalog struct {
	services  []*model.Service
	roles     map[string]*model.Role
	root      *model.Department
	child     *model.Department
	adminRole *model.Role
}

func seedCatalog(t *testing.T, gdb *gorm.DB) *catalog {
	t.Helper()
	c := &catalog{roles: map[string]*model.Role{}}

	for _, name := range []string{"在庫管理システム", "社内Wiki"} {
		svc := &model.Service{Name: name, Description: name + "の利用権限"}
		if err := gdb.Create(svc).Error; err != nil {
			t.Fatalf("seed service %s: %v", name, err)
		}
		c.services = append(c.services, svc)
	}

	for _, name := range []string{"一般", "管理者", model.DefaultSystemAdminRole} {
		role := &model.Role{Name: name}
		if err := gdb.Create(role).Error; err != nil {
			t.Fatalf("seed role %s: %v", name, err)
		}
		c.roles[name] = role
	}
	c.adminRole = c.roles[model.DefaultSystemAdminRole]

	c.root = &model.Department{Name: "技術本部"}
	if err := gdb.Create(c.root).Error; err != nil {
		t.Fatalf("seed department: %v", err)
	}
	c.child = &model.Department{Name: "技術本部 第1部", ParentID: &c.root.ID}
	if err := gdb.Create(c.child).Error; err != nil {
		t.Fatalf("seed department: %v", err)
	}
	return c
}

func createUser(t *testing.T, gdb *gorm.DB, name, email string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: email}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

// makeAdmin grants the reserved role on the first catalog service.
func makeAdmin(t *testing.T, gdb *gorm.DB, c *catalog, userID string) {
	t.Helper()
	repo := repository.NewPermissionRepository(gdb)
	if err := repo.Upsert(context.Background(), userID, c.services[0].ID, c.adminRole.ID, nil); err != nil {
		t.Fatalf("grant admin role: %v", err)
	}
}

// fakeMailer records activation mails and can be told to fail.
type fakeMailer struct {
	sent []string
	urls []string
	fail bool
}

func (m *fakeMailer) SendActivationEmail(to, activationURL string) error {
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, to)
	m.urls = append(m.urls, activationURL)
	return nil
}

func countRows(t *testing.T, gdb *gorm.DB, value interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	q := gdb.Model(value)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func mustErr(t *testing.T, got, want error, op string) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Fatalf("%s: got %v, want %v", op, got, want)
	}
}
