package service

import (
	"context"
	"testing"

	"accesshub/pkg/huberrors"
	"accesshub/portal/model"
	"accesshub/portal/repository"
)

func TestRequestDuplicatePending(t *testing.T) {
	gdb := newTestDB(t)
	c := seedCatalog(t, gdb)
	svc := NewRequestService(gdb, NewDirectoryService(gdb, nil, ""))
	ctx := context.Background()
	user := createUser(t, gdb, "山田五郎", "yamada@example.com")

	first, err := svc.Submit(ctx, user.ID, c.services[0].ID, c.roles["一般"].ID, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// same service while pending, even with a different role
	_, err = svc.Submit(ctx, user.ID, c.services[0].ID, c.roles["管理者"].ID, nil)
	mustErr(t, err, huberrors.ErrDuplicatePending, "second pending for same service")

	// a different service is fine
	if _, err := svc.Submit(ctx, user.ID, c.services[1].ID, c.roles["一般"].ID, nil); err != nil {
		t.Fatalf("submit for other service: %v", err)
	}

	// resolving the first frees the service for a new request
	if err := svc.Reject(ctx, first.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.Submit(ctx, user.ID, c.services[0].ID, c.roles["一般"].ID, nil); err != nil {
		t.Fatalf("resubmit after rejection: %v", err)
	}
}

func TestRequestSubmitMissingField(t *testing.T) {
	gdb := newTestDB(t)
	c := seedCatalog(t, gdb)
	svc := NewRequestService(gdb, NewDirectoryService(gdb, nil, ""))

	_, err := svc.Submit(context.Background(), "", c.services[0].ID, c.roles["一般"].ID, nil)
	mustErr(t, err, huberrors.ErrMissingField, "submit without user")
	_, err = svc.Submit(context.Background(), "u", c.services[0].ID, "", nil)
	mustErr(t, err, huberrors.ErrMissingField, "submit without role")
}

func TestRequestApproveWritesGrant(t *testing.T) {
	gdb := newTestDB(t)
	c := seedCatalog(t, gdb)
	directory := NewDirectoryService(gdb, nil, "")
	svc := NewRequestService(gdb, directory)
	ctx := context.Background()
	user := createUser(t, gdb, "山田五郎", "yamada@example.com")

	request, err := svc.Submit(ctx, user.ID, c.services[0].ID, c.roles["一般"].ID, &c.child.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := svc.Approve(ctx, request.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	var row model.PermissionRequest
	if err := gdb.First(&row, "id = ?", request.ID).Error; err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if row.Status != model.StatusApproved {
		t.Fatalf("status = %s, want %s", row.Status, model.StatusApproved)
	}

	perms, err := directory.UserPermissions(ctx, user.ID)
	if err != nil {
		t.Fatalf("user permissions: %v", err)
	}
	if len(perms) != 1 || perms[0].Service != c.services[0].Name || perms[0].Role != "一般" {
		t.Fatalf("permissions = %+v", perms)
	}

	// terminal: a second approval is refused and the grant stays single
	mustErr(t, svc.Approve(ctx, request.ID), huberrors.ErrAlreadyResolved, "re-approve")
	if n := countRows(t, gdb, &model.UserPermission{}, "user_id = ?", user.ID); n != 1 {
		t.Fatalf("grant count = %d, want 1", n)
	}
}

func TestRequestApproveOverwritesExistingGrant(t *testing.T) {
	gdb := newTestDB(t)
	c := seedCatalog(t, gdb)
	directory := NewDirectoryService(gdb, nil, "")
	svc := NewRequestService(gdb, directory)
	ctx := context.Background()
	user := createUser(t, gdb, "山田五郎", "yamada@example.com")

	permRepo := repository.NewPermissionRepository(gdb)
	if err := permRepo.Upsert(ctx, user.ID, c.services[0].ID, c.roles["一般"].ID, nil); err != nil {
		t.Fatalf("seed grant: %v", err)
	}

	request, err := svc.Submit(ctx, user.ID, c.services[0].ID, c.roles["管理者"].ID, &c.root.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.Approve(ctx, request.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	var grants []model.UserPermission
	if err := gdb.Find(&grants, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("load grants: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("grant count = %d, want 1 per (user, service)", len(grants))
	}
	if grants[0].RoleID != c.roles["管理者"].ID {
		t.Fatal("approval must overwrite the role")
	}
	if grants[0].DepartmentID == nil || *grants[0].DepartmentID != c.root.ID {
		t.Fatal("approval must overwrite the department")
	}
}

func TestRequestRejectKeepsRow(t *testing.T) {
	gdb := newTestDB(t)
	c := seedCatalog(t, gdb)
	svc := NewRequestService(gdb, NewDirectoryService(gdb, nil, ""))
	ctx := context.Background()
	user := createUser(t, gdb, "山田五郎", "yamada@example.com")

	request, err := svc.Submit(ctx, user.ID, c.services[0].ID, c.roles["一般"].ID, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.Reject(ctx, request.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	var row model.PermissionRequest
	if err := gdb.First(&row, "id = ?", request.ID).Error; err != nil {
		t.Fatalf("rejected row must survive: %v", err)
	}
	if row.Status != model.StatusRejected {
		t.Fatalf("status = %s, want %s", row.Status, model.StatusRejected)
	}
	if n := countRows(t, gdb, &model.UserPermission{}, "user_id = ?", user.ID); n != 0 {
		t.Fatal("rejection must not grant anything")
	}

	// terminal both ways
	mustErr(t, svc.Reject(ctx, request.ID), huberrors.ErrAlreadyResolved, "re-reject")
	mustErr(t, svc.Approve(ctx, request.ID), huberrors.ErrAlreadyResolved, "approve after reject")
}

func TestRequestResolveUnknown(t *testing.T) {
	gdb := newTestDB(t)
	seedCatalog(t, gdb)
	svc := NewRequestService(gdb, NewDirectoryService(gdb, nil, ""))

	mustErr(t, svc.Approve(context.Background(), "no-such-id"), huberrors.ErrRequestNotFound, "approve unknown")
	mustErr(t, svc.Reject(context.Background(), "no-such-id"), huberrors.ErrRequestNotFound, "reject unknown")
}

func TestRequestPendingLists(t *testing.T) {
	gdb := newTestDB(t)
	c := seedCatalog(t, gdb)
	svc := NewRequestService(gdb, NewDirectoryService(gdb, nil, ""))
	ctx := context.Background()
	alice := createUser(t, gdb, "山田五郎", "yamada@example.com")
	bob := createUser(t, gdb, "中村六郎", "nakamura@example.com")

	if _, err := svc.Submit(ctx, alice.ID, c.services[0].ID, c.roles["一般"].ID, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	resolved, err := svc.Submit(ctx, bob.ID, c.services[0].ID, c.roles["一般"].ID, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Submit(ctx, bob.ID, c.services[1].ID, c.roles["一般"].ID, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.Reject(ctx, resolved.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	all, err := svc.ListPending(ctx)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("pending count = %d, want 2", len(all))
	}
	for _, r := range all {
		if r.User == nil || r.Service == nil || r.Role == nil {
			t.Fatalf("pending row missing associations: %+v", r)
		}
	}

	mine, err := svc.ListPendingFor(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list pending for user: %v", err)
	}
	if len(mine) != 1 || mine[0].ServiceID != c.services[1].ID {
		t.Fatalf("per-user pending = %+v", mine)
	}
}
