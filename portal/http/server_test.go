package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"accesshub/portal/db"
	"accesshub/portal/model"
	"accesshub/portal/repository"
	"accesshub/portal/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server *Server
	gdb    *gorm.DB
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Seed(gdb, ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	server, err := NewServer(&ServerConfig{
		Listen:  "127.0.0.1:0",
		DB:      gdb,
		BaseURL: "https://portal.example.com",
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return &testEnv{server: server, gdb: gdb}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, *Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: decode envelope from %q: %v", method, path, w.Body.String(), err)
	}
	return w, &resp
}

func TestRegistrationAndLoginFlow(t *testing.T) {
	e := newTestServer(t)

	_, resp := e.do(t, http.MethodPost, "/api/v1/user/register", "", gin.H{
		"name": "田中太郎", "email": "tanaka@example.com", "password": "P@ssw0rd!",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("register: %+v", resp)
	}

	// credentials are useless before activation
	w, resp := e.do(t, http.MethodPost, "/api/v1/user/login", "", gin.H{
		"email": "tanaka@example.com", "password": "P@ssw0rd!",
	})
	if w.Code != http.StatusUnauthorized || resp.Code != http.StatusUnauthorized {
		t.Fatalf("login before activation: status=%d envelope=%+v", w.Code, resp)
	}

	// approve out of band, the way the admin surface would
	var request model.RegistrationRequest
	if err := e.gdb.First(&request, "email = ?", "tanaka@example.com").Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	boss := seedAdmin(t, e.gdb)
	bossToken := loginAs(t, e, boss.Email, "boss-pass")
	_, resp = e.do(t, http.MethodPost, "/api/v1/admin/registration/"+request.ID+"/approve", bossToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("approve registration: %+v", resp)
	}

	if err := e.gdb.First(&request, "id = ?", request.ID).Error; err != nil {
		t.Fatalf("reload request: %v", err)
	}
	_, resp = e.do(t, http.MethodGet, "/api/v1/user/activate?token="+*request.Token, "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("activate: %+v", resp)
	}

	// now the login works and the session endpoint answers
	_, resp = e.do(t, http.MethodPost, "/api/v1/user/login", "", gin.H{
		"email": "tanaka@example.com", "password": "P@ssw0rd!",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login after activation: %+v", resp)
	}
	var login struct {
		Token   string `json:"token"`
		Session struct {
			Email string `json:"email"`
		} `json:"session"`
	}
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &login); err != nil {
		t.Fatalf("decode login payload: %v", err)
	}
	if login.Token == "" || login.Session.Email != "tanaka@example.com" {
		t.Fatalf("login payload = %+v", login)
	}

	_, resp = e.do(t, http.MethodGet, "/api/v1/user/session", login.Token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("session: %+v", resp)
	}
}

func TestAuthFilter(t *testing.T) {
	e := newTestServer(t)

	w, _ := e.do(t, http.MethodGet, "/api/v1/user/session", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", w.Code)
	}

	w, _ = e.do(t, http.MethodGet, "/api/v1/user/session", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d", w.Code)
	}

	w, _ = e.do(t, http.MethodGet, "/api/v1/catalog/services", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("catalog without token: status = %d", w.Code)
	}
}

func TestAdminRoutesForbiddenForNonAdmin(t *testing.T) {
	e := newTestServer(t)
	user := seedLocalUser(t, e.gdb, "一般ユーザ", "member@example.com", "member-pass")
	token := loginAs(t, e, user.Email, "member-pass")

	w, _ := e.do(t, http.MethodGet, "/api/v1/admin/users", token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("admin route for non-admin: status = %d", w.Code)
	}
}

func TestPermissionRequestRoutes(t *testing.T) {
	e := newTestServer(t)
	user := seedLocalUser(t, e.gdb, "一般ユーザ", "member@example.com", "member-pass")
	token := loginAs(t, e, user.Email, "member-pass")

	var svc model.Service
	if err := e.gdb.First(&svc).Error; err != nil {
		t.Fatalf("load service: %v", err)
	}
	var role model.Role
	if err := e.gdb.First(&role, "name = ?", "一般").Error; err != nil {
		t.Fatalf("load role: %v", err)
	}

	_, resp := e.do(t, http.MethodPost, "/api/v1/user/request", token, gin.H{
		"service_id": svc.ID, "role_id": role.ID,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("submit request: %+v", resp)
	}

	// duplicate pending surfaces as a conflict
	_, resp = e.do(t, http.MethodPost, "/api/v1/user/request", token, gin.H{
		"service_id": svc.ID, "role_id": role.ID,
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate pending: %+v", resp)
	}

	_, resp = e.do(t, http.MethodGet, "/api/v1/user/requests", token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list own requests: %+v", resp)
	}
}

func seedLocalUser(t *testing.T, gdb *gorm.DB, name, email, password string) *model.User {
	t.Helper()
	hash, err := utils.EncryptPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &model.User{Name: name, Email: email, Password: hash}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// seedAdmin creates a user holding the reserved role on one service.
func seedAdmin(t *testing.T, gdb *gorm.DB) *model.User {
	t.Helper()
	user := seedLocalUser(t, gdb, "管理者ユーザ", "boss@example.com", "boss-pass")
	var svc model.Service
	if err := gdb.First(&svc).Error; err != nil {
		t.Fatalf("load service: %v", err)
	}
	var role model.Role
	if err := gdb.First(&role, "name = ?", model.DefaultSystemAdminRole).Error; err != nil {
		t.Fatalf("load admin role: %v", err)
	}
	repo := repository.NewPermissionRepository(gdb)
	if err := repo.Upsert(context.Background(), user.ID, svc.ID, role.ID, nil); err != nil {
		t.Fatalf("grant admin role: %v", err)
	}
	return user
}

func loginAs(t *testing.T, e *testEnv, email, password string) string {
	t.Helper()
	_, resp := e.do(t, http.MethodPost, "/api/v1/user/login", "", gin.H{
		"email": email, "password": password,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login as %s: %+v", email, resp)
	}
	payload, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("login payload: %T", resp.Data)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatalf("login payload has no token: %v", payload)
	}
	return token
}
