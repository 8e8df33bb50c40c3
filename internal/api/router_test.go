package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baharkarakas/taskboard/internal/auth"
	"github.com/baharkarakas/taskboard/internal/models"
	"github.com/baharkarakas/taskboard/internal/repository/memory"
	"github.com/baharkarakas/taskboard/internal/services"
	"github.com/baharkarakas/taskboard/internal/worker"
)

type testServer struct {
	t     *testing.T
	h     http.Handler
	users *services.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tm, err := auth.NewTokenManager("router-test-secret", "taskboard", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	store := memory.New()
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)
	audit := services.NewAuditor(store.AuditLogs(), wp, log)
	users := services.NewUserService(store.Users(), tm, audit, log)

	h := NewRouter(RouterDeps{
		Log:        log,
		Tokens:     tm,
		Users:      users,
		Tasks:      services.NewTaskService(store.Tasks(), store.Categories(), audit),
		Categories: services.NewCategoryService(store.Categories(), audit),
	})
	return &testServer{t: t, h: h, users: users}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) expect(rr *httptest.ResponseRecorder, status int, out any) {
	s.t.Helper()
	if rr.Code != status {
		s.t.Fatalf("expected %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			s.t.Fatalf("decode %q: %v", rr.Body.String(), err)
		}
	}
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	var res services.LoginResult
	s.expect(s.do(http.MethodPost, "/api/users/login", "", map[string]string{
		"username": username, "password": password,
	}), http.StatusOK, &res)
	if res.Token == "" {
		s.t.Fatal("expected a token")
	}
	return res.Token
}

func (s *testServer) registerAndLogin(username string) string {
	s.t.Helper()
	s.expect(s.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"username": username, "password": "pw-" + username,
	}), http.StatusCreated, nil)
	return s.login(username, "pw-"+username)
}

func (s *testServer) adminToken() string {
	s.t.Helper()
	if _, _, err := s.users.EnsureAdmin(context.Background(), "root", "rootpw"); err != nil {
		s.t.Fatalf("ensure admin: %v", err)
	}
	return s.login("root", "rootpw")
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)

	var reg struct {
		User models.User `json:"user"`
	}
	s.expect(s.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice", "password": "pw1",
	}), http.StatusCreated, &reg)
	token := s.login("alice", "pw1")

	var created models.Task
	s.expect(s.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": "Write spec"}), http.StatusCreated, &created)
	if created.Completed || created.OwnerID != reg.User.ID {
		t.Fatalf("unexpected task %+v", created)
	}

	var toggled models.Task
	s.expect(s.do(http.MethodPatch, "/api/tasks/"+created.ID, token, nil), http.StatusOK, &toggled)
	if !toggled.Completed {
		t.Fatal("expected completed after toggle")
	}

	var page models.TaskPage
	s.expect(s.do(http.MethodGet, "/api/tasks", token, nil), http.StatusOK, &page)
	if len(page.Tasks) != 1 || page.Tasks[0].ID != created.ID || page.TotalTasks != 1 || page.CurrentPage != 1 {
		t.Fatalf("unexpected page %+v", page)
	}

	var one models.Task
	s.expect(s.do(http.MethodGet, "/api/tasks/"+created.ID, token, nil), http.StatusOK, &one)
	if !one.Completed {
		t.Fatalf("expected persisted toggle, got %+v", one)
	}

	s.expect(s.do(http.MethodDelete, "/api/tasks/"+created.ID, token, nil), http.StatusOK, nil)
	s.expect(s.do(http.MethodGet, "/api/tasks/"+created.ID, token, nil), http.StatusNotFound, nil)
}

func TestRegisterResponseOmitsPasswordHash(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(http.MethodPost, "/api/users/register", "", map[string]string{"username": "alice", "password": "pw1"})
	s.expect(rr, http.StatusCreated, nil)
	if bytes.Contains(rr.Body.Bytes(), []byte("asswor")) || bytes.Contains(rr.Body.Bytes(), []byte("$2a$")) {
		t.Fatalf("response leaks password data: %s", rr.Body.String())
	}

	s.expect(s.do(http.MethodPost, "/api/users/register", "", map[string]string{"username": "ALICE", "password": "x"}), http.StatusConflict, nil)
	s.expect(s.do(http.MethodPost, "/api/users/register", "", map[string]string{"username": ""}), http.StatusBadRequest, nil)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin("alice")

	wrong := s.do(http.MethodPost, "/api/users/login", "", map[string]string{"username": "alice", "password": "nope"})
	unknown := s.do(http.MethodPost, "/api/users/login", "", map[string]string{"username": "ghost", "password": "nope"})
	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Fatalf("expected identical bodies, got %q and %q", wrong.Body.String(), unknown.Body.String())
	}
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestTasksRequireToken(t *testing.T) {
	s := newTestServer(t)
	s.expect(s.do(http.MethodGet, "/api/tasks", "", nil), http.StatusUnauthorized, nil)
	s.expect(s.do(http.MethodGet, "/api/tasks", "garbage", nil), http.StatusUnauthorized, nil)
}

func TestOtherUsersTaskIsNotFound(t *testing.T) {
	s := newTestServer(t)
	alice := s.registerAndLogin("alice")
	bob := s.registerAndLogin("bob")

	var task models.Task
	s.expect(s.do(http.MethodPost, "/api/tasks", alice, map[string]any{"title": "mine"}), http.StatusCreated, &task)

	s.expect(s.do(http.MethodGet, "/api/tasks/"+task.ID, bob, nil), http.StatusNotFound, nil)
	s.expect(s.do(http.MethodPatch, "/api/tasks/"+task.ID, bob, nil), http.StatusNotFound, nil)
	s.expect(s.do(http.MethodDelete, "/api/tasks/"+task.ID, bob, nil), http.StatusNotFound, nil)
	s.expect(s.do(http.MethodPatch, "/api/tasks/not-a-uuid", bob, nil), http.StatusBadRequest, nil)

	var one models.Task
	s.expect(s.do(http.MethodGet, "/api/tasks/"+task.ID, alice, nil), http.StatusOK, &one)
	if one.Completed {
		t.Fatal("bob's toggle must not have touched alice's task")
	}
}

func TestTaskListQuery(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin("alice")
	for _, title := range []string{"Buy Milk", "Walk dog", "Call mom"} {
		s.expect(s.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": title}), http.StatusCreated, nil)
	}

	var page models.TaskPage
	s.expect(s.do(http.MethodGet, "/api/tasks?search=milk", token, nil), http.StatusOK, &page)
	if page.TotalTasks != 1 || page.Tasks[0].Title != "Buy Milk" {
		t.Fatalf("unexpected search result %+v", page)
	}

	s.expect(s.do(http.MethodGet, "/api/tasks?page=2&limit=2", token, nil), http.StatusOK, &page)
	if page.TotalPages != 2 || page.CurrentPage != 2 || len(page.Tasks) != 1 {
		t.Fatalf("unexpected second page %+v", page)
	}

	s.expect(s.do(http.MethodGet, "/api/tasks?page=9&limit=abc", token, nil), http.StatusOK, &page)
	if len(page.Tasks) != 0 || page.TotalPages != 1 {
		t.Fatalf("expected empty page past the end, got %+v", page)
	}

	rr := s.do(http.MethodGet, "/api/tasks?page=9223372036854775807&limit=20", token, nil)
	page = models.TaskPage{}
	s.expect(rr, http.StatusOK, &page)
	if page.Tasks == nil || len(page.Tasks) != 0 || page.TotalTasks != 3 {
		t.Fatalf("expected empty page for a huge page number, got %+v", page)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"tasks":[]`)) {
		t.Fatalf("expected tasks to encode as [], got %s", rr.Body.String())
	}
}

func TestCategoryAdministration(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken()
	user := s.registerAndLogin("alice")

	var created struct {
		Category models.Category `json:"category"`
	}
	s.expect(s.do(http.MethodPost, "/api/categories", admin, map[string]string{"name": "Work"}), http.StatusCreated, &created)
	s.expect(s.do(http.MethodPost, "/api/categories", user, map[string]string{"name": "Home"}), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodPost, "/api/categories", admin, map[string]string{"name": "Work"}), http.StatusConflict, nil)
	s.expect(s.do(http.MethodPost, "/api/categories", admin, map[string]string{"name": "  work "}), http.StatusConflict, nil)

	var list []models.Category
	s.expect(s.do(http.MethodGet, "/api/categories", user, nil), http.StatusOK, &list)
	if len(list) != 1 || list[0].Name != "Work" {
		t.Fatalf("unexpected categories %+v", list)
	}

	id := created.Category.ID
	s.expect(s.do(http.MethodPatch, "/api/categories/"+id, user, map[string]string{"name": "Job"}), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodPatch, "/api/categories/"+id, admin, map[string]string{"name": "Job"}), http.StatusOK, nil)

	var task models.Task
	s.expect(s.do(http.MethodPost, "/api/tasks", user, map[string]any{"title": "report", "category": id}), http.StatusCreated, &task)
	if task.Category == nil || task.Category.Name != "Job" {
		t.Fatalf("expected resolved category, got %+v", task.Category)
	}

	s.expect(s.do(http.MethodDelete, "/api/categories/"+id, user, nil), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodDelete, "/api/categories/"+id, admin, nil), http.StatusOK, nil)
	s.expect(s.do(http.MethodDelete, "/api/categories/"+id, admin, nil), http.StatusNotFound, nil)

	s.expect(s.do(http.MethodGet, "/api/tasks/"+task.ID, user, nil), http.StatusOK, &task)
	if task.Category != nil || task.CategoryID == nil {
		t.Fatalf("expected dangling category id, got %+v", task)
	}
}

func TestListUsersIsAdminOnly(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken()
	user := s.registerAndLogin("alice")

	s.expect(s.do(http.MethodGet, "/api/users", "", nil), http.StatusUnauthorized, nil)
	s.expect(s.do(http.MethodGet, "/api/users", user, nil), http.StatusForbidden, nil)

	rr := s.do(http.MethodGet, "/api/users", admin, nil)
	var users []models.User
	s.expect(rr, http.StatusOK, &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if bytes.Contains(rr.Body.Bytes(), []byte("$2a$")) {
		t.Fatal("user list leaks password hashes")
	}
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("expected ok, got %d %q", rr.Code, rr.Body.String())
	}
	s.expect(s.do(http.MethodGet, "/api/nope", "", nil), http.StatusNotFound, nil)
}
