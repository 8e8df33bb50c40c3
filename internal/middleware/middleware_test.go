package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/baharkarakas/taskboard/internal/auth"
	"github.com/baharkarakas/taskboard/internal/models"
)

type fakeVerifier map[string]auth.Identity

func (f fakeVerifier) Verify(token string) (auth.Identity, error) {
	id, ok := f[token]
	if !ok {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return id, nil
}

var (
	alice = auth.Identity{UserID: "u-1", Username: "alice", Role: models.RoleUser}
	root  = auth.Identity{UserID: "u-2", Username: "root", Role: models.RoleAdmin}
)

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rr.Body.String(), err)
	}
	return body.Error
}

func TestAuthenticate(t *testing.T) {
	tv := fakeVerifier{"good": alice}
	cases := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"no header", "", http.StatusUnauthorized, "missing bearer token"},
		{"wrong scheme", "Basic Z29vZA==", http.StatusUnauthorized, "missing bearer token"},
		{"scheme only", "Bearer", http.StatusUnauthorized, "missing bearer token"},
		{"blank token", "Bearer   ", http.StatusUnauthorized, "missing bearer token"},
		{"bad token", "Bearer forged", http.StatusUnauthorized, "invalid or expired token"},
		{"valid", "Bearer good", http.StatusOK, ""},
		{"lowercase scheme", "bearer good", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen auth.Identity
			h := Authenticate(tv)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = IdentityFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			if tc.wantStatus == http.StatusOK {
				if seen != alice {
					t.Fatalf("expected identity %+v, got %+v", alice, seen)
				}
				return
			}
			if got := errorMessage(t, rr); got != tc.wantMsg {
				t.Fatalf("expected %q, got %q", tc.wantMsg, got)
			}
			if rr.Header().Get("WWW-Authenticate") == "" {
				t.Fatal("expected WWW-Authenticate header on 401")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	gate := RequireRole(models.RoleAdmin)(http.HandlerFunc(okHandler))
	cases := []struct {
		name       string
		identity   *auth.Identity
		wantStatus int
	}{
		{"no identity", nil, http.StatusForbidden},
		{"user role", &alice, http.StatusForbidden},
		{"admin role", &root, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/categories", nil)
			if tc.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tc.identity))
			}
			rr := httptest.NewRecorder()
			gate.ServeHTTP(rr, req)
			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
		})
	}
}

func TestRequireRoleAcceptsAnyListedRole(t *testing.T) {
	gate := RequireRole(models.RoleUser, models.RoleAdmin)(http.HandlerFunc(okHandler))
	for _, id := range []auth.Identity{alice, root} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), id))
		rr := httptest.NewRecorder()
		gate.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("role %q: expected 200, got %d", id.Role, rr.Code)
		}
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if seen != incoming || rr.Header().Get(RequestIDHeader) != incoming {
		t.Fatalf("expected incoming id %q kept, got ctx=%q header=%q", incoming, seen, rr.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if _, err := uuid.Parse(seen); err != nil || seen == incoming {
		t.Fatalf("expected a fresh uuid, got %q", seen)
	}
}

func TestRecoverWritesOpaque500(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("db password is hunter2")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if got := errorMessage(t, rr); got != "internal error" {
		t.Fatalf("expected opaque message, got %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2)(http.HandlerFunc(okHandler))
	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if hit("10.0.0.1:1000") != http.StatusOK || hit("10.0.0.1:1001") != http.StatusOK {
		t.Fatal("expected burst of 2 to pass")
	}
	if code := hit("10.0.0.1:1002"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := hit("10.0.0.2:1000"); code != http.StatusOK {
		t.Fatalf("expected other client unaffected, got %d", code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(0)(http.HandlerFunc(okHandler))
	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
}

func TestStatusRecorderKeepsFirstStatus(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	rec.WriteHeader(http.StatusCreated)
	rec.WriteHeader(http.StatusInternalServerError)
	if rec.status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.status)
	}
	if got := routePattern(httptest.NewRequest(http.MethodGet, "/x", nil)); got != "unmatched" {
		t.Fatalf("expected unmatched outside a chi router, got %q", got)
	}
}
