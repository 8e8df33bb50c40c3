package middleware

import (
	"net/http"
	"strings"

	"github.com/baharkarakas/taskboard/internal/api/httpx"
	"github.com/baharkarakas/taskboard/internal/auth"
)

// TokenVerifier is satisfied by *auth.TokenManager.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Authenticate rejects the request with 401 unless it carries "Authorization: Bearer <token>"
// with a token that verifies. On success the identity is attached to the request context.
func Authenticate(tv TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}
			id, err := tv.Verify(token)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(h string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", msg, nil)
}
