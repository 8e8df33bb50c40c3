package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/taskboard/internal/api/httpx"
	"github.com/baharkarakas/taskboard/internal/auth"
	"github.com/baharkarakas/taskboard/internal/middleware"
)

const maxBodyBytes = 1 << 20

type message struct {
	Message string `json:"message"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return false
	}
	return true
}

// fail writes err to the client; anything that is not a typed service error is logged
// here and reaches the client only as an opaque 500.
func fail(log *slog.Logger, w http.ResponseWriter, r *http.Request, op string, err error) {
	if httpx.WriteServiceError(w, err) {
		return
	}
	log.Error(op, "err", err, "request_id", middleware.RequestIDFrom(r.Context()))
}

// identity is set by middleware.Authenticate on every route that calls this.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
	}
	return id, ok
}
