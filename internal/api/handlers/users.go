package handlers

import (
	"log/slog"
	"net/http"

	"github.com/baharkarakas/taskboard/internal/api/httpx"
	"github.com/baharkarakas/taskboard/internal/models"
	"github.com/baharkarakas/taskboard/internal/services"
)

type UserHandler struct {
	svc *services.UserService
	log *slog.Logger
}

func NewUserHandler(svc *services.UserService, log *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResp struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		fail(h.log, w, r, "register", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, registerResp{Message: "user registered", User: u})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		fail(h.log, w, r, "login", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		fail(h.log, w, r, "list users", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}
