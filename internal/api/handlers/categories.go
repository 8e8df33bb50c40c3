package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/taskboard/internal/api/httpx"
	"github.com/baharkarakas/taskboard/internal/models"
	"github.com/baharkarakas/taskboard/internal/services"
)

type CategoryHandler struct {
	svc *services.CategoryService
	log *slog.Logger
}

func NewCategoryHandler(svc *services.CategoryService, log *slog.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, log: log}
}

type categoryReq struct {
	Name string `json:"name"`
}

type categoryResp struct {
	Message  string          `json:"message"`
	Category models.Category `json:"category"`
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.List(r.Context())
	if err != nil {
		fail(h.log, w, r, "list categories", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cs)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req categoryReq
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.Create(r.Context(), id.UserID, req.Name)
	if err != nil {
		fail(h.log, w, r, "create category", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, categoryResp{Message: "category created", Category: c})
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req categoryReq
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.Update(r.Context(), id.UserID, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		fail(h.log, w, r, "update category", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, categoryResp{Message: "category updated", Category: c})
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		fail(h.log, w, r, "delete category", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "category deleted"})
}
