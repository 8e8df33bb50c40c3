package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/taskboard/internal/api/httpx"
	"github.com/baharkarakas/taskboard/internal/models"
	"github.com/baharkarakas/taskboard/internal/services"
)

type TaskHandler struct {
	svc *services.TaskService
	log *slog.Logger
}

func NewTaskHandler(svc *services.TaskService, log *slog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, log: log}
}

type createTaskReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    *string `json:"category"`
}

// List handles GET /tasks?page=&limit=&search=. Unparseable paging values fall back to defaults.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := h.svc.List(r.Context(), id.UserID, models.TaskQuery{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
	})
	if err != nil {
		fail(h.log, w, r, "list tasks", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req createTaskReq
	if !decode(w, r, &req) {
		return
	}
	in := services.NewTask{Title: req.Title, Description: req.Description}
	if req.Category != nil {
		in.CategoryID = *req.Category
	}
	t, err := h.svc.Create(r.Context(), id.UserID, in)
	if err != nil {
		fail(h.log, w, r, "create task", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Get(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		fail(h.log, w, r, "get task", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

// Toggle handles PATCH /tasks/{id}; the request carries no body.
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Toggle(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		fail(h.log, w, r, "toggle task", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		fail(h.log, w, r, "delete task", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "task deleted"})
}
