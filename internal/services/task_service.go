package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/baharkarakas/taskboard/internal/metrics"
	"github.com/baharkarakas/taskboard/internal/models"
	repo "github.com/baharkarakas/taskboard/internal/repository"
	"github.com/baharkarakas/taskboard/internal/validate"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	maxTitleLen     = 200

	// MaxPage keeps (page-1)*limit inside int32 for any allowed limit.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// TaskService manages tasks on behalf of their owner. The owner id always comes from the
// verified identity, never from the request body.
type TaskService struct {
	tasks      repo.Tasks
	categories repo.Categories
	audit      *Auditor
}

func NewTaskService(t repo.Tasks, c repo.Categories, audit *Auditor) *TaskService {
	return &TaskService{tasks: t, categories: c, audit: audit}
}

type NewTask struct {
	Title       string
	Description string
	CategoryID  string
}

var errTaskNotFound = newErr(ErrNotFound, "task not found")

func (s *TaskService) Create(ctx context.Context, ownerID string, in NewTask) (models.Task, error) {
	title := strings.TrimSpace(in.Title)
	var errs validate.Errs
	errs = errs.Add(validate.Required("title", title))
	errs = errs.Add(validate.MaxLen("title", title, maxTitleLen))
	if len(errs) > 0 {
		return models.Task{}, fieldErr(errs)
	}

	t := models.Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		OwnerID:     ownerID,
	}
	if catID := strings.TrimSpace(in.CategoryID); catID != "" {
		if err := s.checkCategory(ctx, catID); err != nil {
			return models.Task{}, err
		}
		t.CategoryID = &catID
	}

	out, err := s.tasks.Create(ctx, t)
	if err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	metrics.ResourceOps.WithLabelValues("task", "create").Inc()
	s.audit.Record("task", out.ID, ownerID, "created", map[string]any{"title": out.Title})
	return out, nil
}

func (s *TaskService) checkCategory(ctx context.Context, id string) error {
	invalid := validationErr("invalid category", validate.Errs{{Field: "category", Msg: "invalid category"}})
	if validate.UUID("category", id) != nil {
		return invalid
	}
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return invalid
		}
		return fmt.Errorf("lookup category: %w", err)
	}
	return nil
}

// NormalizeQuery applies the paging defaults and bounds. Pages past MaxPage are clamped
// to it; that page is still past the end of any real list and comes back empty.
func NormalizeQuery(q models.TaskQuery) models.TaskQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// List returns one page of the owner's tasks, newest first. A page past the end is empty.
func (s *TaskService) List(ctx context.Context, ownerID string, q models.TaskQuery) (models.TaskPage, error) {
	q = NormalizeQuery(q)
	items, total, err := s.tasks.List(ctx, ownerID, q)
	if err != nil {
		return models.TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}
	if items == nil {
		items = []models.Task{}
	}
	return models.TaskPage{
		Tasks:       items,
		CurrentPage: q.Page,
		TotalPages:  (total + q.Limit - 1) / q.Limit,
		TotalTasks:  total,
	}, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, id string) (models.Task, error) {
	if err := checkID("id", id); err != nil {
		return models.Task{}, err
	}
	t, err := s.tasks.Get(ctx, ownerID, id)
	if err != nil {
		return models.Task{}, taskErr("get task", err)
	}
	return t, nil
}

// Toggle flips completed on a task owned by ownerID.
func (s *TaskService) Toggle(ctx context.Context, ownerID, id string) (models.Task, error) {
	if err := checkID("id", id); err != nil {
		return models.Task{}, err
	}
	t, err := s.tasks.ToggleCompleted(ctx, ownerID, id)
	if err != nil {
		return models.Task{}, taskErr("toggle task", err)
	}
	metrics.ResourceOps.WithLabelValues("task", "toggle").Inc()
	s.audit.Record("task", t.ID, ownerID, "toggled", map[string]any{"completed": t.Completed})
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	if err := checkID("id", id); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, ownerID, id); err != nil {
		return taskErr("delete task", err)
	}
	metrics.ResourceOps.WithLabelValues("task", "delete").Inc()
	s.audit.Record("task", id, ownerID, "deleted", nil)
	return nil
}

// taskErr collapses "missing" and "owned by someone else" into the same not-found error.
func taskErr(op string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return errTaskNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func checkID(field, id string) error {
	if ef := validate.UUID(field, id); ef != nil {
		return validationErr("invalid id", validate.Errs{*ef})
	}
	return nil
}
