package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baharkarakas/taskboard/internal/metrics"
	"github.com/baharkarakas/taskboard/internal/models"
	repo "github.com/baharkarakas/taskboard/internal/repository"
	"github.com/baharkarakas/taskboard/internal/validate"
)

const maxCategoryNameLen = 64

// CategoryService manages the global category list. Names keep their casing but are
// unique case-insensitively. Deleting a category does not touch tasks that reference it.
type CategoryService struct {
	r     repo.Categories
	audit *Auditor
}

func NewCategoryService(r repo.Categories, audit *Auditor) *CategoryService {
	return &CategoryService{r: r, audit: audit}
}

var (
	errCategoryNotFound = newErr(ErrNotFound, "category not found")
	errCategoryExists   = newErr(ErrConflict, "category already exists")
)

func checkName(name string) error {
	var errs validate.Errs
	errs = errs.Add(validate.Required("name", name))
	errs = errs.Add(validate.MaxLen("name", name, maxCategoryNameLen))
	if len(errs) > 0 {
		return fieldErr(errs)
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, actorID, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if err := checkName(name); err != nil {
		return models.Category{}, err
	}

	// fast path; the unique index on lower(name) is what actually guarantees it
	if _, err := s.r.FindByName(ctx, name); err == nil {
		return models.Category{}, errCategoryExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return models.Category{}, fmt.Errorf("lookup category: %w", err)
	}

	c, err := s.r.Create(ctx, name)
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return models.Category{}, errCategoryExists
		}
		return models.Category{}, fmt.Errorf("create category: %w", err)
	}
	metrics.ResourceOps.WithLabelValues("category", "create").Inc()
	s.audit.Record("category", c.ID, actorID, "created", map[string]any{"name": c.Name})
	return c, nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	cs, err := s.r.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cs, nil
}

// Update renames a category. Renaming to a different casing of its own name is allowed.
func (s *CategoryService) Update(ctx context.Context, actorID, id, name string) (models.Category, error) {
	if err := checkID("id", id); err != nil {
		return models.Category{}, err
	}
	name = strings.TrimSpace(name)
	if err := checkName(name); err != nil {
		return models.Category{}, err
	}

	if existing, err := s.r.FindByName(ctx, name); err == nil && existing.ID != id {
		return models.Category{}, newErr(ErrConflict, "another category already has that name")
	} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return models.Category{}, fmt.Errorf("lookup category: %w", err)
	}

	c, err := s.r.Rename(ctx, id, name)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return models.Category{}, errCategoryNotFound
	case errors.Is(err, repo.ErrConflict):
		return models.Category{}, newErr(ErrConflict, "another category already has that name")
	case err != nil:
		return models.Category{}, fmt.Errorf("rename category: %w", err)
	}
	metrics.ResourceOps.WithLabelValues("category", "update").Inc()
	s.audit.Record("category", c.ID, actorID, "renamed", map[string]any{"name": c.Name})
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, actorID, id string) error {
	if err := checkID("id", id); err != nil {
		return err
	}
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errCategoryNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	metrics.ResourceOps.WithLabelValues("category", "delete").Inc()
	s.audit.Record("category", id, actorID, "deleted", nil)
	return nil
}
