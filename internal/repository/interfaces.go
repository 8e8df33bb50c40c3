package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/taskboard/internal/models"
)

var (
	// ErrNotFound is returned when no row matches, including rows owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

type Users interface {
	Create(ctx context.Context, username, passwordHash string, role models.Role) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	// GetByUsername matches case-insensitively.
	GetByUsername(ctx context.Context, username string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u models.User) error
}

type Categories interface {
	Create(ctx context.Context, name string) (models.Category, error)
	GetByID(ctx context.Context, id string) (models.Category, error)
	// FindByName matches case-insensitively on the trimmed name.
	FindByName(ctx context.Context, name string) (models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Rename(ctx context.Context, id, name string) (models.Category, error)
	Delete(ctx context.Context, id string) error
}

// Tasks are always addressed through their owner: a task that exists but belongs
// to another owner is indistinguishable from one that does not exist.
type Tasks interface {
	Create(ctx context.Context, t models.Task) (models.Task, error)
	Get(ctx context.Context, ownerID, id string) (models.Task, error)
	List(ctx context.Context, ownerID string, q models.TaskQuery) ([]models.Task, int, error)
	ToggleCompleted(ctx context.Context, ownerID, id string) (models.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
