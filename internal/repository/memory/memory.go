// Package memory is an in-process implementation of the repository interfaces.
// It enforces the same uniqueness and ownership rules as the Postgres schema.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/taskboard/internal/models"
	"github.com/baharkarakas/taskboard/internal/repository"
)

type Store struct {
	mu         sync.RWMutex
	users      map[string]models.User
	categories map[string]models.Category
	tasks      map[string]models.Task
	audit      []models.AuditLog
	seq        int64
}

func New() *Store {
	return &Store{
		users:      map[string]models.User{},
		categories: map[string]models.Category{},
		tasks:      map[string]models.Task{},
	}
}

// now is strictly increasing so newest-first ordering is deterministic.
func (s *Store) now() time.Time {
	s.seq++
	return time.Now().UTC().Add(time.Duration(s.seq) * time.Microsecond)
}

func (s *Store) Users() repository.Users           { return usersRepo{s} }
func (s *Store) Categories() repository.Categories { return categoriesRepo{s} }
func (s *Store) Tasks() repository.Tasks           { return tasksRepo{s} }
func (s *Store) AuditLogs() repository.AuditLogs   { return auditRepo{s} }

// AuditEntries returns a copy of the recorded audit log.
func (s *Store) AuditEntries() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditLog(nil), s.audit...)
}

// ---------- users ----------

type usersRepo struct{ s *Store }

func (r usersRepo) Create(_ context.Context, username, hash string, role models.Role) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := models.NormalizeUsername(username)
	for _, u := range r.s.users {
		if models.NormalizeUsername(u.Username) == key {
			return models.User{}, repository.ErrConflict
		}
	}
	now := r.s.now()
	u := models.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users[u.ID] = u
	return u, nil
}

func (r usersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r usersRepo) GetByUsername(_ context.Context, username string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	key := models.NormalizeUsername(username)
	for _, u := range r.s.users {
		if models.NormalizeUsername(u.Username) == key {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (r usersRepo) List(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r usersRepo) Update(_ context.Context, u models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	key := models.NormalizeUsername(u.Username)
	for id, other := range r.s.users {
		if id != u.ID && models.NormalizeUsername(other.Username) == key {
			return repository.ErrConflict
		}
	}
	cur.Username = strings.TrimSpace(u.Username)
	cur.PasswordHash = u.PasswordHash
	cur.Role = u.Role
	cur.UpdatedAt = r.s.now()
	r.s.users[u.ID] = cur
	return nil
}

// ---------- categories ----------

type categoriesRepo struct{ s *Store }

func (r categoriesRepo) nameTaken(name, exceptID string) bool {
	key := models.NormalizeCategoryName(name)
	for id, c := range r.s.categories {
		if id != exceptID && models.NormalizeCategoryName(c.Name) == key {
			return true
		}
	}
	return false
}

func (r categoriesRepo) Create(_ context.Context, name string) (models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(name, "") {
		return models.Category{}, repository.ErrConflict
	}
	now := r.s.now()
	c := models.Category{ID: uuid.NewString(), Name: strings.TrimSpace(name), CreatedAt: now, UpdatedAt: now}
	r.s.categories[c.ID] = c
	return c, nil
}

func (r categoriesRepo) GetByID(_ context.Context, id string) (models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return models.Category{}, repository.ErrNotFound
	}
	return c, nil
}

func (r categoriesRepo) FindByName(_ context.Context, name string) (models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	key := models.NormalizeCategoryName(name)
	for _, c := range r.s.categories {
		if models.NormalizeCategoryName(c.Name) == key {
			return c, nil
		}
	}
	return models.Category{}, repository.ErrNotFound
}

func (r categoriesRepo) List(_ context.Context) ([]models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (r categoriesRepo) Rename(_ context.Context, id, name string) (models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return models.Category{}, repository.ErrNotFound
	}
	if r.nameTaken(name, id) {
		return models.Category{}, repository.ErrConflict
	}
	c.Name = strings.TrimSpace(name)
	c.UpdatedAt = r.s.now()
	r.s.categories[id] = c
	return c, nil
}

func (r categoriesRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.categories, id)
	return nil
}

// ---------- tasks ----------

type tasksRepo struct{ s *Store }

// resolve fills in Category from the current category table; a dangling id resolves to nil.
func (r tasksRepo) resolve(t models.Task) models.Task {
	t.Category = nil
	if t.CategoryID != nil {
		if c, ok := r.s.categories[*t.CategoryID]; ok {
			t.Category = &models.CategoryRef{ID: c.ID, Name: c.Name}
		}
	}
	return t
}

func (r tasksRepo) Create(_ context.Context, t models.Task) (models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := r.s.now()
	t.CreatedAt, t.UpdatedAt = now, now
	t.Category = nil
	r.s.tasks[t.ID] = t
	return r.resolve(t), nil
}

func (r tasksRepo) Get(_ context.Context, ownerID, id string) (models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return models.Task{}, repository.ErrNotFound
	}
	return r.resolve(t), nil
}

func (r tasksRepo) List(_ context.Context, ownerID string, q models.TaskQuery) ([]models.Task, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	needle := strings.ToLower(q.Search)
	var matched []models.Task
	for _, t := range r.s.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Title), needle) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	out := make([]models.Task, 0, q.Limit)
	for i := q.Offset(); i < total && len(out) < q.Limit; i++ {
		out = append(out, r.resolve(matched[i]))
	}
	return out, total, nil
}

func (r tasksRepo) ToggleCompleted(_ context.Context, ownerID, id string) (models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return models.Task{}, repository.ErrNotFound
	}
	t.Completed = !t.Completed
	t.UpdatedAt = r.s.now()
	r.s.tasks[id] = t
	return r.resolve(t), nil
}

func (r tasksRepo) Delete(_ context.Context, ownerID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

// ---------- audit ----------

type auditRepo struct{ s *Store }

func (r auditRepo) Create(_ context.Context, l models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = r.s.now()
	r.s.audit = append(r.s.audit, l)
	return nil
}
