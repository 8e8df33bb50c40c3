package postgres

import (
	"context"

	"github.com/baharkarakas/taskboard/internal/models"
	"github.com/baharkarakas/taskboard/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type tasksRepo struct{ pool *pgxpool.Pool }

// taskSelect reads from a relation aliased t, resolving the category through a left join
// so a dangling category_id yields a null category.
const taskSelect = `
SELECT t.id::text, t.title, t.description, t.completed, t.owner_id::text, t.category_id::text,
       c.id::text, c.name, t.created_at, t.updated_at
  FROM t
  LEFT JOIN categories c ON c.id = t.category_id`

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t       models.Task
		catID   *string
		catName *string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.OwnerID, &t.CategoryID,
		&catID, &catName, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return models.Task{}, err
	}
	if catID != nil && catName != nil {
		t.Category = &models.CategoryRef{ID: *catID, Name: *catName}
	}
	return t, nil
}

func (r *tasksRepo) Create(ctx context.Context, t models.Task) (models.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	out, err := scanTask(r.pool.QueryRow(ctx, `
WITH t AS (
  INSERT INTO tasks(id, title, description, owner_id, category_id)
  VALUES($1,$2,$3,$4,$5)
  RETURNING *
)`+taskSelect,
		t.ID, t.Title, t.Description, t.OwnerID, t.CategoryID,
	))
	return out, mapErr("create task", err)
}

func (r *tasksRepo) Get(ctx context.Context, ownerID, id string) (models.Task, error) {
	out, err := scanTask(r.pool.QueryRow(ctx, `
WITH t AS (SELECT * FROM tasks WHERE id=$1 AND owner_id=$2)`+taskSelect,
		id, ownerID,
	))
	return out, mapErr("get task", err)
}

func (r *tasksRepo) List(ctx context.Context, ownerID string, q models.TaskQuery) ([]models.Task, int, error) {
	pattern := containsPattern(q.Search)

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM tasks WHERE owner_id=$1 AND title ILIKE $2`,
		ownerID, pattern,
	).Scan(&total); err != nil {
		return nil, 0, mapErr("count tasks", err)
	}

	rows, err := r.pool.Query(ctx, `
WITH t AS (
  SELECT * FROM tasks
   WHERE owner_id=$1 AND title ILIKE $2
   ORDER BY created_at DESC, id DESC
   LIMIT $3 OFFSET $4
)`+taskSelect+`
 ORDER BY t.created_at DESC, t.id DESC`,
		ownerID, pattern, q.Limit, q.Offset(),
	)
	if err != nil {
		return nil, 0, mapErr("list tasks", err)
	}
	defer rows.Close()

	out := make([]models.Task, 0, q.Limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, mapErr("scan task", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapErr("list tasks", err)
	}
	return out, total, nil
}

func (r *tasksRepo) ToggleCompleted(ctx context.Context, ownerID, id string) (models.Task, error) {
	out, err := scanTask(r.pool.QueryRow(ctx, `
WITH t AS (
  UPDATE tasks SET completed = NOT completed, updated_at = now()
   WHERE id=$1 AND owner_id=$2
  RETURNING *
)`+taskSelect,
		id, ownerID,
	))
	return out, mapErr("toggle task", err)
}

func (r *tasksRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return mapErr("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
