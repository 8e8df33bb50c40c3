package postgres

import (
	"context"
	"strings"

	"github.com/baharkarakas/taskboard/internal/models"
	"github.com/baharkarakas/taskboard/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type categoriesRepo struct{ pool *pgxpool.Pool }

const categoryColumns = `id::text, name, created_at, updated_at`

func scanCategory(row rowScanner) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *categoriesRepo) Create(ctx context.Context, name string) (models.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`INSERT INTO categories(id, name) VALUES($1,$2) RETURNING `+categoryColumns,
		uuid.NewString(), strings.TrimSpace(name),
	))
	return c, mapErr("create category", err)
}

func (r *categoriesRepo) GetByID(ctx context.Context, id string) (models.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id=$1`, id,
	))
	return c, mapErr("get category", err)
}

func (r *categoriesRepo) FindByName(ctx context.Context, name string) (models.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE lower(name)=lower($1)`, strings.TrimSpace(name),
	))
	return c, mapErr("find category", err)
}

func (r *categoriesRepo) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY lower(name) ASC`)
	if err != nil {
		return nil, mapErr("list categories", err)
	}
	defer rows.Close()

	out := make([]models.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, mapErr("scan category", err)
		}
		out = append(out, c)
	}
	return out, mapErr("list categories", rows.Err())
}

func (r *categoriesRepo) Rename(ctx context.Context, id, name string) (models.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`UPDATE categories SET name=$2, updated_at=now() WHERE id=$1 RETURNING `+categoryColumns,
		id, strings.TrimSpace(name),
	))
	return c, mapErr("rename category", err)
}

// Delete leaves tasks that reference the category untouched.
func (r *categoriesRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return mapErr("delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
