package postgres

import (
	"context"
	"strings"

	"github.com/baharkarakas/taskboard/internal/models"
	"github.com/baharkarakas/taskboard/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type usersRepo struct{ pool *pgxpool.Pool }

const userColumns = `id::text, username, password_hash, role, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return models.User{}, err
	}
	u.Role = models.Role(role)
	return u, nil
}

// Create relies on the unique index over lower(username) to reject duplicates.
func (r *usersRepo) Create(ctx context.Context, username, hash string, role models.Role) (models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`INSERT INTO users(id, username, password_hash, role) VALUES($1,$2,$3,$4)
		 RETURNING `+userColumns,
		uuid.NewString(), strings.TrimSpace(username), hash, string(role),
	))
	return u, mapErr("create user", err)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=$1`, id,
	))
	return u, mapErr("get user", err)
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(username)=lower($1)`, strings.TrimSpace(username),
	))
	return u, mapErr("get user by username", err)
}

func (r *usersRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, mapErr("list users", err)
	}
	defer rows.Close()

	out := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapErr("scan user", err)
		}
		out = append(out, u)
	}
	return out, mapErr("list users", rows.Err())
}

func (r *usersRepo) Update(ctx context.Context, u models.User) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET username=$2, password_hash=$3, role=$4, updated_at=now() WHERE id=$1`,
		u.ID, strings.TrimSpace(u.Username), u.PasswordHash, string(u.Role),
	)
	if err != nil {
		return mapErr("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
