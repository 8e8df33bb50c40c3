package postgres

import (
	repo "github.com/baharkarakas/taskboard/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	Users      repo.Users
	Categories repo.Categories
	Tasks      repo.Tasks
	AuditLogs  repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:      &usersRepo{pool},
		Categories: &categoriesRepo{pool},
		Tasks:      &tasksRepo{pool},
		AuditLogs:  &auditLogsRepo{pool},
	}
}
