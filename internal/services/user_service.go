package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/baharkarakas/taskboard/internal/auth"
	"github.com/baharkarakas/taskboard/internal/metrics"
	"github.com/baharkarakas/taskboard/internal/models"
	repo "github.com/baharkarakas/taskboard/internal/repository"
	"github.com/baharkarakas/taskboard/internal/validate"
)

const maxUsernameLen = 64

type UserService struct {
	r     repo.Users
	tm    *auth.TokenManager
	audit *Auditor
	log   *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(r repo.Users, tm *auth.TokenManager, audit *Auditor, log *slog.Logger) *UserService {
	return &UserService{r: r, tm: tm, audit: audit, log: log}
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string      `json:"token"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func credentialErrs(username, password string) validate.Errs {
	var errs validate.Errs
	errs = errs.Add(validate.Required("username", username))
	errs = errs.Add(validate.MaxLen("username", strings.TrimSpace(username), maxUsernameLen))
	if password == "" {
		errs = errs.Add(&validate.ErrField{Field: "password", Msg: "required"})
	}
	return errs
}

// Register creates a user with the default role. Usernames are unique regardless of case.
func (s *UserService) Register(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if errs := credentialErrs(username, password); len(errs) > 0 {
		metrics.AuthAttempts.WithLabelValues("register", "invalid").Inc()
		return models.User{}, fieldErr(errs)
	}

	// fast path only; the unique index decides
	if _, err := s.r.GetByUsername(ctx, username); err == nil {
		metrics.AuthAttempts.WithLabelValues("register", "conflict").Inc()
		return models.User{}, newErr(ErrConflict, "username already taken")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return models.User{}, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.r.Create(ctx, username, hash, models.RoleUser)
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			metrics.AuthAttempts.WithLabelValues("register", "conflict").Inc()
			return models.User{}, newErr(ErrConflict, "username already taken")
		}
		metrics.AuthAttempts.WithLabelValues("register", "error").Inc()
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("register", "ok").Inc()
	s.audit.Record("user", u.ID, u.ID, "registered", map[string]any{"username": u.Username})
	return u, nil
}

// Login verifies credentials and issues a session token. Unknown usernames and wrong
// passwords produce the same error, and both pay for a bcrypt comparison.
func (s *UserService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		return LoginResult{}, fieldErr(credentialErrs(username, password))
	}

	invalid := newErr(ErrUnauthenticated, "invalid credentials")

	u, err := s.r.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			metrics.AuthAttempts.WithLabelValues("login", "error").Inc()
			return LoginResult{}, fmt.Errorf("lookup user: %w", err)
		}
		_ = auth.VerifyPassword(password, s.dummy())
		metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		return LoginResult{}, invalid
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		return LoginResult{}, invalid
	}

	tok, exp, err := s.tm.Issue(auth.Identity{UserID: u.ID, Username: u.Username, Role: u.Role})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "error").Inc()
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	metrics.AuthAttempts.WithLabelValues("login", "ok").Inc()
	return LoginResult{Token: tok, Role: u.Role, ExpiresAt: exp}, nil
}

// List returns every user. Password hashes never leave the process (json:"-").
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.r.List(ctx)
}

// EnsureAdmin creates the admin account or, when the username exists, promotes it to admin
// and resets its password if it no longer matches. It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (models.User, bool, error) {
	username = strings.TrimSpace(username)
	if errs := credentialErrs(username, password); len(errs) > 0 {
		return models.User{}, false, fieldErr(errs)
	}

	u, err := s.r.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		hash, err := auth.HashPassword(password)
		if err != nil {
			return models.User{}, false, fmt.Errorf("hash password: %w", err)
		}
		u, err = s.r.Create(ctx, username, hash, models.RoleAdmin)
		if err != nil {
			return models.User{}, false, fmt.Errorf("create admin: %w", err)
		}
		s.log.Info("admin user created", "username", u.Username, "id", u.ID)
		return u, true, nil
	case err != nil:
		return models.User{}, false, fmt.Errorf("lookup admin: %w", err)
	}

	u.Role = models.RoleAdmin
	if auth.VerifyPassword(password, u.PasswordHash) != nil {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return models.User{}, false, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if err := s.r.Update(ctx, u); err != nil {
		return models.User{}, false, fmt.Errorf("update admin: %w", err)
	}
	s.log.Info("admin user updated", "username", u.Username, "id", u.ID)
	return u, false, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("timing-equalizer")
	})
	return s.dummyHash
}
