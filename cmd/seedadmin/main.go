// Command seedadmin creates the admin account, or promotes an existing user to admin.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v6"

	"github.com/baharkarakas/taskboard/internal/auth"
	"github.com/baharkarakas/taskboard/internal/config"
	"github.com/baharkarakas/taskboard/internal/db"
	"github.com/baharkarakas/taskboard/internal/logger"
	"github.com/baharkarakas/taskboard/internal/repository/postgres"
	"github.com/baharkarakas/taskboard/internal/services"
)

type seedConfig struct {
	Username string `env:"ADMIN_USERNAME" envDefault:"admin"`
	Password string `env:"ADMIN_PASSWORD,required"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	var seed seedConfig
	if err := env.Parse(&seed); err != nil {
		log.Error("seed config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool, log); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	tm, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		log.Error("token manager", "err", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(pool)
	// nil auditor: the seed runs outside any request and has no worker pool
	users := services.NewUserService(repos.Users, tm, nil, log)

	u, created, err := users.EnsureAdmin(ctx, seed.Username, seed.Password)
	if err != nil {
		log.Error("seed admin", "err", err)
		os.Exit(1)
	}
	log.Info("admin ready", "username", u.Username, "id", u.ID, "created", created)
}
