package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/taskboard/internal/api"
	"github.com/baharkarakas/taskboard/internal/auth"
	"github.com/baharkarakas/taskboard/internal/config"
	"github.com/baharkarakas/taskboard/internal/db"
	"github.com/baharkarakas/taskboard/internal/logger"
	"github.com/baharkarakas/taskboard/internal/metrics"
	"github.com/baharkarakas/taskboard/internal/repository/postgres"
	"github.com/baharkarakas/taskboard/internal/services"
	"github.com/baharkarakas/taskboard/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	wp := worker.NewPool(cfg.Workers)
	defer wp.Stop()
	audit := services.NewAuditor(repos.AuditLogs, wp, log)

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Log:         log,
		Tokens:      tm,
		Users:       services.NewUserService(repos.Users, tm, audit, log),
		Tasks:       services.NewTaskService(repos.Tasks, repos.Categories, audit),
		Categories:  services.NewCategoryService(repos.Categories, audit),
		RateRPS:     cfg.RateRPS,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}
