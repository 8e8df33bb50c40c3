package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/taskboard/internal/api/handlers"
	"github.com/baharkarakas/taskboard/internal/api/httpx"
	"github.com/baharkarakas/taskboard/internal/metrics"
	"github.com/baharkarakas/taskboard/internal/middleware"
	"github.com/baharkarakas/taskboard/internal/models"
	"github.com/baharkarakas/taskboard/internal/services"
)

type RouterDeps struct {
	Log         *slog.Logger
	Tokens      middleware.TokenVerifier
	Users       *services.UserService
	Tasks       *services.TaskService
	Categories  *services.CategoryService
	RateRPS     int
	CORSOrigins []string
}

func NewRouter(d RouterDeps) http.Handler {
	users := handlers.NewUserHandler(d.Users, d.Log)
	tasks := handlers.NewTaskHandler(d.Tasks, d.Log)
	categories := handlers.NewCategoryHandler(d.Categories, d.Log)

	authn := middleware.Authenticate(d.Tokens)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover(d.Log), middleware.RequestLogger(d.Log), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))
	r.Use(middleware.RateLimit(d.RateRPS))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// ---------- users ----------
		r.Post("/users/register", users.Register)
		r.Post("/users/login", users.Login)
		r.With(authn, adminOnly).Get("/users", users.List)

		// ---------- tasks (owner-scoped) ----------
		r.Route("/tasks", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", tasks.List)
			r.Post("/", tasks.Create)
			r.Get("/{id}", tasks.Get)
			r.Patch("/{id}", tasks.Toggle)
			r.Delete("/{id}", tasks.Delete)
		})

		// ---------- categories (global; writes are admin-only) ----------
		r.Route("/categories", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", categories.List)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/", categories.Create)
				r.Patch("/{id}", categories.Update)
				r.Delete("/{id}", categories.Delete)
			})
		})
	})

	return r
}
