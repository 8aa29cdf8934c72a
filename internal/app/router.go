package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aegis-iam/aegis-iam/internal/auth"
	"github.com/aegis-iam/aegis-iam/internal/observability"
	"github.com/aegis-iam/aegis-iam/internal/rbac"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AuthHandler    *auth.Handler
	RBACHandler    *rbac.Handler
	AuthMiddleware auth.Middleware
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/permissions", func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireAuth)
		params.RBACHandler.MountRoutes(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireAuth)
		r.With(params.RBACMiddleware.Require("dashboard", "view")).
			Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"status":"ok"}`))
			})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
