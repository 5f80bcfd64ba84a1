// Package server assembles the HTTP surface: middleware ordering, route
// mounting, metrics and health. The middleware order is load-bearing:
// correlation id first so every later log line carries it, recovery before
// anything that can panic, tenant resolution before token authentication so
// the tenant cross-check sees the resolved tenant.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/saasbase/saasbase/internal/auth"
	"github.com/saasbase/saasbase/internal/user"
	"github.com/saasbase/saasbase/pkg/httpserver"
	"github.com/saasbase/saasbase/pkg/jwt"
	"github.com/saasbase/saasbase/pkg/requestid"
	"github.com/saasbase/saasbase/pkg/tenant"
)

// Config holds router settings loaded from the environment.
type Config struct {
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","` // CORSAllowedOrigins lists origins allowed to call the API.
	TenantPathMarker   string   `env:"TENANT_PATH_MARKER" envDefault:"/tenant/"`             // TenantPathMarker is the path segment preceding a tenant id.
}

// Deps are the wired components the router serves.
type Deps struct {
	Log          *slog.Logger
	Tokens       *jwt.Service
	AuthHandler  *auth.Handler
	UserHandler  *user.Handler
	Binder       tenant.SessionBinder
	Metrics      *Metrics
	HealthProbes []func(context.Context) error
}

// New builds the full router.
func New(cfg Config, deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	resolver := tenant.NewChainResolver(
		tenant.NewHeaderResolver(tenant.DefaultHeader),
		tenant.NewSubdomainResolver(),
		tenant.NewPathResolver(cfg.TenantPathMarker),
	).WithLogger(log)

	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(Recovery(log))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", tenant.DefaultHeader, requestid.Header},
		ExposedHeaders:   []string{tenant.DefaultHeader, requestid.Header},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(tenant.Middleware(resolver,
		tenant.WithSessionBinder(deps.Binder),
		tenant.WithSkipPaths("/health", "/metrics", "/favicon.ico"),
		tenant.WithLogger(log),
	))
	r.Use(auth.Middleware(deps.Tokens, log))

	r.Get("/health", httpserver.HealthCheckHandler(log, deps.HealthProbes...))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", deps.AuthHandler.Routes)

		r.Route("/users", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/", deps.UserHandler.List)
			r.Post("/", deps.UserHandler.Create)
			r.Get("/{id}", deps.UserHandler.Get)
			r.Put("/{id}", deps.UserHandler.Update)
			r.With(auth.RequireRole(user.RoleAdmin)).Delete("/{id}", deps.UserHandler.Delete)
		})
	})

	return r
}
