package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/entryd/entryd/internal/handler"
	"github.com/entryd/entryd/internal/middleware"
)

// RouterConfig holds everything the router mounts.
type RouterConfig struct {
	Logger *slog.Logger

	// MountPath prefixes the entry routes. "/" mounts them at the root.
	MountPath   string
	EntryRoutes []handler.Route

	Base    *handler.Handler
	Health  *handler.HealthHandler
	Metrics *handler.MetricsHandler // nil disables /metrics
	OpenAPI http.Handler

	IsDevelopment      bool
	CORS               middleware.CORSConfig
	MaxRequestBodySize int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// 404 and 405 handlers, set first so mounted subrouters inherit them.
	r.NotFound(cfg.Base.NotFound)
	r.MethodNotAllowed(cfg.Base.MethodNotAllowed)

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	}

	// Ambient endpoints
	r.Get("/", cfg.Base.Info)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Metrics != nil {
		r.Get("/metrics", cfg.Metrics.Metrics)
	}
	if cfg.OpenAPI != nil {
		r.Method(http.MethodGet, "/openapi.json", cfg.OpenAPI)
	}

	// Entry routes
	if cfg.MountPath == "" || cfg.MountPath == "/" {
		handler.Register(r, cfg.EntryRoutes)
	} else {
		r.Route(cfg.MountPath, func(r chi.Router) {
			handler.Register(r, cfg.EntryRoutes)
		})
	}

	return r
}
