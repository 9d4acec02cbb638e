package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/indrapalijama/alkitab-api-v3/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

type routerConfig struct {
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers
	metrics     http.Handler

	bible            RouteRegistrar
	bibleMiddlewares []func(http.Handler) http.Handler

	allowedOrigins []string
	ratePerMinute  int
	clock          func() time.Time
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const (
	defaultTimeout    = 60 * time.Second
	errorNotFoundCode = "route_not_found"
	indexGreeting     = "soli deo gloria"
)

// NewRouter constructs the chi router with shared middleware and the /bible group.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
		},
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()

	if cfg.health == nil {
		cfg.health = NewHealthHandlers()
	}

	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}
	r.Use(middleware.Timeout(defaultTimeout))
	if len(cfg.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"*"},
			ExposedHeaders:   []string{httpx.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError(errorNotFoundCode, fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/", index)
	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	if cfg.bible != nil {
		limiter := newSimpleRateLimiter(cfg.ratePerMinute, time.Minute, cfg.clock)
		r.Route("/bible", func(group chi.Router) {
			group.Use(rateLimitMiddleware(limiter))
			for _, mw := range cfg.bibleMiddlewares {
				if mw != nil {
					group.Use(mw)
				}
			}
			cfg.bible(group)
		})
	}

	return r
}

func index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(indexGreeting))
}

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithHealthHandlers overrides the handlers used for /healthz and /readyz endpoints.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithMetricsHandler exposes h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.metrics = h
	}
}

// WithBibleRoutes configures the registrar responsible for /bible endpoints.
func WithBibleRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.bible = reg
	}
}

// WithBibleMiddlewares configures middlewares applied to the /bible group,
// after rate limiting.
func WithBibleMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.bibleMiddlewares = append(cfg.bibleMiddlewares, mw...)
	}
}

// WithAllowedOrigins enables CORS for the listed origins. No origins means no
// CORS headers are sent.
func WithAllowedOrigins(origins ...string) Option {
	return func(cfg *routerConfig) {
		cfg.allowedOrigins = append(cfg.allowedOrigins, origins...)
	}
}

// WithRateLimit caps /bible requests per client per minute. Zero disables it.
func WithRateLimit(perMinute int) Option {
	return func(cfg *routerConfig) {
		cfg.ratePerMinute = perMinute
	}
}

// WithClock injects the clock used by the rate limiter, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(cfg *routerConfig) {
		if now != nil {
			cfg.clock = now
		}
	}
}
