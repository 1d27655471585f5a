// Package api provides the HTTP API server and handlers for the Pagemark application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pagemark/pagemark-server/internal/store"
)

// Options tunes the HTTP surface.
type Options struct {
	// CORSOrigins lists allowed browser origins. Empty disables CORS headers.
	CORSOrigins []string

	// AuthRatePerMinute and AuthRateBurst bound credential requests per client IP.
	AuthRatePerMinute int
	AuthRateBurst     int

	// Version is reported in the OpenAPI document.
	Version string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if opts.AuthRatePerMinute <= 0 {
		opts.AuthRatePerMinute = 20
	}
	if opts.AuthRateBurst <= 0 {
		opts.AuthRateBurst = 5
	}

	s := &Server{
		store:           st,
		services:        services,
		router:          chi.NewRouter(),
		logger:          logger,
		authRateLimiter: NewRateLimiter(opts.AuthRatePerMinute, time.Minute, opts.AuthRateBurst),
	}

	s.setupMiddleware(opts)

	// Plain handlers go on the router before huma claims it.
	if services.Metrics != nil {
		s.router.Handle("/metrics", services.Metrics.Handler())
	}

	s.api = humachi.New(s.router, newHumaConfig(opts.Version))
	RegisterErrorHandler()
	s.registerRoutes()

	return s
}

func newHumaConfig(version string) huma.Config {
	humaConfig := huma.DefaultConfig("Pagemark API", version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	return humaConfig
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

// setupMiddleware configures the middleware stack. chi requires this to run
// before any route is added.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	if s.services.Metrics != nil {
		s.router.Use(s.services.Metrics.Middleware)
	}

	if len(opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	s.router.Use(pathPrefix("/api/v1/auth/", RateLimitMiddleware(s.authRateLimiter, s.logger)))
	s.router.Use(authMiddleware(s.services.Auth))
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerCategoryRoutes()
	s.registerBookRoutes()
	s.registerReadingSessionRoutes()
	s.registerNoteRoutes()
	s.registerStatsRoutes()
}
