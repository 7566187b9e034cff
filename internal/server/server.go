package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dativo-io/piiredact/internal/otel"
)

const (
	defaultTimeout = 30 * time.Second
	// MaxBodyBytes bounds the size of a record submitted to /v1/redact.
	MaxBodyBytes = 1 << 20
)

// Server holds the dependencies of the HTTP API.
type Server struct {
	router    *chi.Mux
	limiter   *RateLimiter
	version   string
	startTime time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithRateLimiter enables rate limiting of the API routes.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) { s.limiter = rl }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer builds a Server.
func NewServer(opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		version:   "dev",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the configured http.Handler. It must be called once.
func (s *Server) Routes() http.Handler {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(rememberPeer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(otel.Middleware())

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(s.limiter))
		r.Use(middleware.Timeout(defaultTimeout))
		r.Post("/v1/redact", s.handleRedact)
		r.Get("/v1/rules", s.handleRules)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed here")
	})
	return r
}
