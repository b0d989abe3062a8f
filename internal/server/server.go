// Package server exposes the course catalog and per-user progress over a
// JSON HTTP API backed by the SQLite store.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/papapumpkin/syllabus/internal/logger"
	"github.com/papapumpkin/syllabus/internal/store"
)

// Options configures a Server.
type Options struct {
	// Secret signs session tokens. It must not be empty.
	Secret string
	// SessionTTL is how long a login lasts. Zero means 7 days.
	SessionTTL time.Duration
	// AllowedOrigins lists CORS origins permitted to send credentials.
	AllowedOrigins []string
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
}

// Server is the course API.
type Server struct {
	db       *store.SQLite
	log      *logger.Logger
	opts     Options
	tokens   *tokens
	validate *validator.Validate
	metrics  *metrics
}

// ErrNoSecret is returned by New when Options.Secret is empty.
var ErrNoSecret = errors.New("server: session secret is required")

// New returns a Server over db.
func New(db *store.SQLite, log *logger.Logger, opts Options) (*Server, error) {
	if opts.Secret == "" {
		return nil, ErrNoSecret
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		db:       db,
		log:      log.With("component", "server"),
		opts:     opts,
		tokens:   &tokens{secret: []byte(opts.Secret), ttl: opts.SessionTTL, now: time.Now},
		validate: validator.New(),
		metrics:  newMetrics(),
	}, nil
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.log.Zap()))
	r.Use(s.metrics.instrument)
	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(s.session)

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/modules", s.listModules)
		r.Post("/register", s.register)
		r.Post("/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/logout", s.logout)
			r.Get("/user", s.currentUser)
			r.Get("/progress", s.getProgress)
			r.Post("/progress", s.postProgress)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
