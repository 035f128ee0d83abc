package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/Clark-Hu/movie-ratings/internal/auth"
	"github.com/Clark-Hu/movie-ratings/internal/config"
	"github.com/Clark-Hu/movie-ratings/internal/domain"
	"github.com/Clark-Hu/movie-ratings/internal/repository"
	"github.com/Clark-Hu/movie-ratings/internal/store"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	store    *store.Store
	repo     *repository.Repository
	tokens   *auth.TokenManager
	validate *validator.Validate
	logger   *log.Logger
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, tokens *auth.TokenManager, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:      cfg,
		store:    st,
		repo:     repo,
		tokens:   tokens,
		validate: newValidator(),
		logger:   logger,
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Post("/register", s.handleRegister)
	s.router.Post("/login", s.handleLogin)

	s.router.Route("/movies", func(r chi.Router) {
		r.Get("/", s.handleListMovies)
		r.Get("/ratings", s.handleListMovieRatings)
		r.Get("/{movieID}", s.handleGetMovie)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(domain.RoleAdmin))
				r.Post("/add", s.handleCreateMovie)
				r.Delete("/ratings/admin-delete/{ratingID}", s.handleAdminDeleteRating)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(domain.RoleUser))
				r.Post("/ratings/submit/{movieID}", s.handleSubmitRating)
				r.Put("/ratings/update/{ratingID}", s.handleUpdateRating)
				r.Delete("/ratings/user-delete/{ratingID}", s.handleUserDeleteRating)
			})
		})
	})
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server asynchronously.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		s.logger.Printf("health check failed: %v", err)
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
