package upload

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Clark-Hu/movie-ratings/internal/config"
)

// Server exposes the upload handler over HTTP.
type Server struct {
	cfg     config.UploadConfig
	handler *Handler
	logger  *log.Logger
	router  chi.Router
	httpSrv *http.Server
}

// NewServer wires routes for the upload service. The upload directory must already exist.
func NewServer(cfg config.UploadConfig, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:     cfg,
		handler: NewHandler(cfg.Dir, cfg.MaxBytes, logger),
		logger:  logger,
		router:  r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Method(http.MethodPost, "/upload", s.handler)
}

// Start boots the HTTP server and blocks until ctx is cancelled or the listener fails.
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
	info, err := os.Stat(s.cfg.Dir)
	if err != nil || !info.IsDir() {
		s.logger.Printf("health check failed: upload dir %s unavailable: %v", s.cfg.Dir, err)
		s.handler.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "upload directory unavailable")
		return
	}
	s.handler.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
