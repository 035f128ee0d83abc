package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clark-Hu/movie-ratings/db/migrations"
	"github.com/Clark-Hu/movie-ratings/internal/auth"
	"github.com/Clark-Hu/movie-ratings/internal/config"
	httpserver "github.com/Clark-Hu/movie-ratings/internal/http"
	"github.com/Clark-Hu/movie-ratings/internal/repository"
	"github.com/Clark-Hu/movie-ratings/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[movies-api] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	if cfg.AutoMigrate {
		if err := st.Migrate(dbCtx, migrations.FS); err != nil {
			log.Fatalf("migrate database: %v", err)
		}
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLSecs)*time.Second)
	if err != nil {
		log.Fatalf("init token manager: %v", err)
	}

	repo := repository.New(st)
	server := httpserver.New(cfg, st, repo, tokens, logger)

	logger.Printf("listening on :%s", cfg.Port)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
