package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/orbitshare/orbitshare/pkg/orbitshare"
	"github.com/orbitshare/orbitshare/pkg/orbitshare/api"
	"github.com/orbitshare/orbitshare/pkg/orbitshare/auth"
	"github.com/orbitshare/orbitshare/pkg/orbitshare/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	repo, cleanup, err := cfg.BuildRepository(ctx)
	if err != nil {
		logger.Error("failed to build repository", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	blobStore, err := cfg.BuildBlobStore()
	if err != nil {
		logger.Error("failed to build blob store", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewJWT([]byte(cfg.JWTSecret), cfg.TokenTTL)

	svc, err := orbitshare.New(
		orbitshare.WithRepository(repo),
		orbitshare.WithBlobStore(blobStore),
		orbitshare.WithTokenIssuer(tokens),
		orbitshare.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to build service", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(svc, tokens, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: routes(handler, cfg),
	}

	go func() {
		logger.Info("orbitshare server starting",
			"port", cfg.Port, "env", cfg.Environment, "storage", cfg.StorageURL)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exiting")
}

func routes(handler *api.Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	if cfg.Environment == "development" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

				if r.Method == "OPTIONS" {
					w.WriteHeader(http.StatusOK)
					return
				}

				next.ServeHTTP(w, r)
			})
		})
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "environment": %q}`, cfg.Environment)
	})

	r.Mount("/api", handler.Routes())

	return r
}
