package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grantflow/internal/platform/config"
	"grantflow/internal/platform/database"
	"grantflow/internal/platform/health"
	"grantflow/internal/platform/logger"
	"grantflow/internal/platform/middleware"
	"grantflow/internal/rights/handler"
	"grantflow/internal/rights/service"
	"grantflow/internal/rights/store"
)

// main wires the rights service: the PostgreSQL store, the rights service
// layer, and the HTTP surface. Business logic lives in internal packages.
func main() {
	cfg := config.RightsFromEnv()
	log := logger.New()

	log.Info("initializing rights service", "addr", cfg.Addr)

	pool, err := database.New(database.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close() //nolint:errcheck // shutting down

	svc := service.New(store.NewPostgres(pool.DB()), service.WithLogger(log))

	checks := health.New()
	checks.Register("database", pool)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Get("/healthz", checks.Live)
	router.Get("/readyz", checks.Ready)
	router.Handle("/metrics", promhttp.Handler())
	handler.New(svc, log).Register(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
