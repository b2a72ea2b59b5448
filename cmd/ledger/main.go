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

	"grantflow/internal/ledger/gateway"
	"grantflow/internal/ledger/handler"
	"grantflow/internal/ledger/publisher"
	"grantflow/internal/ledger/service"
	"grantflow/internal/ledger/store"
	"grantflow/internal/platform/config"
	"grantflow/internal/platform/database"
	"grantflow/internal/platform/health"
	"grantflow/internal/platform/kafka/producer"
	"grantflow/internal/platform/logger"
	"grantflow/internal/platform/middleware"
)

// main wires the request ledger: request storage, the queue producer that
// triggers the authorization saga, and the client-facing HTTP surface.
func main() {
	cfg := config.LedgerFromEnv()
	log := logger.New()

	log.Info("initializing request ledger",
		"addr", cfg.Addr,
		"topic", cfg.Kafka.RequestsTopic,
	)

	pool, err := database.New(database.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close() //nolint:errcheck // shutting down

	prod, err := producer.New(producer.Config{
		Brokers:         cfg.Kafka.Brokers,
		DeliveryTimeout: 15 * time.Second,
	}, log)
	if err != nil {
		log.Error("kafka producer unavailable", "error", err)
		os.Exit(1)
	}
	defer prod.Close() //nolint:errcheck // shutting down

	svc := service.New(
		store.NewPostgres(pool.DB()),
		publisher.New(prod, cfg.Kafka.RequestsTopic),
		service.WithLogger(log),
	)
	rights := gateway.NewRights(cfg.RightsURL, cfg.CallTimeout)

	checks := health.New()
	checks.Register("database", pool)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Get("/healthz", checks.Live)
	router.Get("/readyz", checks.Ready)
	router.Handle("/metrics", promhttp.Handler())
	handler.New(svc, rights, log).Register(router)

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
