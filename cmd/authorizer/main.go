package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"grantflow/internal/authz/client"
	"grantflow/internal/authz/handler"
	"grantflow/internal/authz/metrics"
	"grantflow/internal/authz/policy"
	"grantflow/internal/authz/saga"
	authzstore "grantflow/internal/authz/store"
	"grantflow/internal/platform/config"
	"grantflow/internal/platform/database"
	"grantflow/internal/platform/health"
	"grantflow/internal/platform/kafka/consumer"
	"grantflow/internal/platform/logger"
	"grantflow/internal/platform/middleware"
	"grantflow/internal/platform/redis"
)

// main wires the authorizer: the queue consumer feeding the saga, the
// conflict policy with its optional redis cache, and a small HTTP server
// for probes, metrics, and the conflict-check endpoint. The consumer and
// the server run under one errgroup so a fatal failure in either brings
// the process down instead of leaving it half-alive.
func main() {
	cfg := config.AuthorizerFromEnv()
	log := logger.New()

	log.Info("initializing authorizer",
		"addr", cfg.Addr,
		"topic", cfg.Kafka.RequestsTopic,
		"group_id", cfg.Kafka.GroupID,
	)

	pool, err := database.New(database.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close() //nolint:errcheck // shutting down

	cache, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close() //nolint:errcheck // shutting down
	}

	var conflicts authzstore.ConflictStore = authzstore.NewPostgres(pool.DB())
	if cache != nil {
		conflicts = authzstore.NewCachedConflictStore(conflicts, cache, cfg.ConflictCacheTTL, log)
	}
	pol := policy.NewStorePolicy(conflicts)

	m := metrics.New()
	observe := func(target string, d time.Duration) {
		m.OutboundLatency.WithLabelValues(target).Observe(d.Seconds())
	}
	rights := client.NewRights(cfg.RightsURL, cfg.CallTimeout, observe)
	ledger := client.NewLedger(cfg.LedgerURL, cfg.CallTimeout, observe)

	orch := saga.New(rights, ledger, pol,
		saga.WithLogger(log),
		saga.WithMetrics(m),
	)

	cons, err := consumer.New(consumer.Config{
		Brokers:     cfg.Kafka.Brokers,
		GroupID:     cfg.Kafka.GroupID,
		Topics:      []string{cfg.Kafka.RequestsTopic},
		MaxAttempts: cfg.MaxAttempts,
	}, orch, log)
	if err != nil {
		log.Error("kafka consumer unavailable", "error", err)
		os.Exit(1)
	}
	cons.OnPoison(m.PoisonMessages.Inc)

	checks := health.New()
	checks.Register("database", pool)
	if cache != nil {
		checks.Register("redis", cache)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Get("/healthz", checks.Live)
	router.Get("/readyz", checks.Ready)
	router.Handle("/metrics", promhttp.Handler())
	handler.New(pol, handler.WithLogger(log)).Register(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting queue consumer")
		return cons.Run(ctx)
	})

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("authorizer stopped with error", "error", err)
		os.Exit(1)
	}

	log.Info("authorizer stopped")
}
