package main

import (
	"context"
	"os"
	"time"

	"grantflow/internal/platform/config"
	"grantflow/internal/platform/database"
	"grantflow/internal/platform/logger"
	"grantflow/internal/seeder"
)

// main applies migrations and loads demo data. Run once against a fresh
// database before starting the services.
func main() {
	log := logger.New()

	cfg := config.RightsFromEnv()
	pool, err := database.New(database.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer pool.Close() //nolint:errcheck // shutting down

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s := seeder.New(pool.DB(), log)
	if err := s.Migrate(ctx); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if err := s.SeedAll(ctx); err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}
