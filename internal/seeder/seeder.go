// Package seeder applies the schema and loads demo data so a fresh
// environment is usable immediately.
package seeder

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"grantflow/migrations"
)

// Seeder prepares a database for local runs and demos.
type Seeder struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a new seeder.
func New(db *sql.DB, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, logger: logger}
}

// Migrate applies every embedded migration in filename order. Migrations are
// written to be re-runnable, so calling this on an existing database is safe.
func (s *Seeder) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := migrations.FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(raw)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		s.logger.Info("migration applied", "file", name)
	}
	return nil
}

// SeedAll loads the demo catalog: accesses, groups, group grants, a pair of
// conflicting groups, and one resource.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo data...")

	if err := s.seedCatalog(ctx); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	if err := s.seedConflicts(ctx); err != nil {
		return fmt.Errorf("failed to seed conflict rules: %w", err)
	}

	s.logger.Info("demo data seeded successfully")
	return nil
}

func (s *Seeder) seedCatalog(ctx context.Context) error {
	accesses := []struct {
		code, description string
	}{
		{"DB_READ", "Read access to the reporting database"},
		{"DB_WRITE", "Write access to the reporting database"},
		{"DEPLOY", "Trigger production deployments"},
		{"BILLING_VIEW", "View billing statements"},
	}
	for _, a := range accesses {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO accesses (code, description) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
			a.code, a.description,
		); err != nil {
			return fmt.Errorf("insert access %s: %w", a.code, err)
		}
	}

	groups := []struct {
		code, description string
		accessCodes       []string
	}{
		{"DEVELOPER", "Engineering staff", []string{"DB_READ", "DEPLOY"}},
		{"ANALYST", "Reporting and analytics", []string{"DB_READ"}},
		{"OWNER", "Budget owners", []string{"BILLING_VIEW"}},
	}
	for _, g := range groups {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO right_groups (code, description) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
			g.code, g.description,
		); err != nil {
			return fmt.Errorf("insert group %s: %w", g.code, err)
		}
		for _, code := range g.accessCodes {
			if _, err := s.db.ExecContext(ctx, `
				INSERT INTO group_accesses (group_id, access_id)
				SELECT g.id, a.id FROM right_groups g, accesses a
				WHERE g.code = $1 AND a.code = $2
				ON CONFLICT DO NOTHING`,
				g.code, code,
			); err != nil {
				return fmt.Errorf("link group %s to access %s: %w", g.code, code, err)
			}
		}
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO resources (code, description) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
		"reporting-db", "The shared reporting database",
	); err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO resource_accesses (resource_id, access_id)
		SELECT r.id, a.id FROM resources r, accesses a
		WHERE r.code = 'reporting-db' AND a.code IN ('DB_READ', 'DB_WRITE')
		ON CONFLICT DO NOTHING`,
	); err != nil {
		return fmt.Errorf("link resource accesses: %w", err)
	}
	return nil
}

func (s *Seeder) seedConflicts(ctx context.Context) error {
	// Developers deploy what owners pay for; holding both sides is the
	// canonical separation-of-duties violation in the demo set.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conflicting_groups (group_code_a, group_code_b)
		VALUES (LEAST('DEVELOPER', 'OWNER'), GREATEST('DEVELOPER', 'OWNER'))
		ON CONFLICT DO NOTHING`,
	)
	if err != nil {
		return fmt.Errorf("insert conflict rule: %w", err)
	}
	return nil
}
