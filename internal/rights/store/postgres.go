package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"grantflow/internal/rights/models"
)

// Postgres implements Store over PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a PostgreSQL-backed rights store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// UserGroups returns the groups a user belongs to, ordered by group id so
// retrieval order is deterministic.
func (s *Postgres) UserGroups(ctx context.Context, userID string) ([]models.RightGroup, error) {
	query := `
		SELECT g.id, g.code, COALESCE(g.description, '')
		FROM right_groups g
		JOIN user_groups ug ON ug.group_id = g.id
		WHERE ug.user_id = $1
		ORDER BY g.id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query user groups: %w", err)
	}
	defer rows.Close()

	var groups []models.RightGroup
	for rows.Next() {
		var g models.RightGroup
		if err := rows.Scan(&g.ID, &g.Code, &g.Description); err != nil {
			return nil, fmt.Errorf("scan right group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate right groups: %w", err)
	}
	return groups, nil
}

// UserDirectAccesses returns a user's direct grants, ordered by access id.
func (s *Postgres) UserDirectAccesses(ctx context.Context, userID string) ([]models.Access, error) {
	query := `
		SELECT a.id, a.code, COALESCE(a.description, '')
		FROM accesses a
		JOIN user_accesses ua ON ua.access_id = a.id
		WHERE ua.user_id = $1
		ORDER BY a.id
	`
	return s.queryAccesses(ctx, query, userID)
}

// AccessesForGroups returns the accesses granted through any of the groups,
// ordered by access id. Duplicate rows are possible when several groups
// grant the same access; the service-level merge deduplicates.
func (s *Postgres) AccessesForGroups(ctx context.Context, groupIDs []int64) ([]models.Access, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT a.id, a.code, COALESCE(a.description, '')
		FROM accesses a
		JOIN group_accesses ga ON ga.access_id = a.id
		WHERE ga.group_id = ANY($1)
		ORDER BY a.id
	`
	return s.queryAccesses(ctx, query, groupIDs)
}

// GroupByID returns a group or ErrNotFound.
func (s *Postgres) GroupByID(ctx context.Context, groupID int64) (*models.RightGroup, error) {
	query := `SELECT id, code, COALESCE(description, '') FROM right_groups WHERE id = $1`

	var g models.RightGroup
	err := s.db.QueryRowContext(ctx, query, groupID).Scan(&g.ID, &g.Code, &g.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query right group: %w", err)
	}
	return &g, nil
}

func (s *Postgres) AccessExists(ctx context.Context, accessID int64) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM accesses WHERE id = $1)`, accessID)
}

func (s *Postgres) GroupExists(ctx context.Context, groupID int64) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM right_groups WHERE id = $1)`, groupID)
}

func (s *Postgres) ResourceExists(ctx context.Context, resourceID int64) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM resources WHERE id = $1)`, resourceID)
}

// InsertUserAccess grants an access directly to a user. Re-inserting an
// existing pair is a no-op; the unique constraint is the sole
// concurrency-control mechanism.
func (s *Postgres) InsertUserAccess(ctx context.Context, userID string, accessID int64) error {
	query := `
		INSERT INTO user_accesses (user_id, access_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, access_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, userID, accessID); err != nil {
		return fmt.Errorf("insert user access: %w", err)
	}
	return nil
}

// InsertUserGroup adds a user to a group. Idempotent like InsertUserAccess.
func (s *Postgres) InsertUserGroup(ctx context.Context, userID string, groupID int64) error {
	query := `
		INSERT INTO user_groups (user_id, group_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, group_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, userID, groupID); err != nil {
		return fmt.Errorf("insert user group: %w", err)
	}
	return nil
}

// DeleteUserAccess removes a direct grant, reporting how many rows went away.
func (s *Postgres) DeleteUserAccess(ctx context.Context, userID string, accessID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_accesses WHERE user_id = $1 AND access_id = $2`,
		userID, accessID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete user access: %w", err)
	}
	return res.RowsAffected()
}

// DeleteUserGroup removes a membership, reporting how many rows went away.
func (s *Postgres) DeleteUserGroup(ctx context.Context, userID string, groupID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_groups WHERE user_id = $1 AND group_id = $2`,
		userID, groupID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete user group: %w", err)
	}
	return res.RowsAffected()
}

// RequiredAccessesForResource returns the accesses a resource demands.
func (s *Postgres) RequiredAccessesForResource(ctx context.Context, resourceID int64) ([]models.Access, error) {
	query := `
		SELECT a.id, a.code, COALESCE(a.description, '')
		FROM accesses a
		JOIN resource_accesses ra ON ra.access_id = a.id
		WHERE ra.resource_id = $1
		ORDER BY a.id
	`
	return s.queryAccesses(ctx, query, resourceID)
}

func (s *Postgres) queryAccesses(ctx context.Context, query string, args ...any) ([]models.Access, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query accesses: %w", err)
	}
	defer rows.Close()

	var accesses []models.Access
	for rows.Next() {
		var a models.Access
		if err := rows.Scan(&a.ID, &a.Code, &a.Description); err != nil {
			return nil, fmt.Errorf("scan access: %w", err)
		}
		accesses = append(accesses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accesses: %w", err)
	}
	return accesses, nil
}

func (s *Postgres) exists(ctx context.Context, query string, id int64) (bool, error) {
	var ok bool
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return ok, nil
}
