package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"grantflow/internal/ledger/models"
	"grantflow/pkg/domain"
)

// Postgres implements Store over PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a PostgreSQL-backed request store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const requestColumns = `id, user_id, kind, target_id, status, COALESCE(reason, ''), created_at, updated_at`

// Insert creates a pending request.
func (s *Postgres) Insert(ctx context.Context, req *models.NewRequest) (*models.Request, error) {
	query := `
		INSERT INTO requests (user_id, kind, target_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + requestColumns

	row := s.db.QueryRowContext(ctx, query, req.UserID, req.Kind, req.TargetID, domain.StatusPending)
	return scanRequest(row)
}

// Get returns a request by id, or ErrNotFound.
func (s *Postgres) Get(ctx context.Context, id int64) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	r, err := scanRequest(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// ListByUser returns the user's requests, newest first.
func (s *Postgres) ListByUser(ctx context.Context, userID string) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE user_id = $1 ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		var r models.Request
		if err := rows.Scan(&r.ID, &r.UserID, &r.Kind, &r.TargetID, &r.Status, &r.Reason, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return requests, nil
}

// SetStatus updates status and reason, or returns ErrNotFound.
func (s *Postgres) SetStatus(ctx context.Context, id int64, status domain.Status, reason string) (*models.Request, error) {
	query := `
		UPDATE requests
		SET status = $2, reason = NULLIF($3, ''), updated_at = now()
		WHERE id = $1
		RETURNING ` + requestColumns

	r, err := scanRequest(s.db.QueryRowContext(ctx, query, id, status, reason))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func scanRequest(row *sql.Row) (*models.Request, error) {
	var r models.Request
	if err := row.Scan(&r.ID, &r.UserID, &r.Kind, &r.TargetID, &r.Status, &r.Reason, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan request: %w", err)
	}
	return &r, nil
}
