// Package store persists ledger requests.
package store

import (
	"context"
	"errors"

	"grantflow/internal/ledger/models"
	"grantflow/pkg/domain"
)

// ErrNotFound is returned when a request does not exist.
var ErrNotFound = errors.New("request not found")

type Store interface {
	// Insert creates a pending request and returns it with its assigned id
	// and timestamps.
	Insert(ctx context.Context, req *models.NewRequest) (*models.Request, error)
	// Get returns a request by id, or ErrNotFound.
	Get(ctx context.Context, id int64) (*models.Request, error)
	// ListByUser returns the user's requests, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Request, error)
	// SetStatus updates status and reason. Any transition is accepted,
	// including back to pending. Returns ErrNotFound for unknown ids.
	SetStatus(ctx context.Context, id int64, status domain.Status, reason string) (*models.Request, error)
}
