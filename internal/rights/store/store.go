package store

import (
	"context"

	"grantflow/internal/rights/models"
	dErrors "grantflow/pkg/domain-errors"
)

// ErrNotFound is returned when a record cannot be located.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

// Store is the persistence boundary for rights data. Edge tables are sets:
// inserts are atomic insert-or-no-op operations guarded by the storage
// layer's uniqueness constraint, never read-then-write.
type Store interface {
	UserGroups(ctx context.Context, userID string) ([]models.RightGroup, error)
	UserDirectAccesses(ctx context.Context, userID string) ([]models.Access, error)
	AccessesForGroups(ctx context.Context, groupIDs []int64) ([]models.Access, error)

	GroupByID(ctx context.Context, groupID int64) (*models.RightGroup, error)
	AccessExists(ctx context.Context, accessID int64) (bool, error)
	GroupExists(ctx context.Context, groupID int64) (bool, error)

	InsertUserAccess(ctx context.Context, userID string, accessID int64) error
	InsertUserGroup(ctx context.Context, userID string, groupID int64) error
	DeleteUserAccess(ctx context.Context, userID string, accessID int64) (int64, error)
	DeleteUserGroup(ctx context.Context, userID string, groupID int64) (int64, error)

	RequiredAccessesForResource(ctx context.Context, resourceID int64) ([]models.Access, error)
	ResourceExists(ctx context.Context, resourceID int64) (bool, error)
}
