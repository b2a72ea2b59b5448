package service

import (
	"context"
	"log/slog"

	"grantflow/internal/rights/models"
	"grantflow/internal/rights/store"
	"grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
)

// Service owns rights aggregation and the idempotent grant applier.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserRights computes the full rights picture for a user: groups, direct
// accesses, and the effective union.
//
// The merge starts from the direct accesses in retrieval order; a
// group-derived access is appended only when its id has not been seen yet,
// so a direct grant always wins over a group-derived one sharing the same
// access id.
func (s *Service) UserRights(ctx context.Context, userID string) (*models.UserRights, error) {
	groups, err := s.store.UserGroups(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user groups")
	}

	direct, err := s.store.UserDirectAccesses(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load direct accesses")
	}

	groupIDs := make([]int64, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}

	groupAccesses, err := s.store.AccessesForGroups(ctx, groupIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load group accesses")
	}

	effective := make([]models.Access, 0, len(direct)+len(groupAccesses))
	seen := make(map[int64]struct{}, len(direct))
	for _, a := range direct {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		effective = append(effective, a)
	}
	for _, a := range groupAccesses {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		effective = append(effective, a)
	}

	return &models.UserRights{
		UserID:            userID,
		Groups:            groups,
		DirectAccesses:    direct,
		EffectiveAccesses: effective,
	}, nil
}

// Apply grants an access or group membership to a user. The target must
// exist; re-applying an existing grant is a no-op, which makes message
// redelivery safe.
func (s *Service) Apply(ctx context.Context, userID string, kind domain.Kind, targetID int64) error {
	if err := kind.Validate(); err != nil {
		return err
	}

	switch kind {
	case domain.KindAccess:
		ok, err := s.store.AccessExists(ctx, targetID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check access target")
		}
		if !ok {
			return dErrors.New(dErrors.CodeNotFound, "target not found")
		}
		if err := s.store.InsertUserAccess(ctx, userID, targetID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply access")
		}

	case domain.KindGroup:
		ok, err := s.store.GroupExists(ctx, targetID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check group target")
		}
		if !ok {
			return dErrors.New(dErrors.CodeNotFound, "target not found")
		}
		if err := s.store.InsertUserGroup(ctx, userID, targetID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply group")
		}
	}

	s.logger.InfoContext(ctx, "grant applied",
		"user_id", userID,
		"kind", kind,
		"target_id", targetID,
	)
	return nil
}

// Revoke removes an access or membership from a user. Revoking something
// the user does not hold removes nothing and is not an error.
func (s *Service) Revoke(ctx context.Context, userID string, kind domain.Kind, targetID int64) (int64, error) {
	if err := kind.Validate(); err != nil {
		return 0, err
	}

	var (
		removed int64
		err     error
	)
	switch kind {
	case domain.KindAccess:
		removed, err = s.store.DeleteUserAccess(ctx, userID, targetID)
	case domain.KindGroup:
		removed, err = s.store.DeleteUserGroup(ctx, userID, targetID)
	}
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke")
	}

	if removed > 0 {
		s.logger.InfoContext(ctx, "grant revoked",
			"user_id", userID,
			"kind", kind,
			"target_id", targetID,
			"removed", removed,
		)
	}
	return removed, nil
}

// Group returns a group's id and code, or not_found.
func (s *Service) Group(ctx context.Context, groupID int64) (*models.RightGroup, error) {
	g, err := s.store.GroupByID(ctx, groupID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "group not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load group")
	}
	return g, nil
}

// ResourceAccess lists the accesses required by a resource.
func (s *Service) ResourceAccess(ctx context.Context, resourceID int64) ([]models.Access, error) {
	ok, err := s.store.ResourceExists(ctx, resourceID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check resource")
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "resource not found")
	}

	accesses, err := s.store.RequiredAccessesForResource(ctx, resourceID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load resource accesses")
	}
	return accesses, nil
}
