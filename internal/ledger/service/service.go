// Package service implements the request ledger's business operations.
package service

import (
	"context"
	"errors"
	"log/slog"

	"grantflow/internal/ledger/models"
	"grantflow/internal/ledger/store"
	"grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
)

// QueuePublisher emits the event that starts the authorization saga.
type QueuePublisher interface {
	PublishRequest(ctx context.Context, requestID int64, userID string, kind domain.Kind, targetID int64) error
}

type Service struct {
	store     store.Store
	publisher QueuePublisher
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(st store.Store, pub QueuePublisher, opts ...Option) *Service {
	s := &Service{
		store:     st,
		publisher: pub,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a pending request and publishes the saga trigger. The row is
// written first so the event always references an existing request. If the
// publish fails the row stays pending with no event behind it; the caller
// gets an error and the stuck request is visible in listings.
func (s *Service) Create(ctx context.Context, req *models.NewRequest) (*models.Request, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	created, err := s.store.Insert(ctx, req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create request")
	}

	if err := s.publisher.PublishRequest(ctx, created.ID, created.UserID, created.Kind, created.TargetID); err != nil {
		s.logger.ErrorContext(ctx, "request created but event not published",
			"request_id", created.ID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to submit request")
	}

	s.logger.InfoContext(ctx, "request submitted",
		"request_id", created.ID,
		"user_id", created.UserID,
		"kind", created.Kind,
		"target_id", created.TargetID,
	)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Request, error) {
	r, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load request")
	}
	return r, nil
}

// ListByUser returns the user's requests, newest first. An unknown user is
// not an error; the list is just empty.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.Request, error) {
	requests, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return requests, nil
}

// SetStatus records the authorizer's outcome. Any transition is accepted,
// including moving a terminal request back to pending; the ledger records
// what it is told rather than enforcing a state machine.
func (s *Service) SetStatus(ctx context.Context, id int64, status domain.Status, reason string) (*models.Request, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	r, err := s.store.SetStatus(ctx, id, status, reason)
	if errors.Is(err, store.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update request status")
	}

	s.logger.InfoContext(ctx, "request status updated",
		"request_id", r.ID,
		"status", r.Status,
		"reason", r.Reason,
	)
	return r, nil
}
