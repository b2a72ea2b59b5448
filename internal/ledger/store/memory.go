package store

import (
	"context"
	"sync"
	"time"

	"grantflow/internal/ledger/models"
	"grantflow/pkg/domain"
)

// Memory is an in-memory Store for tests.
type Memory struct {
	mu       sync.RWMutex
	nextID   int64
	requests map[int64]models.Request
}

func NewMemory() *Memory {
	return &Memory{
		nextID:   1,
		requests: make(map[int64]models.Request),
	}
}

func (s *Memory) Insert(_ context.Context, req *models.NewRequest) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	r := models.Request{
		ID:        s.nextID,
		UserID:    req.UserID,
		Kind:      req.Kind,
		TargetID:  req.TargetID,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextID++
	s.requests[r.ID] = r
	return &r, nil
}

func (s *Memory) Get(_ context.Context, id int64) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *Memory) ListByUser(_ context.Context, userID string) ([]models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Request
	// Newest first; ids are assigned in insertion order.
	for id := s.nextID - 1; id >= 1; id-- {
		if r, ok := s.requests[id]; ok && r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Memory) SetStatus(_ context.Context, id int64, status domain.Status, reason string) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Status = status
	r.Reason = reason
	r.UpdatedAt = time.Now().UTC()
	s.requests[id] = r
	return &r, nil
}
