package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "grantflow:conflict_pairs"

// CachedConflictStore is a read-through Redis cache in front of another
// ConflictStore. The rule set is reference data, so a short TTL keeps reads
// off the database without risking long-stale decisions.
//
// Cache failures degrade to the underlying store; they never fail an
// evaluation.
type CachedConflictStore struct {
	inner  ConflictStore
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedConflictStore(inner ConflictStore, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedConflictStore {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedConflictStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (s *CachedConflictStore) ConflictPairs(ctx context.Context) ([]ConflictPair, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	pairs, err := s.inner.ConflictPairs(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, pairs)
	return pairs, nil
}

func (s *CachedConflictStore) fromCache(ctx context.Context) ([]ConflictPair, bool) {
	raw, err := s.client.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.WarnContext(ctx, "conflict cache read failed", "error", err)
		}
		return nil, false
	}

	var pairs []ConflictPair
	if err := json.Unmarshal(raw, &pairs); err != nil {
		s.logger.WarnContext(ctx, "conflict cache entry malformed", "error", err)
		return nil, false
	}
	return pairs, true
}

func (s *CachedConflictStore) toCache(ctx context.Context, pairs []ConflictPair) {
	raw, err := json.Marshal(pairs)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "conflict cache write failed", "error", err)
	}
}
