package store

import (
	"context"
	"sync"
)

// Memory is an in-memory ConflictStore for tests.
type Memory struct {
	mu    sync.RWMutex
	pairs []ConflictPair
}

func NewMemory(pairs ...ConflictPair) *Memory {
	return &Memory{pairs: pairs}
}

func (s *Memory) Add(codeA, codeB string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs = append(s.pairs, ConflictPair{CodeA: codeA, CodeB: codeB})
}

func (s *Memory) ConflictPairs(_ context.Context) ([]ConflictPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ConflictPair, len(s.pairs))
	copy(out, s.pairs)
	return out, nil
}
