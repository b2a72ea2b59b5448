package store

import (
	"context"
	"slices"
	"sync"

	"grantflow/internal/rights/models"
)

// Memory is an in-memory Store used in tests and the demo environment.
// Edge collections keep insertion order so retrieval order stays
// deterministic, matching the ORDER BY in the postgres store closely enough
// for the merge-order contract.
type Memory struct {
	mu sync.RWMutex

	accesses  map[int64]models.Access
	groups    map[int64]models.RightGroup
	resources map[int64]models.Resource

	groupAccesses    map[int64][]int64  // group id -> access ids
	resourceAccesses map[int64][]int64  // resource id -> access ids
	userAccesses     map[string][]int64 // user id -> access ids
	userGroups       map[string][]int64 // user id -> group ids
}

func NewMemory() *Memory {
	return &Memory{
		accesses:         make(map[int64]models.Access),
		groups:           make(map[int64]models.RightGroup),
		resources:        make(map[int64]models.Resource),
		groupAccesses:    make(map[int64][]int64),
		resourceAccesses: make(map[int64][]int64),
		userAccesses:     make(map[string][]int64),
		userGroups:       make(map[string][]int64),
	}
}

// Seed helpers for wiring reference data in tests.

func (s *Memory) AddAccess(a models.Access) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accesses[a.ID] = a
}

func (s *Memory) AddGroup(g models.RightGroup, accessIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = g
	s.groupAccesses[g.ID] = append(s.groupAccesses[g.ID], accessIDs...)
}

func (s *Memory) AddResource(r models.Resource, accessIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[r.ID] = r
	s.resourceAccesses[r.ID] = append(s.resourceAccesses[r.ID], accessIDs...)
}

func (s *Memory) UserGroups(_ context.Context, userID string) ([]models.RightGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []models.RightGroup
	for _, id := range s.userGroups[userID] {
		if g, ok := s.groups[id]; ok {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

func (s *Memory) UserDirectAccesses(_ context.Context, userID string) ([]models.Access, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var accesses []models.Access
	for _, id := range s.userAccesses[userID] {
		if a, ok := s.accesses[id]; ok {
			accesses = append(accesses, a)
		}
	}
	return accesses, nil
}

func (s *Memory) AccessesForGroups(_ context.Context, groupIDs []int64) ([]models.Access, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var accesses []models.Access
	for _, gid := range groupIDs {
		for _, aid := range s.groupAccesses[gid] {
			if a, ok := s.accesses[aid]; ok {
				accesses = append(accesses, a)
			}
		}
	}
	return accesses, nil
}

func (s *Memory) GroupByID(_ context.Context, groupID int64) (*models.RightGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if g, ok := s.groups[groupID]; ok {
		return &g, nil
	}
	return nil, ErrNotFound
}

func (s *Memory) AccessExists(_ context.Context, accessID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accesses[accessID]
	return ok, nil
}

func (s *Memory) GroupExists(_ context.Context, groupID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.groups[groupID]
	return ok, nil
}

func (s *Memory) ResourceExists(_ context.Context, resourceID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.resources[resourceID]
	return ok, nil
}

func (s *Memory) InsertUserAccess(_ context.Context, userID string, accessID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.userAccesses[userID], accessID) {
		return nil
	}
	s.userAccesses[userID] = append(s.userAccesses[userID], accessID)
	return nil
}

func (s *Memory) InsertUserGroup(_ context.Context, userID string, groupID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.userGroups[userID], groupID) {
		return nil
	}
	s.userGroups[userID] = append(s.userGroups[userID], groupID)
	return nil
}

func (s *Memory) DeleteUserAccess(_ context.Context, userID string, accessID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.userAccesses[userID])
	s.userAccesses[userID] = slices.DeleteFunc(s.userAccesses[userID], func(id int64) bool {
		return id == accessID
	})
	return int64(before - len(s.userAccesses[userID])), nil
}

func (s *Memory) DeleteUserGroup(_ context.Context, userID string, groupID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.userGroups[userID])
	s.userGroups[userID] = slices.DeleteFunc(s.userGroups[userID], func(id int64) bool {
		return id == groupID
	})
	return int64(before - len(s.userGroups[userID])), nil
}

func (s *Memory) RequiredAccessesForResource(_ context.Context, resourceID int64) ([]models.Access, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var accesses []models.Access
	for _, aid := range s.resourceAccesses[resourceID] {
		if a, ok := s.accesses[aid]; ok {
			accesses = append(accesses, a)
		}
	}
	return accesses, nil
}
