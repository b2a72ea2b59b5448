package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantflow/internal/authz/store"
)

func newPolicy(pairs ...store.ConflictPair) *StorePolicy {
	return NewStorePolicy(store.NewMemory(pairs...))
}

func TestHasConflictSymmetric(t *testing.T) {
	p := newPolicy(store.ConflictPair{CodeA: "DEVELOPER", CodeB: "OWNER"})
	ctx := context.Background()

	ab, err := p.HasConflict(ctx, []string{"DEVELOPER", "OWNER"})
	require.NoError(t, err)
	ba, err := p.HasConflict(ctx, []string{"OWNER", "DEVELOPER"})
	require.NoError(t, err)

	assert.True(t, ab)
	assert.Equal(t, ab, ba)
}

func TestHasConflictStoredPairOrderIrrelevant(t *testing.T) {
	// Stored in "reversed" order; normalization must still match.
	p := newPolicy(store.ConflictPair{CodeA: "OWNER", CodeB: "AUDITOR"})

	conflict, err := p.HasConflict(context.Background(), []string{"AUDITOR", "OWNER"})
	require.NoError(t, err)
	assert.True(t, conflict)
}

func TestHasConflictFewerThanTwoDistinctCodes(t *testing.T) {
	p := newPolicy(store.ConflictPair{CodeA: "DEVELOPER", CodeB: "OWNER"})
	ctx := context.Background()

	for _, codes := range [][]string{
		nil,
		{},
		{"DEVELOPER"},
		{"DEVELOPER", "DEVELOPER", "DEVELOPER"},
	} {
		conflict, err := p.HasConflict(ctx, codes)
		require.NoError(t, err)
		assert.False(t, conflict, "codes %v", codes)
	}
}

func TestHasConflictNoMatch(t *testing.T) {
	p := newPolicy(store.ConflictPair{CodeA: "DEVELOPER", CodeB: "OWNER"})

	conflict, err := p.HasConflict(context.Background(), []string{"DEVELOPER", "AUDITOR", "SUPPORT"})
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestHasConflictAnyPairAmongMany(t *testing.T) {
	p := newPolicy(
		store.ConflictPair{CodeA: "DEVELOPER", CodeB: "OWNER"},
		store.ConflictPair{CodeA: "AUDITOR", CodeB: "SUPPORT"},
	)

	conflict, err := p.HasConflict(context.Background(), []string{"SUPPORT", "DEVELOPER", "AUDITOR"})
	require.NoError(t, err)
	assert.True(t, conflict)
}

type failingStore struct{}

func (failingStore) ConflictPairs(context.Context) ([]store.ConflictPair, error) {
	return nil, errors.New("db down")
}

func TestHasConflictStoreErrorPropagates(t *testing.T) {
	p := NewStorePolicy(failingStore{})

	_, err := p.HasConflict(context.Background(), []string{"A", "B"})
	require.Error(t, err)
}

func TestHasConflictStoreNotQueriedBelowTwoCodes(t *testing.T) {
	// A failing store proves the short-circuit: no rule load for n < 2.
	p := NewStorePolicy(failingStore{})

	conflict, err := p.HasConflict(context.Background(), []string{"A", "A"})
	require.NoError(t, err)
	assert.False(t, conflict)
}
