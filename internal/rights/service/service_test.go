package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantflow/internal/rights/models"
	"grantflow/internal/rights/store"
	"grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
)

func newSeededStore() *store.Memory {
	st := store.NewMemory()
	st.AddAccess(models.Access{ID: 3, Code: "DB_READ"})
	st.AddAccess(models.Access{ID: 5, Code: "X"})
	st.AddAccess(models.Access{ID: 9, Code: "Y"})
	st.AddGroup(models.RightGroup{ID: 1, Code: "DEVELOPER"}, 5, 9)
	st.AddGroup(models.RightGroup{ID: 2, Code: "OWNER"}, 3)
	return st
}

func TestEffectiveRightsDirectEntryWins(t *testing.T) {
	st := newSeededStore()
	svc := New(st)
	ctx := context.Background()

	// Direct access 5 and membership in a group that also grants 5 plus 9.
	require.NoError(t, svc.Apply(ctx, "u1", domain.KindAccess, 5))
	require.NoError(t, svc.Apply(ctx, "u1", domain.KindGroup, 1))

	rights, err := svc.UserRights(ctx, "u1")
	require.NoError(t, err)

	require.Len(t, rights.EffectiveAccesses, 2)
	assert.Equal(t, int64(5), rights.EffectiveAccesses[0].ID)
	assert.Equal(t, "X", rights.EffectiveAccesses[0].Code)
	assert.Equal(t, int64(9), rights.EffectiveAccesses[1].ID)
	assert.Equal(t, "Y", rights.EffectiveAccesses[1].Code)

	require.Len(t, rights.DirectAccesses, 1)
	require.Len(t, rights.Groups, 1)
	assert.Equal(t, "DEVELOPER", rights.Groups[0].Code)
}

func TestEffectiveRightsDirectComesFirst(t *testing.T) {
	st := newSeededStore()
	svc := New(st)
	ctx := context.Background()

	require.NoError(t, svc.Apply(ctx, "u1", domain.KindGroup, 1))  // grants 5, 9
	require.NoError(t, svc.Apply(ctx, "u1", domain.KindAccess, 9)) // direct

	rights, err := svc.UserRights(ctx, "u1")
	require.NoError(t, err)

	// Direct access 9 leads even though group-derived 5 has a smaller id.
	require.Len(t, rights.EffectiveAccesses, 2)
	assert.Equal(t, int64(9), rights.EffectiveAccesses[0].ID)
	assert.Equal(t, int64(5), rights.EffectiveAccesses[1].ID)
}

func TestUserRightsEmptyUser(t *testing.T) {
	svc := New(newSeededStore())

	rights, err := svc.UserRights(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, rights.Groups)
	assert.Empty(t, rights.DirectAccesses)
	assert.Empty(t, rights.EffectiveAccesses)
}

func TestApplyIsIdempotent(t *testing.T) {
	st := newSeededStore()
	svc := New(st)
	ctx := context.Background()

	require.NoError(t, svc.Apply(ctx, "u1", domain.KindAccess, 3))
	require.NoError(t, svc.Apply(ctx, "u1", domain.KindAccess, 3))

	rights, err := svc.UserRights(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, rights.DirectAccesses, 1)
}

func TestApplyMissingTarget(t *testing.T) {
	svc := New(newSeededStore())

	err := svc.Apply(context.Background(), "u1", domain.KindAccess, 9999)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	err = svc.Apply(context.Background(), "u1", domain.KindGroup, 9999)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestApplyRejectsUnknownKind(t *testing.T) {
	svc := New(newSeededStore())

	err := svc.Apply(context.Background(), "u1", domain.Kind("role"), 3)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRevokeAbsentEdgeReturnsZero(t *testing.T) {
	svc := New(newSeededStore())

	removed, err := svc.Revoke(context.Background(), "u1", domain.KindAccess, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestRevokeRemovesExactlyOnce(t *testing.T) {
	st := newSeededStore()
	svc := New(st)
	ctx := context.Background()

	require.NoError(t, svc.Apply(ctx, "u1", domain.KindGroup, 2))

	removed, err := svc.Revoke(ctx, "u1", domain.KindGroup, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = svc.Revoke(ctx, "u1", domain.KindGroup, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestGroupLookup(t *testing.T) {
	svc := New(newSeededStore())

	g, err := svc.Group(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "DEVELOPER", g.Code)

	_, err = svc.Group(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestResourceAccess(t *testing.T) {
	st := newSeededStore()
	st.AddResource(models.Resource{ID: 7, Name: "billing-db"}, 3, 5)
	svc := New(st)

	accesses, err := svc.ResourceAccess(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, accesses, 2)
	assert.Equal(t, "DB_READ", accesses[0].Code)

	_, err = svc.ResourceAccess(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
