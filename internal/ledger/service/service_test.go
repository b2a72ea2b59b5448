package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantflow/internal/ledger/models"
	"grantflow/internal/ledger/store"
	"grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
)

type published struct {
	RequestID int64
	UserID    string
	Kind      domain.Kind
	TargetID  int64
}

type fakePublisher struct {
	events []published
	err    error
}

func (f *fakePublisher) PublishRequest(_ context.Context, requestID int64, userID string, kind domain.Kind, targetID int64) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, published{requestID, userID, kind, targetID})
	return nil
}

func TestCreatePublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	svc := New(store.NewMemory(), pub)

	r, err := svc.Create(context.Background(), &models.NewRequest{
		UserID: "u1", Kind: domain.KindGroup, TargetID: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, r.Status)
	assert.False(t, r.CreatedAt.IsZero())

	require.Len(t, pub.events, 1)
	assert.Equal(t, r.ID, pub.events[0].RequestID)
	assert.Equal(t, "u1", pub.events[0].UserID)
	assert.Equal(t, domain.KindGroup, pub.events[0].Kind)
	assert.Equal(t, int64(10), pub.events[0].TargetID)
}

func TestCreateValidation(t *testing.T) {
	svc := New(store.NewMemory(), &fakePublisher{})

	_, err := svc.Create(context.Background(), &models.NewRequest{Kind: domain.KindAccess, TargetID: 1})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = svc.Create(context.Background(), &models.NewRequest{UserID: "u1", Kind: "nope", TargetID: 1})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestCreatePublishFailureSurfaces(t *testing.T) {
	st := store.NewMemory()
	svc := New(st, &fakePublisher{err: dErrors.New(dErrors.CodeUnavailable, "brokers down")})

	_, err := svc.Create(context.Background(), &models.NewRequest{
		UserID: "u1", Kind: domain.KindAccess, TargetID: 3,
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))

	// The row exists but no event is behind it; it shows up as pending.
	requests, listErr := st.ListByUser(context.Background(), "u1")
	require.NoError(t, listErr)
	require.Len(t, requests, 1)
	assert.Equal(t, domain.StatusPending, requests[0].Status)
}

func TestGetUnknownRequest(t *testing.T) {
	svc := New(store.NewMemory(), &fakePublisher{})

	_, err := svc.Get(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestListByUserNewestFirst(t *testing.T) {
	svc := New(store.NewMemory(), &fakePublisher{})

	first, err := svc.Create(context.Background(), &models.NewRequest{UserID: "u1", Kind: domain.KindAccess, TargetID: 3})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), &models.NewRequest{UserID: "u1", Kind: domain.KindGroup, TargetID: 10})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), &models.NewRequest{UserID: "u2", Kind: domain.KindAccess, TargetID: 3})
	require.NoError(t, err)

	requests, err := svc.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, second.ID, requests[0].ID)
	assert.Equal(t, first.ID, requests[1].ID)
}

func TestSetStatusRecordsOutcome(t *testing.T) {
	svc := New(store.NewMemory(), &fakePublisher{})
	r, err := svc.Create(context.Background(), &models.NewRequest{UserID: "u1", Kind: domain.KindGroup, TargetID: 10})
	require.NoError(t, err)

	updated, err := svc.SetStatus(context.Background(), r.ID, domain.StatusRejected, domain.ReasonConflictingGroups)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, updated.Status)
	assert.Equal(t, domain.ReasonConflictingGroups, updated.Reason)
}

func TestSetStatusAllowsResetToPending(t *testing.T) {
	svc := New(store.NewMemory(), &fakePublisher{})
	r, err := svc.Create(context.Background(), &models.NewRequest{UserID: "u1", Kind: domain.KindGroup, TargetID: 10})
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), r.ID, domain.StatusApproved, "")
	require.NoError(t, err)

	updated, err := svc.SetStatus(context.Background(), r.ID, domain.StatusPending, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, updated.Status)
}

func TestSetStatusValidation(t *testing.T) {
	svc := New(store.NewMemory(), &fakePublisher{})

	_, err := svc.SetStatus(context.Background(), 1, "done", "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = svc.SetStatus(context.Background(), 404, domain.StatusApproved, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
