package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantflow/internal/authz/models"
	"grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
)

func jsonDecode(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func TestRightsUserRights(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/u1/rights", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"user_id": "u1",
			"groups": [{"id": 10, "code": "DEVELOPER"}],
			"direct_accesses": [{"id": 3, "code": "DB_READ"}],
			"effective_accesses": [{"id": 3, "code": "DB_READ"}]
		}`))
	}))
	defer srv.Close()

	c := NewRights(srv.URL, time.Second, nil)
	rights, err := c.UserRights(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", rights.UserID)
	require.Len(t, rights.Groups, 1)
	assert.Equal(t, "DEVELOPER", rights.Groups[0].Code)
	assert.Len(t, rights.EffectiveAccesses, 1)
}

func TestRightsGroupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewRights(srv.URL, time.Second, nil)
	_, err := c.Group(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestServerErrorMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewRights(srv.URL, time.Second, nil)
	_, err := c.UserRights(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.True(t, dErrors.IsTransient(err))
}

func TestTimeoutMapsToTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewRights(srv.URL, 20*time.Millisecond, nil)
	_, err := c.UserRights(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.True(t, dErrors.IsTransient(err))
}

func TestUnreachableMapsToUnavailable(t *testing.T) {
	c := NewRights("http://127.0.0.1:1", time.Second, nil)
	_, err := c.UserRights(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestLedgerReportStatus(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		require.NoError(t, jsonDecode(r, &gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewLedger(srv.URL, time.Second, nil)
	err := c.ReportStatus(context.Background(), 42, domain.StatusRejected, domain.ReasonConflictingGroups)
	require.NoError(t, err)
	assert.Equal(t, "/requests/42/status", gotPath)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "rejected", gotBody["status"])
	assert.Equal(t, "Conflicting groups", gotBody["reason"])
}

func TestLedgerApprovedOmitsReason(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, jsonDecode(r, &gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewLedger(srv.URL, time.Second, nil)
	require.NoError(t, c.ReportStatus(context.Background(), 7, domain.StatusApproved, ""))
	assert.Equal(t, "approved", gotBody["status"])
	assert.NotContains(t, gotBody, "reason")
}

func TestObserveReceivesLatency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var observed string
	c := NewLedger(srv.URL, time.Second, func(target string, d time.Duration) {
		observed = target
		assert.GreaterOrEqual(t, d, time.Duration(0))
	})
	require.NoError(t, c.ReportStatus(context.Background(), 1, domain.StatusApproved, ""))
	assert.Equal(t, "ledger", observed)
}

func TestApplySendsMessage(t *testing.T) {
	var gotBody models.RequestMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/access/apply", r.URL.Path)
		require.NoError(t, jsonDecode(r, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"applied": true}`))
	}))
	defer srv.Close()

	c := NewRights(srv.URL, time.Second, nil)
	err := c.Apply(context.Background(), &models.RequestMessage{
		RequestID: 9, UserID: "u1", Kind: domain.KindAccess, TargetID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), gotBody.RequestID)
	assert.Equal(t, domain.KindAccess, gotBody.Kind)
}
