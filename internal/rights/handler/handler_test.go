package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantflow/internal/platform/logger"
	"grantflow/internal/rights/models"
	"grantflow/internal/rights/service"
	"grantflow/internal/rights/store"
	"grantflow/pkg/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()

	st := store.NewMemory()
	st.AddAccess(models.Access{ID: 3, Code: "DB_READ"})
	st.AddGroup(models.RightGroup{ID: 1, Code: "DEVELOPER"}, 3)

	log := logger.New()
	h := New(service.New(st, service.WithLogger(log)), log)

	r := chi.NewRouter()
	h.Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, st
}

func TestHandleUserRightsShape(t *testing.T) {
	srv, st := newTestServer(t)
	require.NoError(t, st.InsertUserGroup(context.Background(), "u1", 1))

	resp, err := http.Get(srv.URL + "/user/u1/rights")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		UserID            string              `json:"user_id"`
		Groups            []models.RightGroup `json:"groups"`
		DirectAccesses    []models.Access     `json:"direct_accesses"`
		EffectiveAccesses []models.Access     `json:"effective_accesses"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "u1", body.UserID)
	require.Len(t, body.Groups, 1)
	assert.Equal(t, "DEVELOPER", body.Groups[0].Code)
	assert.Empty(t, body.DirectAccesses)
	require.Len(t, body.EffectiveAccesses, 1)
	assert.Equal(t, int64(3), body.EffectiveAccesses[0].ID)
}

func TestHandleApplyAndRevoke(t *testing.T) {
	srv, _ := newTestServer(t)

	applyBody, _ := json.Marshal(map[string]any{
		"request_id": 42,
		"user_id":    "u1",
		"kind":       string(domain.KindAccess),
		"target_id":  3,
	})
	resp, err := http.Post(srv.URL+"/access/apply", "application/json", bytes.NewReader(applyBody))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	revokeBody, _ := json.Marshal(map[string]any{"kind": string(domain.KindAccess), "target_id": 3})
	resp, err = http.Post(srv.URL+"/user/u1/revoke", "application/json", bytes.NewReader(revokeBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(1), out["removed"])
}

func TestHandleApplyMissingTargetReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"request_id": 1,
		"user_id":    "u1",
		"kind":       string(domain.KindGroup),
		"target_id":  9999,
	})
	resp, err := http.Post(srv.URL+"/access/apply", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleApplyEmptyUserRejected(t *testing.T) {
	srv, st := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"request_id": 1,
		"user_id":    "",
		"kind":       string(domain.KindAccess),
		"target_id":  3,
	})
	resp, err := http.Post(srv.URL+"/access/apply", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// No edge row may exist for the empty user id.
	removed, err := st.DeleteUserAccess(context.Background(), "", 3)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestHandleGroup(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/group/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		ID   int64  `json:"id"`
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, "DEVELOPER", out.Code)

	resp, err = http.Get(srv.URL + "/group/9999")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
