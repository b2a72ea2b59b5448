package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"grantflow/internal/ledger/gateway"
	"grantflow/internal/ledger/models"
	"grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
	"grantflow/pkg/httputil"
)

// Service defines the ledger operations the HTTP layer exposes.
type Service interface {
	Create(ctx context.Context, req *models.NewRequest) (*models.Request, error)
	Get(ctx context.Context, id int64) (*models.Request, error)
	ListByUser(ctx context.Context, userID string) ([]models.Request, error)
	SetStatus(ctx context.Context, id int64, status domain.Status, reason string) (*models.Request, error)
}

// RightsGateway forwards user-facing rights calls to the rights service.
type RightsGateway interface {
	UserRights(ctx context.Context, userID string) (*gateway.Response, error)
	Revoke(ctx context.Context, userID string, body []byte) (*gateway.Response, error)
	ResourceAccess(ctx context.Context, resourceID int64) (*gateway.Response, error)
}

type Handler struct {
	service Service
	rights  RightsGateway
	logger  *slog.Logger
}

func New(service Service, rights RightsGateway, logger *slog.Logger) *Handler {
	return &Handler{service: service, rights: rights, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/requests", h.HandleCreate)
	r.Get("/requests/{request_id}", h.HandleGet)
	r.Get("/requests/user/{user_id}", h.HandleListByUser)
	r.Patch("/requests/{request_id}/status", h.HandleSetStatus)

	// Pass-through endpoints so clients only talk to the ledger.
	r.Get("/user/{user_id}/rights", h.HandleUserRights)
	r.Post("/user/{user_id}/revoke", h.HandleRevoke)
	r.Get("/resource/{resource_id}/access", h.HandleResourceAccess)
}

// HandleCreate opens a pending request and hands it to the authorizer.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[models.NewRequest](w, r, h.logger)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "create request failed", "user_id", req.UserID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	requests, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list requests failed", "user_id", userID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	if requests == nil {
		requests = []models.Request{}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":  userID,
		"requests": requests,
	})
}

type statusPatch struct {
	Status domain.Status `json:"status"`
	Reason string        `json:"reason"`
}

// HandleSetStatus is the authorizer's outcome callback. It also serves as
// the manual override surface, which is why pending is a legal target.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	patch, ok := httputil.DecodeJSON[statusPatch](w, r, h.logger)
	if !ok {
		return
	}

	updated, err := h.service.SetStatus(r.Context(), id, patch.Status, patch.Reason)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "status update failed", "request_id", id, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, updated)
}

// HandleUserRights proxies the rights picture from the rights service.
func (h *Handler) HandleUserRights(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	resp, err := h.rights.UserRights(r.Context(), userID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "rights proxy failed", "user_id", userID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	writeUpstream(w, resp)
}

// HandleRevoke proxies a revocation to the rights service.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.rights.Revoke(r.Context(), userID, body)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "revoke proxy failed", "user_id", userID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	writeUpstream(w, resp)
}

// HandleResourceAccess proxies a resource's required accesses from the
// rights service.
func (h *Handler) HandleResourceAccess(w http.ResponseWriter, r *http.Request) {
	resourceID, err := strconv.ParseInt(chi.URLParam(r, "resource_id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid resource id"))
		return
	}

	resp, err := h.rights.ResourceAccess(r.Context(), resourceID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "resource access proxy failed", "resource_id", resourceID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	writeUpstream(w, resp)
}

func writeUpstream(w http.ResponseWriter, resp *gateway.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

func requestID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "request_id"), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid request id")
	}
	return id, nil
}
