package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"grantflow/internal/rights/models"
	"grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
	"grantflow/pkg/httputil"
)

// Service defines the rights operations the HTTP layer exposes.
type Service interface {
	UserRights(ctx context.Context, userID string) (*models.UserRights, error)
	Apply(ctx context.Context, userID string, kind domain.Kind, targetID int64) error
	Revoke(ctx context.Context, userID string, kind domain.Kind, targetID int64) (int64, error)
	Group(ctx context.Context, groupID int64) (*models.RightGroup, error)
	ResourceAccess(ctx context.Context, resourceID int64) ([]models.Access, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/user/{user_id}/rights", h.HandleUserRights)
	r.Post("/user/{user_id}/revoke", h.HandleRevoke)
	r.Get("/group/{group_id}", h.HandleGroup)
	r.Post("/access/apply", h.HandleApply)
	r.Get("/resource/{resource_id}/access", h.HandleResourceAccess)
}

// HandleUserRights returns groups, direct accesses, and effective accesses.
func (h *Handler) HandleUserRights(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	rights, err := h.service.UserRights(r.Context(), userID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "user rights failed", "user_id", userID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	// Keep the arrays non-null in the JSON body.
	if rights.Groups == nil {
		rights.Groups = []models.RightGroup{}
	}
	if rights.DirectAccesses == nil {
		rights.DirectAccesses = []models.Access{}
	}
	if rights.EffectiveAccesses == nil {
		rights.EffectiveAccesses = []models.Access{}
	}

	httputil.WriteJSON(w, http.StatusOK, rights)
}

type applyRequest struct {
	RequestID int64       `json:"request_id"`
	UserID    string      `json:"user_id"`
	Kind      domain.Kind `json:"kind"`
	TargetID  int64       `json:"target_id"`
}

// HandleApply applies an access or group to a user after an approved
// request. Idempotent; the request id is carried for traceability only.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[applyRequest](w, r, h.logger)
	if !ok {
		return
	}
	if req.UserID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "user_id is required"))
		return
	}

	if err := h.service.Apply(r.Context(), req.UserID, req.Kind, req.TargetID); err != nil {
		h.logger.ErrorContext(r.Context(), "apply failed",
			"request_id", req.RequestID,
			"user_id", req.UserID,
			"kind", req.Kind,
			"target_id", req.TargetID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"applied": true})
}

type revokeRequest struct {
	Kind     domain.Kind `json:"kind"`
	TargetID int64       `json:"target_id"`
}

// HandleRevoke removes an access or membership; absent edges yield removed=0.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "user_id is required"))
		return
	}

	req, ok := httputil.DecodeJSON[revokeRequest](w, r, h.logger)
	if !ok {
		return
	}

	removed, err := h.service.Revoke(r.Context(), userID, req.Kind, req.TargetID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "revoke failed", "user_id", userID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

// HandleGroup resolves a group's code by id.
func (h *Handler) HandleGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "group_id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid group id"))
		return
	}

	g, err := h.service.Group(r.Context(), groupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"id": g.ID, "code": g.Code})
}

// HandleResourceAccess lists accesses required by a resource.
func (h *Handler) HandleResourceAccess(w http.ResponseWriter, r *http.Request) {
	resourceID, err := strconv.ParseInt(chi.URLParam(r, "resource_id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid resource id"))
		return
	}

	accesses, err := h.service.ResourceAccess(r.Context(), resourceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if accesses == nil {
		accesses = []models.Access{}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"resource_id":       resourceID,
		"required_accesses": accesses,
	})
}
