// Package handler exposes the authorizer's small HTTP surface: a conflict
// probe other services can use to pre-check group combinations.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"grantflow/internal/authz/policy"
	dErrors "grantflow/pkg/domain-errors"
	"grantflow/pkg/httputil"
)

type Handler struct {
	policy policy.Policy
	logger *slog.Logger
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func New(pol policy.Policy, opts ...Option) *Handler {
	h := &Handler{
		policy: pol,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/conflicts/check", h.checkConflict)
}

type checkRequest struct {
	GroupCodes []string `json:"group_codes"`
}

type checkResponse struct {
	Conflict bool `json:"conflict"`
}

// checkConflict evaluates whether the given group codes contain a
// conflicting pair. It answers the same question the saga asks before
// approving a group request, so callers can probe a combination without
// submitting a request.
func (h *Handler) checkConflict(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[checkRequest](w, r, h.logger)
	if !ok {
		return
	}
	if len(req.GroupCodes) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "group_codes is required"))
		return
	}

	conflict, err := h.policy.HasConflict(r.Context(), req.GroupCodes)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "conflict check failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, checkResponse{Conflict: conflict})
}
