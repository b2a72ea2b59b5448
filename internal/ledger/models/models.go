// Package models defines the request ledger's domain types.
package models

import (
	"time"

	"grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
)

// Request is one access request tracked by the ledger. It starts pending
// and is moved to a terminal status by the authorizer's callback.
type Request struct {
	ID        int64         `json:"id"`
	UserID    string        `json:"user_id"`
	Kind      domain.Kind   `json:"kind"`
	TargetID  int64         `json:"target_id"`
	Status    domain.Status `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewRequest carries the fields a caller supplies when opening a request.
type NewRequest struct {
	UserID   string      `json:"user_id"`
	Kind     domain.Kind `json:"kind"`
	TargetID int64       `json:"target_id"`
}

func (r *NewRequest) Validate() error {
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	if r.TargetID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "target_id must be positive")
	}
	return nil
}
