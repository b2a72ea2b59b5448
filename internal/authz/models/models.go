package models

import (
	"grantflow/pkg/domain"
	dErrors "grantflow/pkg/domain-errors"
)

// RequestMessage is the queue payload that triggers one authorization saga.
type RequestMessage struct {
	RequestID int64       `json:"request_id"`
	UserID    string      `json:"user_id"`
	Kind      domain.Kind `json:"kind"`
	TargetID  int64       `json:"target_id"`
}

// Validate rejects payloads the saga cannot act on. A payload failing this
// check is poison, not retryable.
func (m *RequestMessage) Validate() error {
	if m.RequestID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "request_id must be positive")
	}
	if m.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if err := m.Kind.Validate(); err != nil {
		return err
	}
	if m.TargetID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "target_id must be positive")
	}
	return nil
}

// GroupRef is the minimal group view the saga works with.
type GroupRef struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

// AccessRef is the minimal access view returned by the rights service.
type AccessRef struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

// UserRights is the rights service response the saga consumes. Only the
// groups portion feeds the conflict decision; the rest is carried for
// completeness of the contract.
type UserRights struct {
	UserID            string      `json:"user_id"`
	Groups            []GroupRef  `json:"groups"`
	DirectAccesses    []AccessRef `json:"direct_accesses"`
	EffectiveAccesses []AccessRef `json:"effective_accesses"`
}
