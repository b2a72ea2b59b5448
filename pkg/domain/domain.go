// Package domain holds value types shared by the ledger, the rights
// service, and the authorization saga.
package domain

import dErrors "grantflow/pkg/domain-errors"

// Kind discriminates what a request targets: a single access or a whole
// right group.
type Kind string

const (
	KindAccess Kind = "access"
	KindGroup  Kind = "group"
)

// Validate rejects unknown kinds.
func (k Kind) Validate() error {
	switch k {
	case KindAccess, KindGroup:
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, "kind must be 'access' or 'group'")
}

// Status is a request's processing state. Terminal states are approved and
// rejected; nothing structurally prevents a request from being reset to
// pending (kept from the original design for manual re-review).
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Validate rejects unknown statuses.
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, "status must be 'pending', 'approved' or 'rejected'")
}

// Rejection reasons reported to the ledger by the saga.
const (
	ReasonGroupNotFound     = "Group not found"
	ReasonConflictingGroups = "Conflicting groups"
)
