package models

// Access is a named capability a user can hold (e.g. DB_READ).
type Access struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// RightGroup is a named bundle of accesses (a role, e.g. DEVELOPER).
type RightGroup struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// Resource is something that demands a set of accesses from its users.
type Resource struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UserRights is the aggregated rights picture for one user.
//
// EffectiveAccesses is the deduplicated union of DirectAccesses and the
// accesses reachable through group membership: direct entries come first in
// retrieval order, then first-seen group-derived entries whose access id is
// not already present. The ordering is part of the contract.
type UserRights struct {
	UserID            string       `json:"user_id"`
	Groups            []RightGroup `json:"groups"`
	DirectAccesses    []Access     `json:"direct_accesses"`
	EffectiveAccesses []Access     `json:"effective_accesses"`
}
