package store

import "context"

// ConflictPair is an unordered pair of group codes that must not be held by
// one user simultaneously. Pairs are stored as facts about codes, not
// foreign keys to live groups.
type ConflictPair struct {
	CodeA string
	CodeB string
}

// Normalized returns the pair in (min, max) lexicographic order so the
// symmetric rule has one canonical form.
func (p ConflictPair) Normalized() ConflictPair {
	if p.CodeA > p.CodeB {
		return ConflictPair{CodeA: p.CodeB, CodeB: p.CodeA}
	}
	return p
}

// ConflictStore loads the conflict-rule reference data.
type ConflictStore interface {
	ConflictPairs(ctx context.Context) ([]ConflictPair, error)
}
