// Package policy decides whether a set of group codes violates the
// mutual-exclusion business rule.
package policy

import (
	"context"

	"grantflow/internal/authz/store"
	dErrors "grantflow/pkg/domain-errors"
)

// Policy evaluates group-conflict rules. Implementations must be
// deterministic, symmetric, and side-effect free.
type Policy interface {
	HasConflict(ctx context.Context, groupCodes []string) (bool, error)
}

// StorePolicy evaluates conflicts against the stored rule set.
type StorePolicy struct {
	store store.ConflictStore
}

func NewStorePolicy(st store.ConflictStore) *StorePolicy {
	return &StorePolicy{store: st}
}

// HasConflict reports whether any unordered pair drawn from groupCodes is a
// stored conflict rule. Duplicates in the input are ignored; fewer than two
// distinct codes can never conflict.
func (p *StorePolicy) HasConflict(ctx context.Context, groupCodes []string) (bool, error) {
	codes := dedupe(groupCodes)
	if len(codes) < 2 {
		return false, nil
	}

	pairs, err := p.store.ConflictPairs(ctx)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load conflict rules")
	}

	forbidden := make(map[store.ConflictPair]struct{}, len(pairs))
	for _, pair := range pairs {
		forbidden[pair.Normalized()] = struct{}{}
	}

	for i := 0; i < len(codes); i++ {
		for j := i + 1; j < len(codes); j++ {
			candidate := store.ConflictPair{CodeA: codes[i], CodeB: codes[j]}.Normalized()
			if _, ok := forbidden[candidate]; ok {
				return true, nil
			}
		}
	}
	return false, nil
}

func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
