package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Postgres implements ConflictStore over PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// ConflictPairs returns every stored conflict rule. The rule set is small
// and slow-changing, so a full scan per evaluation is acceptable.
func (s *Postgres) ConflictPairs(ctx context.Context) ([]ConflictPair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_code_a, group_code_b FROM conflicting_groups`,
	)
	if err != nil {
		return nil, fmt.Errorf("query conflict pairs: %w", err)
	}
	defer rows.Close()

	var pairs []ConflictPair
	for rows.Next() {
		var p ConflictPair
		if err := rows.Scan(&p.CodeA, &p.CodeB); err != nil {
			return nil, fmt.Errorf("scan conflict pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conflict pairs: %w", err)
	}
	return pairs, nil
}
