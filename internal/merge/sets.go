package merge

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/migratool/internal/dbx"
)

// Membership sets replace per-row existence queries: each merge loads the
// keys already present in the target once, then mutates the set as new keys
// are written within the run.

func collectInt64Set(ctx context.Context, db dbx.DBTX, query string) (map[int64]struct{}, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	set := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		set[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return set, nil
}

func collectStringSet(ctx context.Context, db dbx.DBTX, query string, args ...any) (map[string]struct{}, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		set[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return set, nil
}
