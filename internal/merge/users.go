package merge

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/migratool/internal/dbx"
	"github.com/dmitrijs2005/migratool/internal/logging"
	"github.com/dmitrijs2005/migratool/internal/transform"
)

const selectLegacyUsers = `SELECT id, username, hashed_password, created_at FROM users ORDER BY id`

const userUpsertColumns = 7

// MergeUsers streams legacy users ordered by id, adapts each row to the
// tbl_user shape and upserts them in batches. Identifiers are preserved
// verbatim, so the backing sequence is advanced afterwards to stay clear of
// migrated ids. Rows are never skipped here; Skipped stays 0.
func MergeUsers(ctx context.Context, src, tgt dbx.DBTX, batchSize int, runAt time.Time, log logging.Logger) (transform.SectionResult, error) {
	var summary transform.SectionResult

	existing, err := collectInt64Set(ctx, tgt, `SELECT id FROM tbl_user`)
	if err != nil {
		return summary, err
	}

	rows, err := src.QueryContext(ctx, selectLegacyUsers)
	if err != nil {
		return summary, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	batch := make([]userRecord, 0, batchSize)
	for rows.Next() {
		var (
			id                 int64
			username, password string
			createdAt          sql.NullTime
		)
		if err := rows.Scan(&id, &username, &password, &createdAt); err != nil {
			return summary, fmt.Errorf("db error: %w", err)
		}

		summary.Processed++
		if _, ok := existing[id]; ok {
			summary.Updated++
		} else {
			summary.Inserted++
			existing[id] = struct{}{}
		}

		batch = append(batch, userRecord{
			ID:         id,
			Username:   username,
			Password:   password,
			Privileges: transform.NormalizePrivileges(),
			CreatedAt:  normalizeTime(createdAt, runAt),
			UpdatedAt:  runAt,
		})

		if len(batch) >= batchSize {
			if err := upsertUsers(ctx, tgt, batch); err != nil {
				return summary, err
			}
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return summary, fmt.Errorf("db error: %w", err)
	}

	if err := upsertUsers(ctx, tgt, batch); err != nil {
		return summary, err
	}

	if err := syncUserSequence(ctx, tgt); err != nil {
		return summary, err
	}

	log.Info(ctx, "user merge finished",
		"processed", summary.Processed,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

func upsertUsers(ctx context.Context, tgt dbx.DBTX, batch []userRecord) error {
	if len(batch) == 0 {
		return nil
	}

	values := make([]string, 0, len(batch))
	args := make([]any, 0, len(batch)*userUpsertColumns)
	for i, u := range batch {
		base := i * userUpsertColumns
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d::text[], $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, u.ID, u.Username, u.Password, nil, textArray(u.Privileges), u.CreatedAt, u.UpdatedAt)
	}

	query := `INSERT INTO tbl_user (id, username, password, phone, privileges, created_at, updated_at) VALUES ` +
		strings.Join(values, ", ") +
		` ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			password = EXCLUDED.password,
			phone = EXCLUDED.phone,
			privileges = EXCLUDED.privileges,
			updated_at = EXCLUDED.updated_at`

	if _, err := tgt.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// syncUserSequence advances tbl_user's id sequence past the highest
// migrated identifier so organic inserts cannot collide with carried-over
// ids.
func syncUserSequence(ctx context.Context, tgt dbx.DBTX) error {
	var last int64
	err := tgt.QueryRowContext(ctx,
		`SELECT setval('tbl_user_id_seq', COALESCE((SELECT MAX(id) FROM tbl_user), 0), true)`,
	).Scan(&last)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
