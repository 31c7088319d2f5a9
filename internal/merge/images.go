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

const selectLegacyImages = `SELECT uuid, kind, label, file_name, uploaded_by, uploaded_at, category, trace_id FROM images ORDER BY uploaded_at, uuid`

const imageUpsertColumns = 11

// defaultVisibility marks every migrated image as visible; the legacy
// schema had no equivalent concept.
const defaultVisibility int16 = 1

// MergeImages migrates legacy images into tbl_image. It must run after
// MergeUsers in the same target transaction: uploader references are
// validated against tbl_user state as of after the user merge. Rows without
// a resolvable uploader or a mappable kind are counted as skipped and
// logged, never written.
func MergeImages(ctx context.Context, src, tgt dbx.DBTX, batchSize int, runAt time.Time, log logging.Logger) (transform.SectionResult, error) {
	var summary transform.SectionResult

	if err := EnsureRequiredAspects(ctx, tgt, log); err != nil {
		return summary, err
	}

	existing, err := collectStringSet(ctx, tgt, `SELECT uuid FROM tbl_image`)
	if err != nil {
		return summary, err
	}
	knownUsers, err := collectInt64Set(ctx, tgt, `SELECT id FROM tbl_user`)
	if err != nil {
		return summary, err
	}

	rows, err := src.QueryContext(ctx, selectLegacyImages)
	if err != nil {
		return summary, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	batch := make([]imageRecord, 0, batchSize)
	for rows.Next() {
		var id, fileName string
		var kind, label, category, traceID sql.NullString
		var uploadedBy sql.NullInt64
		var uploadedAt sql.NullTime
		if err := rows.Scan(&id, &kind, &label, &fileName, &uploadedBy, &uploadedAt, &category, &traceID); err != nil {
			return summary, fmt.Errorf("db error: %w", err)
		}

		summary.Processed++

		if !uploadedBy.Valid {
			summary.Skipped++
			log.Warn(ctx, "image has no uploader, skipping", "uuid", id)
			continue
		}
		if _, ok := knownUsers[uploadedBy.Int64]; !ok {
			summary.Skipped++
			log.Warn(ctx, "image uploader missing in target, skipping", "uuid", id, "user_id", uploadedBy.Int64)
			continue
		}

		aspectID, err := transform.DeriveAspectID(kind.String)
		if err != nil {
			summary.Skipped++
			log.Warn(ctx, "image skipped", "uuid", id, "reason", err.Error())
			continue
		}

		if _, ok := existing[id]; ok {
			summary.Updated++
		} else {
			summary.Inserted++
			existing[id] = struct{}{}
		}

		batch = append(batch, imageRecord{
			UUID:        id,
			UserID:      uploadedBy.Int64,
			AspectID:    aspectID,
			Name:        transform.BuildName(label.String, id, kind.String),
			Description: transform.BuildDescription(label.String, category.String, kind.String),
			Visibility:  defaultVisibility,
			Labels:      transform.BuildLabels(kind.String, category.String),
			FileName:    fileName,
			MetadataID:  traceID,
			CreatedAt:   normalizeTime(uploadedAt, runAt),
			UpdatedAt:   runAt,
		})

		if len(batch) >= batchSize {
			if err := upsertImages(ctx, tgt, batch); err != nil {
				return summary, err
			}
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return summary, fmt.Errorf("db error: %w", err)
	}

	if err := upsertImages(ctx, tgt, batch); err != nil {
		return summary, err
	}

	log.Info(ctx, "image merge finished",
		"processed", summary.Processed,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

func upsertImages(ctx context.Context, tgt dbx.DBTX, batch []imageRecord) error {
	if len(batch) == 0 {
		return nil
	}

	values := make([]string, 0, len(batch))
	args := make([]any, 0, len(batch)*imageUpsertColumns)
	for i, img := range batch {
		base := i * imageUpsertColumns
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d::text[], $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10, base+11))
		args = append(args,
			img.UUID, img.UserID, img.AspectID, img.Name, img.Description,
			img.Visibility, textArray(img.Labels), img.FileName, img.MetadataID,
			img.CreatedAt, img.UpdatedAt)
	}

	query := `INSERT INTO tbl_image (uuid, user_id, aspect_id, name, description, visibility, labels, file_name, metadata_id, created_at, updated_at) VALUES ` +
		strings.Join(values, ", ") +
		` ON CONFLICT (uuid) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			aspect_id = EXCLUDED.aspect_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			visibility = EXCLUDED.visibility,
			labels = EXCLUDED.labels,
			file_name = EXCLUDED.file_name,
			metadata_id = EXCLUDED.metadata_id,
			updated_at = EXCLUDED.updated_at`

	if _, err := tgt.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
