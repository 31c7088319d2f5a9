// Package merge implements the transform-and-reconcile engine that moves
// legacy users and images into the redesigned schema. Reads stream from the
// source database, writes are batched upserts into the target, and both
// sides run inside a single pair of transactions that commit or roll back
// as a unit.
package merge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/migratool/internal/dbx"
	"github.com/dmitrijs2005/migratool/internal/logging"
	"github.com/dmitrijs2005/migratool/internal/transform"
)

// ErrInvalidBatchSize is returned by Run for batch sizes below 1.
var ErrInvalidBatchSize = errors.New("batch size must be at least 1")

// Config carries the runtime settings of one migration run.
type Config struct {
	SourceDSN string
	TargetDSN string
	BatchSize int
	DryRun    bool
}

// Result aggregates the per-entity outcome of a run. It is populated even
// in dry-run mode, where counters describe what would have happened.
type Result struct {
	Users  transform.SectionResult
	Images transform.SectionResult
}

// Run opens both databases and executes the user and image merges inside a
// paired transaction. On any failure nothing persists; in dry-run mode
// nothing persists either, but the counters are still returned.
func Run(ctx context.Context, cfg Config, log logging.Logger) (*Result, error) {
	if cfg.BatchSize < 1 {
		return nil, ErrInvalidBatchSize
	}

	source, err := sql.Open("mysql", withParseTime(cfg.SourceDSN))
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}
	defer source.Close()

	target, err := sql.Open("pgx", cfg.TargetDSN)
	if err != nil {
		return nil, fmt.Errorf("open target db: %w", err)
	}
	defer target.Close()

	if err := source.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping source db: %w", err)
	}
	if err := target.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping target db: %w", err)
	}

	return run(ctx, source, target, cfg, log)
}

// run is the transactional core of Run, split out so tests can drive it
// with prepared pools.
func run(ctx context.Context, source, target *sql.DB, cfg Config, log logging.Logger) (*Result, error) {
	log = log.With("run_id", uuid.NewString())
	runAt := time.Now().UTC()
	result := &Result{}

	err := dbx.WithPairedTx(ctx, source, target, cfg.DryRun, func(ctx context.Context, src, tgt dbx.DBTX) error {
		log.Info(ctx, "starting merge of users and images")

		// Image referential checks read tbl_user as of after the user
		// merge, so the order of these two calls is a hard precondition.
		users, err := MergeUsers(ctx, src, tgt, cfg.BatchSize, runAt, log)
		if err != nil {
			return err
		}
		result.Users = users

		images, err := MergeImages(ctx, src, tgt, cfg.BatchSize, runAt, log)
		if err != nil {
			return err
		}
		result.Images = images
		return nil
	})
	if err != nil {
		log.Error(ctx, "merge failed, all changes rolled back", "error", err.Error())
		return nil, fmt.Errorf("merge: %w", err)
	}

	if cfg.DryRun {
		log.Info(ctx, "dry-run enabled, all changes rolled back")
	} else {
		log.Info(ctx, "merge finished, all changes committed")
	}
	return result, nil
}

// withParseTime makes sure the mysql DSN asks the driver to scan DATETIME
// columns into time.Time.
func withParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}
