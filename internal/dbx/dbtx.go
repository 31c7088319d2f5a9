// Package dbx provides tiny DB abstractions shared by the merge engine:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// and a helper that coordinates a pair of transactions spanning the
// source and target databases.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql used by the engine.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithPairedTx begins one transaction on each database, runs fn with the
// two transactional handles, and settles both as a unit: any error or panic
// from fn rolls back both (target first, then source) and propagates. When
// dryRun is set, both transactions are rolled back even on success, so fn's
// computed results survive but no change ever persists. Otherwise both
// commit, target first.
//
// fn must not commit, roll back, or close the handles it is given.
//
// Typical use:
//
//	err := dbx.WithPairedTx(ctx, source, target, cfg.DryRun, func(ctx context.Context, src, tgt dbx.DBTX) error {
//	    // read from src, write to tgt
//	    return nil
//	})
func WithPairedTx(ctx context.Context, source, target *sql.DB, dryRun bool, fn func(ctx context.Context, src, tgt DBTX) error) error {
	srcTx, err := source.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin source tx: %w", err)
	}

	tgtTx, err := target.BeginTx(ctx, nil)
	if err != nil {
		_ = srcTx.Rollback()
		return fmt.Errorf("begin target tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tgtTx.Rollback()
			_ = srcTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, srcTx, tgtTx); err != nil {
		_ = tgtTx.Rollback()
		_ = srcTx.Rollback()
		return err
	}

	if dryRun {
		if err := tgtTx.Rollback(); err != nil {
			_ = srcTx.Rollback()
			return fmt.Errorf("rollback target tx: %w", err)
		}
		if err := srcTx.Rollback(); err != nil {
			return fmt.Errorf("rollback source tx: %w", err)
		}
		return nil
	}

	if err := tgtTx.Commit(); err != nil {
		_ = srcTx.Rollback()
		return fmt.Errorf("commit target tx: %w", err)
	}
	if err := srcTx.Commit(); err != nil {
		return fmt.Errorf("commit source tx: %w", err)
	}
	return nil
}
