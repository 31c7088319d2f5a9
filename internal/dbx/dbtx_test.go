package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMockPair(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	source, sourceMock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	target, targetMock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = source.Close()
		_ = target.Close()
	})
	return source, sourceMock, target, targetMock
}

func TestWithPairedTx_CommitsBothOnSuccess(t *testing.T) {
	source, sourceMock, target, targetMock := newMockPair(t)

	sourceMock.ExpectBegin()
	targetMock.ExpectBegin()
	targetMock.ExpectExec(`INSERT INTO t`).WillReturnResult(sqlmock.NewResult(0, 1))
	targetMock.ExpectCommit()
	sourceMock.ExpectCommit()

	err := WithPairedTx(context.Background(), source, target, false, func(ctx context.Context, src, tgt DBTX) error {
		_, err := tgt.ExecContext(ctx, `INSERT INTO t (v) VALUES ($1)`, "ok")
		return err
	})
	require.NoError(t, err)
	require.NoError(t, sourceMock.ExpectationsWereMet())
	require.NoError(t, targetMock.ExpectationsWereMet())
}

func TestWithPairedTx_RollsBackBothOnFnError(t *testing.T) {
	source, sourceMock, target, targetMock := newMockPair(t)

	sourceMock.ExpectBegin()
	targetMock.ExpectBegin()
	targetMock.ExpectRollback()
	sourceMock.ExpectRollback()

	boom := errors.New("boom")
	err := WithPairedTx(context.Background(), source, target, false, func(ctx context.Context, src, tgt DBTX) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, sourceMock.ExpectationsWereMet())
	require.NoError(t, targetMock.ExpectationsWereMet())
}

func TestWithPairedTx_DryRunRollsBackBoth(t *testing.T) {
	source, sourceMock, target, targetMock := newMockPair(t)

	sourceMock.ExpectBegin()
	targetMock.ExpectBegin()
	targetMock.ExpectExec(`INSERT INTO t`).WillReturnResult(sqlmock.NewResult(0, 1))
	targetMock.ExpectRollback()
	sourceMock.ExpectRollback()

	ran := false
	err := WithPairedTx(context.Background(), source, target, true, func(ctx context.Context, src, tgt DBTX) error {
		ran = true
		_, err := tgt.ExecContext(ctx, `INSERT INTO t (v) VALUES ($1)`, "ok")
		return err
	})
	require.NoError(t, err)
	require.True(t, ran, "fn must still run in dry-run mode")
	require.NoError(t, sourceMock.ExpectationsWereMet())
	require.NoError(t, targetMock.ExpectationsWereMet())
}

func TestWithPairedTx_SourceBeginError(t *testing.T) {
	source, sourceMock, target, _ := newMockPair(t)

	sourceMock.ExpectBegin().WillReturnError(errors.New("down"))

	err := WithPairedTx(context.Background(), source, target, false, func(ctx context.Context, src, tgt DBTX) error {
		t.Fatal("fn must not run")
		return nil
	})
	require.ErrorContains(t, err, "begin source tx")
	require.NoError(t, sourceMock.ExpectationsWereMet())
}

func TestWithPairedTx_TargetBeginErrorRollsBackSource(t *testing.T) {
	source, sourceMock, target, targetMock := newMockPair(t)

	sourceMock.ExpectBegin()
	targetMock.ExpectBegin().WillReturnError(errors.New("down"))
	sourceMock.ExpectRollback()

	err := WithPairedTx(context.Background(), source, target, false, func(ctx context.Context, src, tgt DBTX) error {
		t.Fatal("fn must not run")
		return nil
	})
	require.ErrorContains(t, err, "begin target tx")
	require.NoError(t, sourceMock.ExpectationsWereMet())
	require.NoError(t, targetMock.ExpectationsWereMet())
}

func TestWithPairedTx_TargetCommitErrorRollsBackSource(t *testing.T) {
	source, sourceMock, target, targetMock := newMockPair(t)

	sourceMock.ExpectBegin()
	targetMock.ExpectBegin()
	targetMock.ExpectCommit().WillReturnError(errors.New("commit failed"))
	sourceMock.ExpectRollback()

	err := WithPairedTx(context.Background(), source, target, false, func(ctx context.Context, src, tgt DBTX) error {
		return nil
	})
	require.ErrorContains(t, err, "commit target tx")
	require.NoError(t, sourceMock.ExpectationsWereMet())
	require.NoError(t, targetMock.ExpectationsWereMet())
}

func TestWithPairedTx_PanicRollsBackBothAndRethrows(t *testing.T) {
	source, sourceMock, target, targetMock := newMockPair(t)

	sourceMock.ExpectBegin()
	targetMock.ExpectBegin()
	targetMock.ExpectRollback()
	sourceMock.ExpectRollback()

	require.PanicsWithValue(t, "kaboom", func() {
		_ = WithPairedTx(context.Background(), source, target, false, func(ctx context.Context, src, tgt DBTX) error {
			panic("kaboom")
		})
	})
	require.NoError(t, sourceMock.ExpectationsWereMet())
	require.NoError(t, targetMock.ExpectationsWereMet())
}
