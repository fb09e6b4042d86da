package apply

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbal/internal/dialect"
)

func newMockApplier(t *testing.T, opts Options) (*Applier, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var buf bytes.Buffer
	opts.Out = &buf
	a := NewApplier(opts)
	a.Attach(db)
	return a, mock, &buf
}

func TestApplyWithTransaction(t *testing.T) {
	a, mock, buf := newMockApplier(t, Options{Platform: dialect.PostgreSQL, Transaction: true})
	stmts := []string{
		`CREATE TABLE "users" ("id" INT NOT NULL)`,
		`ALTER TABLE "users" ADD "email" VARCHAR(255) NOT NULL`,
	}

	mock.ExpectBegin()
	mock.ExpectExec(stmts[0]).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(stmts[1]).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	res, err := a.Apply(context.Background(), stmts, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, int64(3), res.RowsAffected)
	assert.Contains(t, buf.String(), "Successfully applied 2 statements")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransactionRollsBackOnFailure(t *testing.T) {
	a, mock, _ := newMockApplier(t, Options{Platform: dialect.PostgreSQL, Transaction: true})
	stmts := []string{`CREATE TABLE "a" ("id" INT)`, `CREATE TABLE "b" ("id" INT)`}
	dbErr := errors.New("relation already exists")

	mock.ExpectBegin()
	mock.ExpectExec(stmts[0]).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(stmts[1]).WillReturnError(dbErr)
	mock.ExpectRollback()

	res, err := a.Apply(context.Background(), stmts, nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "statement 2 failed")
	assert.Contains(t, err.Error(), "rolled back")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyWithoutTransaction(t *testing.T) {
	a, mock, buf := newMockApplier(t, Options{Platform: dialect.MySQL})
	stmts := []string{"CREATE TABLE `a` (`id` INT)", "CREATE TABLE `b` (`id` INT)", "CREATE TABLE `c` (`id` INT)"}
	dbErr := errors.New("table exists")

	mock.ExpectExec(stmts[0]).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(stmts[1]).WillReturnError(dbErr)

	res, err := a.Apply(context.Background(), stmts, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Applied)
	assert.Contains(t, err.Error(), "1 statements were already applied")
	assert.Contains(t, buf.String(), "without transaction wrapper")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMySQLTransactionRequiresOptIn(t *testing.T) {
	stmts := []string{"CREATE TABLE `a` (`id` INT)"}

	t.Run("refused without allow flag", func(t *testing.T) {
		a, mock, _ := newMockApplier(t, Options{Platform: dialect.MySQL, Transaction: true})
		_, err := a.Apply(context.Background(), stmts, nil)
		assert.ErrorIs(t, err, ErrNonTransactional)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs without a transaction when allowed", func(t *testing.T) {
		a, mock, _ := newMockApplier(t, Options{Platform: dialect.MySQL, Transaction: true, AllowNonTransactional: true})
		mock.ExpectExec(stmts[0]).WillReturnResult(sqlmock.NewResult(0, 0))
		res, err := a.Apply(context.Background(), stmts, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplyDestructiveRequiresUnsafe(t *testing.T) {
	stmts := []string{"DROP TABLE `legacy`"}

	a, mock, _ := newMockApplier(t, Options{Platform: dialect.MySQL})
	_, err := a.Apply(context.Background(), stmts, nil)
	assert.ErrorIs(t, err, ErrDestructive)
	assert.NoError(t, mock.ExpectationsWereMet())

	a, mock, _ = newMockApplier(t, Options{Platform: dialect.MySQL, Unsafe: true})
	mock.ExpectExec(stmts[0]).WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = a.Apply(context.Background(), stmts, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyDryRun(t *testing.T) {
	t.Run("prints statements and does not execute", func(t *testing.T) {
		a, mock, buf := newMockApplier(t, Options{Platform: dialect.MySQL, DryRun: true})
		stmts := []string{"CREATE TABLE `dry` (`id` INT)"}

		res, err := a.Apply(context.Background(), stmts, a.Preflight(stmts))
		require.NoError(t, err)
		assert.Equal(t, 0, res.Applied)

		out := buf.String()
		assert.Contains(t, out, "DRY RUN MODE")
		assert.Contains(t, out, "1. CREATE TABLE `dry` (`id` INT);")
		assert.Contains(t, out, "Migration is NOT transaction-safe")
		assert.Contains(t, out, "DRY RUN COMPLETE")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("destructive statements fail without unsafe", func(t *testing.T) {
		a, _, buf := newMockApplier(t, Options{Platform: dialect.PostgreSQL, DryRun: true})
		_, err := a.Apply(context.Background(), []string{`DROP TABLE "users"`}, nil)
		assert.ErrorIs(t, err, ErrDestructive)
		assert.Contains(t, buf.String(), "[DANGER]")
		assert.NotContains(t, buf.String(), "DRY RUN COMPLETE")
	})
}

func TestApplyNotConnected(t *testing.T) {
	a := NewApplier(Options{Platform: dialect.PostgreSQL})
	_, err := a.Apply(context.Background(), []string{`CREATE TABLE "a" ("id" INT)`}, nil)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, a.Close())
}

func TestConnectUnsupportedPlatform(t *testing.T) {
	a := NewApplier(Options{Platform: "oracle"})
	err := a.Connect(context.Background())
	var unsupported *dialect.UnsupportedError
	assert.ErrorAs(t, err, &unsupported)
}

func TestCloseIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	a := NewApplier(Options{})
	a.Attach(db)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
