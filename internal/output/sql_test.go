package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbal/internal/migration"
)

func TestSQLFormatterFormatMigration(t *testing.T) {
	out, err := sqlFormatter{}.FormatMigration(sampleMigration())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "-- dbal migration: 2 statement(s), 2 rollback statement(s)\n"))
	assert.Contains(t, out, "-- BREAKING CHANGES (manual review required)\n-- - Table legacy will be dropped\n")
	assert.Contains(t, out, "-- UNRESOLVED (cannot auto-generate safely)\n-- - column type change needs review\n")
	assert.Contains(t, out, "-- NOTES\n-- - line one\n-- - line two\n")
	assert.Contains(t, out, "-- SQL\n"+
		"-- table: posts\nCREATE TABLE posts (id BIGINT NOT NULL);\n"+
		"-- table: legacy\n-- [CRITICAL]\nDROP TABLE legacy;\n")
	assert.Contains(t, out, "-- ROLLBACK SQL (run separately)\n-- CREATE TABLE legacy (\n-- id INT NOT NULL\n-- );\n-- DROP TABLE posts;\n")
}

func TestSQLFormatterFormatMigrationEmpty(t *testing.T) {
	m := &migration.Migration{}
	out, err := sqlFormatter{}.FormatMigration(m)
	require.NoError(t, err)
	assert.Contains(t, out, "-- No SQL statements generated.")
	assert.NotContains(t, out, "ROLLBACK")

	m.AddRollback("DROP TABLE t1")
	out, err = sqlFormatter{}.FormatMigration(m)
	require.NoError(t, err)
	assert.Contains(t, out, "-- No SQL statements generated.\n\n-- ROLLBACK SQL (run separately)\n-- DROP TABLE t1;\n")
}

func TestSQLFormatterNotesOnly(t *testing.T) {
	m := &migration.Migration{}
	m.AddNote("nothing to run")
	out, err := sqlFormatter{}.FormatMigration(m)
	require.NoError(t, err)
	assert.Contains(t, out, "-- NOTES\n-- - nothing to run\n")
	assert.Contains(t, out, "-- No SQL statements generated.")
	assert.NotContains(t, out, "-- SQL\n")
}

func TestSQLFormatterNil(t *testing.T) {
	out, err := sqlFormatter{}.FormatDiff(nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = sqlFormatter{}.FormatMigration(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSQLFormatterFormatDiff(t *testing.T) {
	out, err := sqlFormatter{}.FormatDiff(sampleDiff(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Created tables:\n  - posts\n")
	assert.Contains(t, out, "Dropped tables:\n  - legacy\n")
	assert.Contains(t, out, "idx_users_email")
}
