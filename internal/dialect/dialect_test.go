package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbal/internal/core"
)

type fakePlatform struct {
	Platform
	name Type
}

func (f *fakePlatform) Name() Type { return f.name }

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		expected Type
	}{
		{"mysql", MySQL},
		{" MariaDB ", MySQL},
		{"postgresql", PostgreSQL},
		{"Postgres", PostgreSQL},
		{"pgsql", PostgreSQL},
		{"pg", PostgreSQL},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseType("oracle")
	var unsupported *UnsupportedError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "oracle", unsupported.Name)
	assert.Contains(t, err.Error(), "mysql")
}

func TestRegistry(t *testing.T) {
	registryMu.Lock()
	saved := registry
	registry = map[Type]func() Platform{}
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	})

	_, err := Get(MySQL)
	require.Error(t, err)

	Register(PostgreSQL, func() Platform { return &fakePlatform{name: PostgreSQL} })
	Register(MySQL, func() Platform { return &fakePlatform{name: MySQL} })

	p, err := Get(PostgreSQL)
	require.NoError(t, err)
	assert.Equal(t, PostgreSQL, p.Name())
	assert.Equal(t, []Type{MySQL, PostgreSQL}, Registered())

	assert.Panics(t, func() {
		Register(Type("sqlite"), func() Platform { return nil })
	})
}

func TestColumnList(t *testing.T) {
	quote := func(s string) string { return "`" + s + "`" }
	assert.Equal(t, "(`a`, `b`)", ColumnList(quote, []string{"a", " b ", ""}))
	assert.Equal(t, "()", ColumnList(quote, nil))
}

func TestFormatValue(t *testing.T) {
	quote := func(s string) string { return "'" + s + "'" }
	tests := []struct {
		input    string
		expected string
	}{
		{"null", "NULL"},
		{"current_timestamp", "CURRENT_TIMESTAMP"},
		{"true", "TRUE"},
		{"42", "42"},
		{"-1.5", "-1.5"},
		{"uuid()", "uuid()"},
		{"hello", "'hello'"},
		{"", "''"},
		{"concat('a')", "'concat('a')'"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatValue(tt.input, quote))
		})
	}
}

func TestReferentialClause(t *testing.T) {
	assert.Empty(t, ReferentialClause(&core.ForeignKey{}))
	assert.Equal(t, " ON DELETE CASCADE ON UPDATE NO ACTION",
		ReferentialClause(&core.ForeignKey{OnDelete: core.ActionCascade, OnUpdate: core.ActionNoAction}))
}

func TestDefaultMigrationOptions(t *testing.T) {
	opts := DefaultMigrationOptions(MySQL)
	assert.Equal(t, MySQL, opts.Dialect)
	assert.True(t, opts.IncludeDrops)
	assert.False(t, opts.IncludeUnsafe)
	assert.Equal(t, TransactionSingle, opts.TransactionMode)
	assert.Equal(t, "per-statement", TransactionPerStatement.String())
	assert.Equal(t, "unknown", TransactionMode(9).String())
}
