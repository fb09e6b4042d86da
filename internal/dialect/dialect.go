// Package dialect provides a unified interface for all database platforms. Every
// platform turns schema objects and diffs into SQL statements for one dialect,
// so the collector and the planner never deal with dialect quirks themselves.
package dialect

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"dbal/internal/core"
	"dbal/internal/diff"
)

// Type identifies a supported SQL dialect.
type Type string

const (
	MySQL      Type = "mysql"
	PostgreSQL Type = "postgresql"
)

// Types returns every supported dialect.
func Types() []Type {
	return []Type{MySQL, PostgreSQL}
}

// ParseType resolves a dialect name. "postgres" and "pgsql" are accepted for PostgreSQL.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql", "mariadb":
		return MySQL, nil
	case "postgresql", "postgres", "pgsql", "pg":
		return PostgreSQL, nil
	}
	return "", &UnsupportedError{Name: s}
}

// UnsupportedError is returned for dialect names outside the supported set.
type UnsupportedError struct {
	Name string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported dialect %q (supported: %s, %s)", e.Name, MySQL, PostgreSQL)
}

// Platform emits SQL statements for one dialect. Every method returns zero or
// more independently executable statements without a trailing semicolon, in
// the order they must run. Implementations are stateless.
type Platform interface {
	Name() Type
	QuoteIdentifier(name string) string
	QuoteString(value string) string
	ColumnType(c *core.Column) string
	ColumnDefinition(c *core.Column) string
	MaxIdentifierLength() int
	SupportsSequences() bool
	SupportsTransactionalDDL() bool

	RenameTableSQL(oldName, newName string) []string
	CreateColumnSQL(table string, c *core.Column) []string
	DropColumnSQL(table string, c *core.Column) []string
	AlterColumnSQL(table string, d *diff.ColumnDiff) []string
	CreatePrimaryKeySQL(table string, pk *core.PrimaryKey) []string
	DropPrimaryKeySQL(table string, pk *core.PrimaryKey) []string
	// DefaultPrimaryKeyName is the constraint name the database assigns to
	// an unnamed primary key created on table.
	DefaultPrimaryKeyName(table string) string
	CreateForeignKeySQL(table string, fk *core.ForeignKey) []string
	DropForeignKeySQL(table string, fk *core.ForeignKey) []string
	CreateIndexSQL(table string, idx *core.Index) []string
	DropIndexSQL(table string, idx *core.Index) []string
	CreateCheckSQL(table string, ck *core.Check) []string
	DropCheckSQL(table string, ck *core.Check) []string

	// CreateTableSQL creates the table with its primary key, indexes and
	// checks. Foreign keys are left to CreateForeignKeySQL.
	CreateTableSQL(t *core.Table) []string
	DropTableSQL(t *core.Table) []string
	CreateSequenceSQL(s *core.Sequence) []string
	DropSequenceSQL(s *core.Sequence) []string
	CreateViewSQL(v *core.View) []string
	DropViewSQL(v *core.View) []string
}

var (
	registryMu sync.RWMutex
	registry   = map[Type]func() Platform{}
)

// Register creates a new registry entry for the specified dialect.
// It panics on a dialect outside Types, which is a programming error.
func Register(t Type, ctor func() Platform) {
	if _, err := ParseType(string(t)); err != nil {
		panic(err)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = ctor
}

// Get returns a new platform for the dialect. The concrete package must have
// been imported so its init registered the constructor.
func Get(t Type) (Platform, error) {
	registryMu.RLock()
	ctor, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnsupportedError{Name: string(t)}
	}
	return ctor(), nil
}

// Registered lists the dialects with a registered platform, sorted by name.
func Registered() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Type, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MigrationOptions have all possible options that user can specify during migration.
type MigrationOptions struct {
	Dialect Type
	// IncludeDrops emits DROP statements for removed tables, sequences and views.
	// Without it the drops are reported as unresolved operations.
	IncludeDrops bool
	// IncludeUnsafe drops removed tables outright. Otherwise they are renamed
	// to a backup name so the rollback can restore them.
	IncludeUnsafe   bool
	TransactionMode TransactionMode
}

// TransactionMode represents the mode of transaction for migration.
type TransactionMode int

const (
	TransactionNone TransactionMode = iota
	TransactionSingle
	TransactionPerStatement
)

func (m TransactionMode) String() string {
	switch m {
	case TransactionNone:
		return "none"
	case TransactionSingle:
		return "single"
	case TransactionPerStatement:
		return "per-statement"
	default:
		return "unknown"
	}
}

// DefaultMigrationOptions creates a new MigrationOptions instance with default values.
func DefaultMigrationOptions(dialect Type) MigrationOptions {
	return MigrationOptions{
		Dialect:         dialect,
		IncludeDrops:    true,
		IncludeUnsafe:   false,
		TransactionMode: TransactionSingle,
	}
}
