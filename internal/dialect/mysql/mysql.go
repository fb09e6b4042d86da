// Package mysql provides the MySQL platform: type mapping, quoting and DDL
// statements for tables, columns, keys, indexes, checks and views.
package mysql

import (
	"strings"

	"dbal/internal/dialect"
)

const mysqlMaxIdentLen = 64

func init() {
	dialect.Register(dialect.MySQL, func() dialect.Platform {
		return NewPlatform()
	})
}

// Platform is a stateless MySQL statement generator.
type Platform struct{}

// NewPlatform initializes a new MySQL platform instance.
func NewPlatform() *Platform {
	return &Platform{}
}

// Name returns the name of the MySQL dialect.
func (p *Platform) Name() dialect.Type {
	return dialect.MySQL
}

// MaxIdentifierLength returns MySQL's identifier limit in characters.
func (p *Platform) MaxIdentifierLength() int { return mysqlMaxIdentLen }

// SupportsSequences is false: MySQL has no CREATE SEQUENCE.
func (p *Platform) SupportsSequences() bool { return false }

// SupportsTransactionalDDL is false: every DDL statement commits implicitly.
func (p *Platform) SupportsTransactionalDDL() bool { return false }

// QuoteIdentifier wraps the name in backticks, doubling embedded backticks.
func (p *Platform) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "`", "``")
	return "`" + name + "`"
}

// stringEscaper applies the escapes MySQL recognizes inside a quoted literal
// when NO_BACKSLASH_ESCAPES is off.
var stringEscaper = strings.NewReplacer(
	`'`, `''`,
	`\`, `\\`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

// QuoteString renders value as a MySQL string literal for DEFAULT and
// COMMENT clauses.
func (p *Platform) QuoteString(value string) string {
	return "'" + stringEscaper.Replace(value) + "'"
}

func (p *Platform) columns(names []string) string {
	return dialect.ColumnList(p.QuoteIdentifier, names)
}

func (p *Platform) formatValue(v string) string {
	return dialect.FormatValue(v, p.QuoteString)
}
