// Package postgresql provides the PostgreSQL platform. Unlike MySQL it supports
// sequences and transactional DDL, and alters columns one aspect at a time.
package postgresql

import (
	"fmt"
	"strings"

	"dbal/internal/core"
	"dbal/internal/dialect"
)

const (
	pgMaxIdentLen       = 63
	defaultStringLength = 255
	defaultPrecision    = 10
)

func init() {
	dialect.Register(dialect.PostgreSQL, func() dialect.Platform {
		return NewPlatform()
	})
}

// Platform is a stateless PostgreSQL statement generator.
type Platform struct{}

// NewPlatform initializes a new PostgreSQL platform instance.
func NewPlatform() *Platform {
	return &Platform{}
}

func (p *Platform) Name() dialect.Type { return dialect.PostgreSQL }
func (p *Platform) MaxIdentifierLength() int { return pgMaxIdentLen }
func (p *Platform) SupportsSequences() bool { return true }
func (p *Platform) SupportsTransactionalDDL() bool { return true }

// QuoteIdentifier wraps the name in double quotes, doubling embedded quotes.
func (p *Platform) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteString quotes a literal under standard_conforming_strings: only
// single quotes are doubled, backslashes are literal.
func (p *Platform) QuoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// ColumnType maps the logical column type to a PostgreSQL type.
// UNSIGNED has no PostgreSQL equivalent and is ignored.
func (p *Platform) ColumnType(c *core.Column) string {
	switch c.Type {
	case core.TypeString:
		length := c.Length
		if length == 0 {
			length = defaultStringLength
		}
		if c.Fixed {
			return fmt.Sprintf("CHAR(%d)", length)
		}
		return fmt.Sprintf("VARCHAR(%d)", length)
	case core.TypeText, core.TypeArray:
		return "TEXT"
	case core.TypeInteger:
		return "INT"
	case core.TypeSmallInt:
		return "SMALLINT"
	case core.TypeBigInt:
		return "BIGINT"
	case core.TypeDecimal:
		precision := c.Precision
		if precision == 0 {
			precision = defaultPrecision
		}
		return fmt.Sprintf("NUMERIC(%d, %d)", precision, c.Scale)
	case core.TypeFloat:
		return "DOUBLE PRECISION"
	case core.TypeBoolean:
		return "BOOLEAN"
	case core.TypeDate:
		return "DATE"
	case core.TypeTime:
		return "TIME(0) WITHOUT TIME ZONE"
	case core.TypeDateTime:
		return "TIMESTAMP(0) WITHOUT TIME ZONE"
	case core.TypeBlob, core.TypeBinary:
		return "BYTEA"
	case core.TypeJSON:
		return "JSON"
	case core.TypeGUID:
		return "UUID"
	default:
		return strings.ToUpper(string(c.Type))
	}
}

// ColumnDefinition renders the column for CREATE TABLE and ADD COLUMN.
// Comments are separate COMMENT ON statements in PostgreSQL.
func (p *Platform) ColumnDefinition(c *core.Column) string {
	parts := []string{p.QuoteIdentifier(c.Name), p.ColumnType(c)}
	if c.AutoIncrement {
		parts = append(parts, "GENERATED BY DEFAULT AS IDENTITY")
	} else if c.Default != nil {
		parts = append(parts, "DEFAULT", p.formatValue(*c.Default))
	}
	if c.NotNull {
		parts = append(parts, "NOT NULL")
	}
	return strings.Join(parts, " ")
}

func (p *Platform) columns(names []string) string {
	return dialect.ColumnList(p.QuoteIdentifier, names)
}

func (p *Platform) formatValue(v string) string {
	return dialect.FormatValue(v, p.QuoteString)
}

func (p *Platform) commentOnColumn(table, column, comment string) string {
	value := "NULL"
	if c := strings.TrimSpace(comment); c != "" {
		value = p.QuoteString(c)
	}
	return fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s", p.QuoteIdentifier(table), p.QuoteIdentifier(column), value)
}
