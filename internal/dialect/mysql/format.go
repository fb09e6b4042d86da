package mysql

import (
	"fmt"
	"strings"

	"dbal/internal/core"
)

const (
	defaultStringLength = 255
	defaultPrecision    = 10
)

// ColumnType maps the logical column type to a MySQL type.
func (p *Platform) ColumnType(c *core.Column) string {
	var typ string
	switch c.Type {
	case core.TypeString:
		typ = sizedType("VARCHAR", "CHAR", c)
	case core.TypeText, core.TypeArray:
		typ = "LONGTEXT"
	case core.TypeInteger:
		typ = "INT"
	case core.TypeSmallInt:
		typ = "SMALLINT"
	case core.TypeBigInt:
		typ = "BIGINT"
	case core.TypeDecimal:
		precision := c.Precision
		if precision == 0 {
			precision = defaultPrecision
		}
		typ = fmt.Sprintf("NUMERIC(%d, %d)", precision, c.Scale)
	case core.TypeFloat:
		typ = "DOUBLE PRECISION"
	case core.TypeBoolean:
		typ = "TINYINT(1)"
	case core.TypeDate:
		typ = "DATE"
	case core.TypeTime:
		typ = "TIME"
	case core.TypeDateTime:
		typ = "DATETIME"
	case core.TypeBlob:
		typ = blobType(c.Length)
	case core.TypeBinary:
		typ = sizedType("VARBINARY", "BINARY", c)
	case core.TypeJSON:
		typ = "JSON"
	case core.TypeGUID:
		typ = "CHAR(36)"
	default:
		typ = strings.ToUpper(string(c.Type))
	}
	if c.Unsigned && c.Type.IsNumeric() {
		typ += " UNSIGNED"
	}
	return typ
}

func sizedType(variable, fixed string, c *core.Column) string {
	length := c.Length
	if length == 0 {
		length = defaultStringLength
	}
	if c.Fixed {
		return fmt.Sprintf("%s(%d)", fixed, length)
	}
	return fmt.Sprintf("%s(%d)", variable, length)
}

func blobType(length int) string {
	switch {
	case length == 0:
		return "LONGBLOB"
	case length <= 255:
		return "TINYBLOB"
	case length <= 65535:
		return "BLOB"
	case length <= 16777215:
		return "MEDIUMBLOB"
	default:
		return "LONGBLOB"
	}
}

// ColumnDefinition renders the column as used in CREATE TABLE and ALTER TABLE.
func (p *Platform) ColumnDefinition(c *core.Column) string {
	parts := []string{p.QuoteIdentifier(c.Name), p.ColumnType(c)}
	if c.NotNull {
		parts = append(parts, "NOT NULL")
	} else {
		parts = append(parts, "NULL")
	}
	if c.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}
	if c.Default != nil {
		parts = append(parts, "DEFAULT", p.formatValue(*c.Default))
	}
	if comment := strings.TrimSpace(c.Comment); comment != "" {
		parts = append(parts, "COMMENT", p.QuoteString(comment))
	}
	return strings.Join(parts, " ")
}
