package mysql

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/charset"
	"github.com/pingcap/tidb/pkg/parser/format"
	tmysql "github.com/pingcap/tidb/pkg/parser/mysql"

	"dbal/internal/core"
)

func newColumnFromDef(colDef *ast.ColumnDef) (*core.Column, error) {
	col := &core.Column{Name: colDef.Name.Name.O}
	tp := colDef.Tp
	flen := tp.GetFlen()
	if flen < 0 {
		flen = 0
	}
	binary := tp.GetCharset() == charset.CharsetBin

	switch tp.GetType() {
	case tmysql.TypeTiny:
		if flen == 1 {
			col.Type = core.TypeBoolean
		} else {
			col.Type = core.TypeSmallInt
		}
	case tmysql.TypeShort, tmysql.TypeYear:
		col.Type = core.TypeSmallInt
	case tmysql.TypeInt24, tmysql.TypeLong:
		col.Type = core.TypeInteger
	case tmysql.TypeLonglong:
		col.Type = core.TypeBigInt
	case tmysql.TypeNewDecimal:
		col.Type = core.TypeDecimal
		col.Precision = flen
		if d := tp.GetDecimal(); d > 0 {
			col.Scale = d
		}
	case tmysql.TypeFloat, tmysql.TypeDouble:
		col.Type = core.TypeFloat
	case tmysql.TypeString:
		col.Type = core.TypeString
		if binary {
			col.Type = core.TypeBinary
		}
		col.Length = flen
		col.Fixed = true
	case tmysql.TypeVarchar, tmysql.TypeVarString:
		col.Type = core.TypeString
		if binary {
			col.Type = core.TypeBinary
		}
		col.Length = flen
	case tmysql.TypeTinyBlob, tmysql.TypeBlob, tmysql.TypeMediumBlob, tmysql.TypeLongBlob:
		if !binary {
			col.Type = core.TypeText
			break
		}
		col.Type = core.TypeBlob
		col.Length = blobLength(tp.GetType())
	case tmysql.TypeDate:
		col.Type = core.TypeDate
	case tmysql.TypeDuration:
		col.Type = core.TypeTime
	case tmysql.TypeDatetime, tmysql.TypeTimestamp:
		col.Type = core.TypeDateTime
	case tmysql.TypeJSON:
		col.Type = core.TypeJSON
	default:
		return nil, fmt.Errorf("column %q: unsupported type %s", col.Name, tp.String())
	}

	if col.Type.IsNumeric() && tmysql.HasUnsignedFlag(tp.GetFlag()) {
		col.Unsigned = true
	}
	return col, nil
}

// blobLength returns the length that maps back to the same MySQL blob type.
// LONGBLOB is the unsized default.
func blobLength(tp byte) int {
	switch tp {
	case tmysql.TypeTinyBlob:
		return 255
	case tmysql.TypeBlob:
		return 65535
	case tmysql.TypeMediumBlob:
		return 16777215
	default:
		return 0
	}
}

var defaultFunctions = []string{"CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME", "NOW"}

// defaultValue renders a DEFAULT expression the way the schema model stores
// it: string literals unquoted, NULL and time functions as keywords.
func defaultValue(expr ast.ExprNode) (string, bool) {
	s, ok := restoreExpr(expr)
	if !ok {
		return "", false
	}
	if unquoted, ok := tryUnquoteSQLStringLiteral(s); ok {
		return unquoted, true
	}
	for _, fn := range defaultFunctions {
		if hasPrefixFold(s, fn) {
			if fn == "NOW" {
				return "CURRENT_TIMESTAMP", true
			}
			return fn, true
		}
	}
	return s, true
}

// exprToString restores expr and strips the quotes of a string literal.
func exprToString(expr ast.ExprNode) (string, bool) {
	s, ok := restoreExpr(expr)
	if !ok {
		return "", false
	}
	if unquoted, ok := tryUnquoteSQLStringLiteral(s); ok {
		return unquoted, true
	}
	return s, true
}

// restoreExpr prints expr back to SQL without identifier quoting.
func restoreExpr(expr ast.ExprNode) (string, bool) {
	if expr == nil {
		return "", false
	}
	var sb strings.Builder
	flags := format.RestoreStringSingleQuotes | format.RestoreKeyWordUppercase | format.RestoreStringWithoutCharset
	if err := expr.Restore(format.NewRestoreCtx(flags, &sb)); err != nil {
		return "", false
	}
	return strings.TrimSpace(sb.String()), true
}

func tryUnquoteSQLStringLiteral(s string) (string, bool) {
	if len(s) < 2 || s[len(s)-1] != '\'' {
		return "", false
	}
	if s[0] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), true
	}

	q := strings.IndexByte(s, '\'')
	if q <= 0 || !isSQLStringIntroducer(strings.TrimSpace(s[:q])) {
		return "", false
	}
	return strings.ReplaceAll(s[q+1:len(s)-1], "''", "'"), true
}

// isSQLStringIntroducer reports whether prefix is N or a _charset introducer.
func isSQLStringIntroducer(prefix string) bool {
	if strings.EqualFold(prefix, "N") {
		return true
	}
	if !strings.HasPrefix(prefix, "_") || len(prefix) == 1 {
		return false
	}
	for _, r := range prefix[1:] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
