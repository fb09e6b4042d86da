package dialect

import (
	"slices"
	"strconv"
	"strings"

	"dbal/internal/core"
)

// ColumnList quotes each name and joins them into a parenthesized list.
func ColumnList(quote func(string) string, names []string) string {
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		quoted = append(quoted, quote(n))
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

var valueKeywords = []string{"NULL", "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME", "NOW()", "TRUE", "FALSE"}

// FormatValue renders a default value. SQL keywords, numbers and function
// calls pass through; anything else becomes a string literal.
func FormatValue(v string, quoteString func(string) string) string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return quoteString(v)
	}

	upper := strings.ToUpper(trimmed)
	if slices.Contains(valueKeywords, upper) {
		return upper
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return trimmed
	}
	if strings.HasSuffix(trimmed, ")") && strings.Contains(trimmed, "(") && !strings.ContainsAny(trimmed, "'\"") {
		return trimmed
	}
	return quoteString(v)
}

// ReferentialClause renders the ON DELETE / ON UPDATE suffix of a foreign key.
func ReferentialClause(fk *core.ForeignKey) string {
	var sb strings.Builder
	if fk.OnDelete != core.ActionDefault {
		sb.WriteString(" ON DELETE ")
		sb.WriteString(string(fk.OnDelete))
	}
	if fk.OnUpdate != core.ActionDefault {
		sb.WriteString(" ON UPDATE ")
		sb.WriteString(string(fk.OnUpdate))
	}
	return sb.String()
}
