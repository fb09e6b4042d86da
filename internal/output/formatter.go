// Package output renders schema diffs and migrations for the CLI. It provides
// three formats: annotated SQL, JSON and a compact summary.
package output

import (
	"fmt"
	"slices"
	"strings"

	"dbal/internal/diff"
	"dbal/internal/migration"
)

// Format names an output format accepted by the CLI's --format flag.
type Format string

const (
	FormatSQL     Format = "sql"
	FormatJSON    Format = "json"
	FormatSummary Format = "summary"
)

// Formatter renders schema diffs and migrations.
type Formatter interface {
	FormatDiff(*diff.SchemaDiff) (string, error)
	FormatMigration(*migration.Migration) (string, error)
}

var formatters = map[Format]Formatter{
	FormatSQL:     sqlFormatter{},
	FormatJSON:    jsonFormatter{},
	FormatSummary: summaryFormatter{},
}

// Formats lists the supported formats in name order.
func Formats() []Format {
	out := make([]Format, 0, len(formatters))
	for f := range formatters {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// NewFormatter returns the formatter for name, matched case-insensitively.
// An empty name selects SQL.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	if format == "" {
		format = FormatSQL
	}
	if f, ok := formatters[format]; ok {
		return f, nil
	}
	names := make([]string, 0, len(formatters))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return nil, fmt.Errorf("unsupported format: %s (supported: %s)", name, strings.Join(names, ", "))
}

// terminate trims stmt and ends it with a semicolon. Blank input stays blank.
func terminate(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if stmt == "" || strings.HasSuffix(stmt, ";") {
		return stmt
	}
	return stmt + ";"
}

func terminateAll(stmts []string) []string {
	var out []string
	for _, stmt := range stmts {
		if stmt = terminate(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
