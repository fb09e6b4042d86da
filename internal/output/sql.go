package output

import (
	"fmt"
	"strings"

	"dbal/internal/diff"
	"dbal/internal/migration"
)

type sqlFormatter struct{}

// FormatDiff renders the diff as a plain text listing.
func (sqlFormatter) FormatDiff(d *diff.SchemaDiff) (string, error) {
	if d == nil {
		return "", nil
	}
	return d.String(), nil
}

// FormatMigration renders a script that can be piped to a database client.
// Statements are grouped under the table they touch; notes and the rollback
// script are comments.
func (sqlFormatter) FormatMigration(m *migration.Migration) (string, error) {
	if m == nil {
		return "", nil
	}
	stmts := m.SQLStatements()
	rollback := terminateAll(m.RollbackStatements())

	var sb strings.Builder
	fmt.Fprintf(&sb, "-- dbal migration: %d statement(s), %d rollback statement(s)\n", len(stmts), len(rollback))
	writeComments(&sb, "BREAKING CHANGES (manual review required)", "- ", m.BreakingNotes())
	writeComments(&sb, "UNRESOLVED (cannot auto-generate safely)", "- ", m.UnresolvedNotes())
	writeComments(&sb, "NOTES", "- ", m.InfoNotes())

	if len(stmts) == 0 {
		sb.WriteString("\n-- No SQL statements generated.\n")
	} else {
		sb.WriteString("\n-- SQL\n")
		writeOperations(&sb, m.Operations)
	}
	writeComments(&sb, "ROLLBACK SQL (run separately)", "", rollback)
	return sb.String(), nil
}

// writeOperations writes the SQL operations, opening a "-- table:" comment
// whenever the target table changes and flagging risky statements.
func writeOperations(sb *strings.Builder, ops []migration.Operation) {
	current := ""
	for _, op := range ops {
		stmt := terminate(op.SQL)
		if op.Kind != migration.KindSQL || stmt == "" {
			continue
		}
		if op.Table != "" && op.Table != current {
			current = op.Table
			sb.WriteString("-- table: " + current + "\n")
		}
		if op.Risk != "" && op.Risk != migration.RiskInfo {
			sb.WriteString("-- [" + string(op.Risk) + "]\n")
		}
		sb.WriteString(stmt + "\n")
	}
}

// writeComments writes a titled comment block, one comment line per
// non-blank line of each item.
func writeComments(sb *strings.Builder, title, bullet string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n-- " + title + "\n")
	for _, item := range items {
		for _, line := range commentLines(item) {
			sb.WriteString("-- " + bullet + line + "\n")
		}
	}
}

func commentLines(s string) []string {
	var out []string
	for _, line := range strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
