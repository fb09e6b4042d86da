package output

import (
	"fmt"
	"strings"

	"dbal/internal/diff"
	"dbal/internal/migration"
)

type summaryFormatter struct{}

// FormatDiff formats a schema diff as a compact summary.
// Example output:
//
//	Tables:      +3, ~2, -0
//	Columns:     +5, ~2, -0
//	Indexes:     +1, ~0, -2
func (summaryFormatter) FormatDiff(d *diff.SchemaDiff) (string, error) {
	if d == nil || d.IsEmpty() {
		return "No changes detected.\n", nil
	}

	var sb strings.Builder
	sb.WriteString("Schema Diff Summary\n")
	sb.WriteString("===================\n\n")

	c := countDiff(d)
	fmt.Fprintf(&sb, "Tables:      +%d, ~%d, -%d\n", len(d.CreatedTables), len(d.AlteredTables), len(d.DroppedTables))
	fmt.Fprintf(&sb, "Columns:     +%d, ~%d, -%d\n", c.addedCols, c.alteredCols, c.droppedCols)
	fmt.Fprintf(&sb, "Indexes:     +%d, -%d\n", c.addedIdx, c.droppedIdx)
	fmt.Fprintf(&sb, "Constraints: +%d, -%d\n", c.addedConstr, c.droppedConstr)
	fmt.Fprintf(&sb, "Sequences:   +%d, -%d\n", len(d.CreatedSequences), len(d.DroppedSequences))
	fmt.Fprintf(&sb, "Views:       +%d, -%d\n", len(d.CreatedViews), len(d.DroppedViews))

	if len(d.Warnings) > 0 {
		fmt.Fprintf(&sb, "\nWarnings:    %d\n", len(d.Warnings))
	}

	writeTableDetails(&sb, d)
	return sb.String(), nil
}

type diffCounts struct {
	addedCols, alteredCols, droppedCols int
	addedIdx, droppedIdx                int
	addedConstr, droppedConstr          int
}

// countDiff totals object changes. Constraints are foreign keys, checks and
// primary keys.
func countDiff(d *diff.SchemaDiff) diffCounts {
	var c diffCounts
	for _, t := range d.CreatedTables {
		c.addedCols += len(t.Columns())
		c.addedIdx += len(t.Indexes())
		c.addedConstr += len(t.ForeignKeys()) + len(t.Checks())
		if _, ok := t.PrimaryKey(); ok {
			c.addedConstr++
		}
	}
	for _, t := range d.DroppedTables {
		c.droppedCols += len(t.Columns())
		c.droppedIdx += len(t.Indexes())
		c.droppedConstr += len(t.ForeignKeys()) + len(t.Checks())
		if _, ok := t.PrimaryKey(); ok {
			c.droppedConstr++
		}
	}
	for _, td := range d.AlteredTables {
		c.addedCols += len(td.CreatedColumns)
		c.alteredCols += len(td.AlteredColumns)
		c.droppedCols += len(td.DroppedColumns)
		c.addedIdx += len(td.CreatedIndexes)
		c.droppedIdx += len(td.DroppedIndexes)
		c.addedConstr += len(td.CreatedForeignKeys) + len(td.CreatedChecks)
		c.droppedConstr += len(td.DroppedForeignKeys) + len(td.DroppedChecks)
		if _, ok := td.CreatedPrimaryKey(); ok {
			c.addedConstr++
		}
		if _, ok := td.DroppedPrimaryKey(); ok {
			c.droppedConstr++
		}
	}
	return c
}

func writeTableDetails(sb *strings.Builder, d *diff.SchemaDiff) {
	if len(d.CreatedTables) == 0 && len(d.DroppedTables) == 0 && len(d.AlteredTables) == 0 {
		return
	}

	sb.WriteString("\nDetails:\n")
	for _, t := range d.CreatedTables {
		fmt.Fprintf(sb, "  + %s (new table)\n", t.Name)
	}
	for _, t := range d.DroppedTables {
		fmt.Fprintf(sb, "  - %s (removed table)\n", t.Name)
	}
	for _, td := range d.AlteredTables {
		name := td.NewName()
		if td.HasNameDifference() {
			name = td.OldName() + " -> " + name
		}
		fmt.Fprintf(sb, "  ~ %s (%s)\n", name, tableChanges(td))
	}
}

// tableChanges returns a short description of the changes in a table.
func tableChanges(td *diff.TableDiff) string {
	var parts []string
	add := func(n int, format string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf(format, n))
		}
	}

	add(len(td.CreatedColumns), "+%d cols")
	add(len(td.DroppedColumns), "-%d cols")
	add(len(td.AlteredColumns), "~%d cols")
	add(len(td.CreatedIndexes), "+%d idx")
	add(len(td.DroppedIndexes), "-%d idx")
	add(len(td.CreatedForeignKeys), "+%d fk")
	add(len(td.DroppedForeignKeys), "-%d fk")
	add(len(td.CreatedChecks), "+%d chk")
	add(len(td.DroppedChecks), "-%d chk")
	if _, ok := td.CreatedPrimaryKey(); ok {
		parts = append(parts, "+pk")
	}
	if _, ok := td.DroppedPrimaryKey(); ok {
		parts = append(parts, "-pk")
	}

	if len(parts) == 0 {
		return "renamed"
	}
	return strings.Join(parts, ", ")
}

// FormatMigration formats a migration as a compact summary.
func (summaryFormatter) FormatMigration(m *migration.Migration) (string, error) {
	if m == nil || len(m.Operations) == 0 {
		return "No migration operations.\n", nil
	}

	var sb strings.Builder
	sb.WriteString("Migration Summary\n")
	sb.WriteString("=================\n\n")

	fmt.Fprintf(&sb, "SQL Statements:      %d\n", len(m.SQLStatements()))
	fmt.Fprintf(&sb, "Rollback Statements: %d\n", len(m.RollbackStatements()))

	writeSummarySection(&sb, "Breaking Changes", m.BreakingNotes())
	writeSummarySection(&sb, "Unresolved Issues", m.UnresolvedNotes())
	writeSummarySection(&sb, "Notes", m.InfoNotes())

	return sb.String(), nil
}

func writeSummarySection(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s: %d\n", title, len(items))
	for _, item := range items {
		fmt.Fprintf(sb, "   - %s\n", item)
	}
}
