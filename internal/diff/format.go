package diff

import (
	"fmt"
	"os"
	"strings"

	"dbal/internal/core"
)

// String returns a human-readable listing of all schema differences.
func (d *SchemaDiff) String() string {
	if d.IsEmpty() {
		return "No differences detected."
	}

	var sb strings.Builder
	sb.WriteString("Schema differences:\n")

	if d.HasNameDifference() {
		sb.WriteString(fmt.Sprintf("\nSchema renamed: %s -> %s\n", d.Old.Name, d.New.Name))
	}

	writeList(&sb, "", "Warnings", d.Warnings, func(w string) string { return strings.TrimSpace(w) })
	writeList(&sb, "", "Created tables", d.CreatedTables, func(t *core.Table) string { return t.Name })
	writeList(&sb, "", "Dropped tables", d.DroppedTables, func(t *core.Table) string { return t.Name })

	if len(d.AlteredTables) > 0 {
		sb.WriteString("\nAltered tables:\n")
		for _, td := range d.AlteredTables {
			writeTableDiff(&sb, td)
		}
	}

	formatSeq := func(s *core.Sequence) string {
		return fmt.Sprintf("%s (start %d, increment %d)", s.Name, s.InitialValue, s.IncrementSize)
	}
	writeList(&sb, "", "Created sequences", d.CreatedSequences, formatSeq)
	writeList(&sb, "", "Dropped sequences", d.DroppedSequences, formatSeq)
	writeList(&sb, "", "Created views", d.CreatedViews, func(v *core.View) string { return v.Name })
	writeList(&sb, "", "Dropped views", d.DroppedViews, func(v *core.View) string { return v.Name })

	return sb.String()
}

// String returns a human-readable listing of the table differences.
func (td *TableDiff) String() string {
	var sb strings.Builder
	writeTableDiff(&sb, td)
	return sb.String()
}

func writeTableDiff(sb *strings.Builder, td *TableDiff) {
	if td.HasNameDifference() {
		sb.WriteString(fmt.Sprintf("\n  - %s (renamed from %s)\n", td.NewName(), td.OldName()))
	} else {
		sb.WriteString(fmt.Sprintf("\n  - %s\n", td.NewName()))
	}

	const indent = "    "
	writeList(sb, indent, "Warnings", td.Warnings, func(w string) string { return strings.TrimSpace(w) })
	writeList(sb, indent, "Created columns", td.CreatedColumns, formatColumn)
	writeList(sb, indent, "Dropped columns", td.DroppedColumns, formatColumn)

	if len(td.AlteredColumns) > 0 {
		sb.WriteString(indent + "Altered columns:\n")
		for _, cd := range td.AlteredColumns {
			sb.WriteString(fmt.Sprintf("      - %s:\n", cd.NewName()))
			for _, fc := range cd.Changes {
				sb.WriteString(fmt.Sprintf("        - %s: %q -> %q\n", fc.Field, fc.Old, fc.New))
			}
		}
	}

	if pk, ok := td.DroppedPrimaryKey(); ok {
		sb.WriteString(indent + "Dropped primary key: " + formatPrimaryKey(pk) + "\n")
	}
	if pk, ok := td.CreatedPrimaryKey(); ok {
		sb.WriteString(indent + "Created primary key: " + formatPrimaryKey(pk) + "\n")
	}

	writeList(sb, indent, "Created foreign keys", td.CreatedForeignKeys, formatForeignKey)
	writeList(sb, indent, "Dropped foreign keys", td.DroppedForeignKeys, formatForeignKey)
	writeList(sb, indent, "Created indexes", td.CreatedIndexes, formatIndex)
	writeList(sb, indent, "Dropped indexes", td.DroppedIndexes, formatIndex)
	writeList(sb, indent, "Created checks", td.CreatedChecks, func(c *core.Check) string { return c.Name + " CHECK (" + c.Definition + ")" })
	writeList(sb, indent, "Dropped checks", td.DroppedChecks, func(c *core.Check) string { return c.Name + " CHECK (" + c.Definition + ")" })
}

func writeList[T any](sb *strings.Builder, indent, title string, items []T, format func(T) string) {
	if len(items) == 0 {
		return
	}
	if indent == "" {
		sb.WriteString("\n")
	}
	sb.WriteString(indent + title + ":\n")
	for _, item := range items {
		line := format(item)
		if line == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s  - %s\n", indent, line))
	}
}

func formatColumn(c *core.Column) string {
	s := c.Name + ": " + string(c.Type)
	switch {
	case c.Length > 0:
		s += fmt.Sprintf("(%d)", c.Length)
	case c.Precision > 0:
		s += fmt.Sprintf("(%d, %d)", c.Precision, c.Scale)
	}
	if c.NotNull {
		s += " NOT NULL"
	}
	return s
}

func formatIndex(idx *core.Index) string {
	s := idx.Name + " " + formatNameList(idx.Columns)
	if idx.Unique {
		s += " UNIQUE"
	}
	return s
}

// SaveToFile writes the String form of the diff to path.
// 0644 permissions means read/write for owner, read for group and others.
func (d *SchemaDiff) SaveToFile(path string) error {
	return os.WriteFile(path, []byte(d.String()), 0644)
}
