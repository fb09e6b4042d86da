package diff

import (
	"fmt"
	"strings"

	"dbal/internal/core"
)

// BreakingChange describes a change that may lose data or break clients.
type BreakingChange struct {
	Severity    ChangeSeverity
	Description string
	Table       string
	Object      string
	ObjectType  string
}

// ChangeSeverity ranks breaking changes.
type ChangeSeverity int

const (
	SeverityInfo ChangeSeverity = iota
	SeverityWarning
	SeverityBreaking
	SeverityCritical
)

func (s ChangeSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityBreaking:
		return "BREAKING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// BreakingChangeAnalyzer accumulates breaking changes found in schema diffs.
type BreakingChangeAnalyzer struct {
	Changes []BreakingChange
}

func NewBreakingChangeAnalyzer() *BreakingChangeAnalyzer {
	return &BreakingChangeAnalyzer{}
}

// Analyze inspects the diff and returns every breaking change found so far.
func (a *BreakingChangeAnalyzer) Analyze(d *SchemaDiff) []BreakingChange {
	if d == nil {
		return nil
	}

	for _, t := range d.DroppedTables {
		a.add(SeverityCritical, "Table will be dropped - all data will be lost", t.Name, t.Name, "TABLE")
	}
	for _, td := range d.AlteredTables {
		a.analyzeTable(td)
	}
	for _, s := range d.DroppedSequences {
		a.add(SeverityWarning, "Sequence will be dropped or recreated - its current value will be reset", "", s.Name, "SEQUENCE")
	}
	for _, v := range d.DroppedViews {
		a.add(SeverityWarning, "View will be dropped or recreated - dependent queries may fail meanwhile", "", v.Name, "VIEW")
	}

	return a.Changes
}

func (a *BreakingChangeAnalyzer) analyzeTable(td *TableDiff) {
	table := td.NewName()
	if td.HasNameDifference() {
		a.add(SeverityBreaking, fmt.Sprintf("Table rename: %s -> %s - queries using the old name will fail", td.OldName(), table),
			table, td.OldName()+"->"+table, "TABLE_RENAME")
	}
	for _, c := range td.DroppedColumns {
		a.add(SeverityCritical, "Column will be dropped - data will be lost", table, c.Name, "COLUMN")
	}
	for _, cd := range td.AlteredColumns {
		a.analyzeColumn(table, cd)
	}
	for _, c := range td.CreatedColumns {
		if c.NotNull && !c.HasDefault() && !c.AutoIncrement {
			a.add(SeverityBreaking, "Adding NOT NULL column without default - will fail if table has existing rows", table, c.Name, "COLUMN")
		}
	}
	if pk, ok := td.DroppedPrimaryKey(); ok {
		a.add(SeverityWarning, "Primary key will be dropped - foreign keys referencing it must be dropped first", table, formatPrimaryKey(pk), "PRIMARY_KEY")
	}
	for _, fk := range td.CreatedForeignKeys {
		a.add(SeverityInfo, fmt.Sprintf("Foreign key to %s added - existing rows must satisfy it", fk.ForeignTable), table, fk.Name, "FOREIGN_KEY")
	}
	for _, idx := range td.CreatedIndexes {
		if idx.Unique {
			a.add(SeverityBreaking, "Unique index added - fails if duplicates exist", table, idx.Name, "INDEX")
		}
	}
	for _, ck := range td.CreatedChecks {
		a.add(SeverityInfo, "Check constraint added - existing rows must satisfy it", table, ck.Name, "CHECK")
	}
}

func (a *BreakingChangeAnalyzer) analyzeColumn(table string, cd *ColumnDiff) {
	oldC, newC := cd.Old, cd.New
	name := cd.NewName()

	if cd.HasNameDifference() {
		a.add(SeverityBreaking, fmt.Sprintf("Column rename detected: %s -> %s - queries using the old name will fail", oldC.Name, newC.Name),
			table, oldC.Name+"->"+newC.Name, "COLUMN_RENAME")
	}
	if cd.HasChanged(PropType) {
		a.add(typeChangeSeverity(oldC.Type, newC.Type),
			fmt.Sprintf("Column type changes from %s to %s", oldC.Type, newC.Type), table, name, "COLUMN")
	}
	if cd.HasChanged(PropLength) && !cd.HasChanged(PropType) {
		if newC.Length > 0 && (oldC.Length == 0 || newC.Length < oldC.Length) {
			a.add(SeverityBreaking, fmt.Sprintf("Column length shrinks from %d to %d - existing values may be truncated", oldC.Length, newC.Length), table, name, "COLUMN")
		} else {
			a.add(SeverityInfo, fmt.Sprintf("Column length changes from %d to %d", oldC.Length, newC.Length), table, name, "COLUMN")
		}
	}
	if oldC.Type == core.TypeDecimal && newC.Type == core.TypeDecimal && (newC.Precision < oldC.Precision || newC.Scale < oldC.Scale) {
		a.add(SeverityBreaking, fmt.Sprintf("Column precision shrinks from (%d, %d) to (%d, %d) - values may be rounded",
			oldC.Precision, oldC.Scale, newC.Precision, newC.Scale), table, name, "COLUMN")
	}
	if !oldC.NotNull && newC.NotNull {
		a.add(SeverityBreaking, "Column becomes NOT NULL - existing NULL values will cause migration failure", table, name, "COLUMN")
	}
	if oldC.AutoIncrement && !newC.AutoIncrement {
		a.add(SeverityWarning, "AUTO_INCREMENT is being removed - new inserts will require explicit values", table, name, "COLUMN")
	}
	if !oldC.Unsigned && newC.Unsigned {
		a.add(SeverityBreaking, "Column becomes UNSIGNED - negative values will fail", table, name, "COLUMN")
	}
	if cd.HasChanged(PropDefault) {
		a.add(SeverityWarning, fmt.Sprintf("Default value changes from %q to %q", formatDefault(oldC.Default), formatDefault(newC.Default)), table, name, "COLUMN")
	}
	if strings.TrimSpace(oldC.Comment) != strings.TrimSpace(newC.Comment) {
		a.add(SeverityInfo, "Column comment changed", table, name, "COLUMN")
	}
}

var wideningConversions = map[core.Type][]core.Type{
	core.TypeSmallInt: {core.TypeInteger, core.TypeBigInt, core.TypeDecimal},
	core.TypeInteger:  {core.TypeBigInt, core.TypeDecimal},
	core.TypeBigInt:   {core.TypeDecimal},
	core.TypeFloat:    {core.TypeDecimal},
	core.TypeString:   {core.TypeText},
	core.TypeDate:     {core.TypeDateTime},
	core.TypeBinary:   {core.TypeBlob},
	core.TypeGUID:     {core.TypeString, core.TypeText},
}

func isWidening(oldT, newT core.Type) bool {
	for _, wider := range wideningConversions[oldT] {
		if wider == newT {
			return true
		}
	}
	return false
}

func typeChangeSeverity(oldT, newT core.Type) ChangeSeverity {
	switch {
	case isWidening(oldT, newT):
		return SeverityInfo
	case isWidening(newT, oldT):
		return SeverityCritical
	case oldT.IsNumeric() != newT.IsNumeric():
		return SeverityCritical
	default:
		return SeverityBreaking
	}
}

func (a *BreakingChangeAnalyzer) add(sev ChangeSeverity, desc, table, object, objectType string) {
	a.Changes = append(a.Changes, BreakingChange{
		Severity:    sev,
		Description: desc,
		Table:       table,
		Object:      object,
		ObjectType:  objectType,
	})
}
