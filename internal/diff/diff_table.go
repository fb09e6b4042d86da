package diff

import (
	"dbal/internal/core"
)

// CompareTables computes the full delta between two tables. The result is
// never nil; check HasDifference to see whether anything changed.
func (c *Comparator) CompareTables(oldT, newT *core.Table) *TableDiff {
	td := NewTableDiff(oldT, newT)

	compareColumns(oldT, newT, td)
	if c.opts.DetectColumnRenames {
		td.detectColumnRenames()
	}
	comparePrimaryKeys(oldT, newT, td)
	td.CreatedForeignKeys, td.DroppedForeignKeys = diffNamed(oldT.ForeignKeys(), newT.ForeignKeys())
	td.CreatedIndexes, td.DroppedIndexes = diffNamed(oldT.FilteredIndexes(), newT.FilteredIndexes())
	td.CreatedChecks, td.DroppedChecks = diffNamed(oldT.Checks(), newT.Checks())

	return td
}

// compareColumns fills created columns in new-table order, altered columns
// in new-table order and dropped columns in old-table order.
func compareColumns(oldT, newT *core.Table, td *TableDiff) {
	for _, nc := range newT.Columns() {
		oc, ok := oldT.Column(nc.Name)
		if !ok {
			td.CreatedColumns = append(td.CreatedColumns, nc)
			continue
		}
		if cd := CompareColumns(oc, nc); cd.HasDifference() {
			td.AlteredColumns = append(td.AlteredColumns, cd)
		}
	}
	for _, oc := range oldT.Columns() {
		if !newT.HasColumn(oc.Name) {
			td.DroppedColumns = append(td.DroppedColumns, oc)
		}
	}
}
