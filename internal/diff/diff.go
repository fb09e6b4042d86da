// Package diff compares two schema snapshots and describes the delta as
// column, table and schema diffs. It also includes breaking changes detection.
// Comparators are pure: they never mutate their inputs and keep no state.
package diff

import (
	"dbal/internal/core"
)

// SchemaDiff represents the differences between two schemas.
type SchemaDiff struct {
	Old *core.Schema
	New *core.Schema

	Warnings         []string `json:"warnings,omitempty"`
	CreatedTables    []*core.Table
	AlteredTables    []*TableDiff
	DroppedTables    []*core.Table
	CreatedSequences []*core.Sequence
	DroppedSequences []*core.Sequence
	CreatedViews     []*core.View
	DroppedViews     []*core.View
}

// HasDifference reports whether any table, sequence or view changed, or the schema was renamed.
func (d *SchemaDiff) HasDifference() bool {
	return d.hasObjectChanges() || d.HasNameDifference()
}

// HasNameDifference reports whether the schema name differs.
func (d *SchemaDiff) HasNameDifference() bool {
	return d.Old != nil && d.New != nil && d.Old.Name != d.New.Name
}

// HasNameDifferenceOnly reports whether the schema was renamed and nothing else changed.
func (d *SchemaDiff) HasNameDifferenceOnly() bool {
	return d.HasNameDifference() && !d.hasObjectChanges()
}

// IsEmpty returns true if there are no differences in the schema diff.
func (d *SchemaDiff) IsEmpty() bool { return !d.HasDifference() }

func (d *SchemaDiff) hasObjectChanges() bool {
	return len(d.CreatedTables) > 0 || len(d.AlteredTables) > 0 || len(d.DroppedTables) > 0 ||
		len(d.CreatedSequences) > 0 || len(d.DroppedSequences) > 0 ||
		len(d.CreatedViews) > 0 || len(d.DroppedViews) > 0
}

// TableDiff represents the differences between two tables.
type TableDiff struct {
	Old *core.Table
	New *core.Table

	Warnings       []string `json:"warnings,omitempty"`
	CreatedColumns []*core.Column
	AlteredColumns []*ColumnDiff
	DroppedColumns []*core.Column

	CreatedForeignKeys []*core.ForeignKey
	DroppedForeignKeys []*core.ForeignKey
	CreatedIndexes     []*core.Index
	DroppedIndexes     []*core.Index
	CreatedChecks      []*core.Check
	DroppedChecks      []*core.Check

	createdPK *core.PrimaryKey
	droppedPK *core.PrimaryKey
}

// NewTableDiff returns an empty diff between two tables.
func NewTableDiff(oldT, newT *core.Table) *TableDiff {
	return &TableDiff{Old: oldT, New: newT}
}

// GetName returns the new table name.
func (td *TableDiff) GetName() string { return td.NewName() }

// OldName returns the table name before the change.
func (td *TableDiff) OldName() string {
	if td.Old == nil {
		return td.NewName()
	}
	return td.Old.Name
}

// NewName returns the table name after the change.
func (td *TableDiff) NewName() string {
	if td.New == nil {
		if td.Old == nil {
			return ""
		}
		return td.Old.Name
	}
	return td.New.Name
}

// CreatedPrimaryKey returns the primary key to create, if any.
func (td *TableDiff) CreatedPrimaryKey() (*core.PrimaryKey, bool) { return td.createdPK, td.createdPK != nil }

// DroppedPrimaryKey returns the primary key to drop, if any.
func (td *TableDiff) DroppedPrimaryKey() (*core.PrimaryKey, bool) { return td.droppedPK, td.droppedPK != nil }

// SetCreatedPrimaryKey sets the primary key to create; nil clears it.
func (td *TableDiff) SetCreatedPrimaryKey(pk *core.PrimaryKey) { td.createdPK = pk }

// SetDroppedPrimaryKey sets the primary key to drop; nil clears it.
func (td *TableDiff) SetDroppedPrimaryKey(pk *core.PrimaryKey) { td.droppedPK = pk }

// HasNameDifference reports whether the table was renamed.
func (td *TableDiff) HasNameDifference() bool { return td.OldName() != td.NewName() }

// HasDifference reports whether anything about the table changed, including its name.
func (td *TableDiff) HasDifference() bool {
	return td.hasObjectChanges() || td.HasNameDifference()
}

// HasNameDifferenceOnly reports whether the table was renamed and nothing else changed.
func (td *TableDiff) HasNameDifferenceOnly() bool {
	return td.HasNameDifference() && !td.hasObjectChanges()
}

// IsEmpty returns true if the diff holds no change.
func (td *TableDiff) IsEmpty() bool { return !td.HasDifference() }

// RenamedColumns returns the altered columns whose name changed.
func (td *TableDiff) RenamedColumns() []*ColumnDiff {
	var out []*ColumnDiff
	for _, cd := range td.AlteredColumns {
		if cd.HasNameDifference() {
			out = append(out, cd)
		}
	}
	return out
}

func (td *TableDiff) hasObjectChanges() bool {
	return len(td.CreatedColumns) > 0 || len(td.AlteredColumns) > 0 || len(td.DroppedColumns) > 0 ||
		td.createdPK != nil || td.droppedPK != nil ||
		len(td.CreatedForeignKeys) > 0 || len(td.DroppedForeignKeys) > 0 ||
		len(td.CreatedIndexes) > 0 || len(td.DroppedIndexes) > 0 ||
		len(td.CreatedChecks) > 0 || len(td.DroppedChecks) > 0
}

// Options configure the comparators.
type Options struct {
	// DetectColumnRenames pairs a dropped and a created column that differ
	// only by name into a single rename.
	DetectColumnRenames bool
}

// DefaultOptions returns the options used by the package-level functions.
func DefaultOptions() Options {
	return Options{DetectColumnRenames: true}
}

// Comparator computes diffs with a fixed set of options. The zero value
// disables rename detection; use NewComparator for the defaults.
type Comparator struct {
	opts Options
}

// NewComparator returns a comparator using opts.
func NewComparator(opts Options) *Comparator {
	return &Comparator{opts: opts}
}

// CompareSchemas compares two schemas using the default options.
func CompareSchemas(oldS, newS *core.Schema) *SchemaDiff {
	return NewComparator(DefaultOptions()).CompareSchemas(oldS, newS)
}

// CompareTables compares two tables using the default options.
func CompareTables(oldT, newT *core.Table) *TableDiff {
	return NewComparator(DefaultOptions()).CompareTables(oldT, newT)
}

// CompareSchemas matches tables, sequences and views by name. Tables present
// on both sides are compared and kept only when they differ. A sequence or
// view whose definition changed is dropped and created again.
func (c *Comparator) CompareSchemas(oldS, newS *core.Schema) *SchemaDiff {
	if oldS == nil {
		oldS = core.NewSchema("")
	}
	if newS == nil {
		newS = core.NewSchema("")
	}
	d := &SchemaDiff{Old: oldS, New: newS}

	for _, nt := range newS.Tables() {
		ot, ok := oldS.Table(nt.Name)
		if !ok {
			d.CreatedTables = append(d.CreatedTables, nt)
			continue
		}
		if td := c.CompareTables(ot, nt); td.HasDifference() {
			d.AlteredTables = append(d.AlteredTables, td)
			d.Warnings = append(d.Warnings, td.Warnings...)
		}
	}
	for _, ot := range oldS.Tables() {
		if _, ok := newS.Table(ot.Name); !ok {
			d.DroppedTables = append(d.DroppedTables, ot)
		}
	}

	d.CreatedSequences, d.DroppedSequences = diffNamed(oldS.Sequences(), newS.Sequences())
	d.CreatedViews, d.DroppedViews = diffNamed(oldS.Views(), newS.Views())

	return d
}
