package diff

import (
	"strconv"

	"dbal/internal/core"
)

// Column property names reported in ColumnDiff.Changes, in comparison order.
const (
	PropName          = "name"
	PropType          = "type"
	PropLength        = "length"
	PropPrecision     = "precision"
	PropScale         = "scale"
	PropNotNull       = "notnull"
	PropDefault       = "default"
	PropAutoIncrement = "autoincrement"
	PropComment       = "comment"
	PropFixed         = "fixed"
	PropUnsigned      = "unsigned"
)

// ColumnDiff represents the differences between two columns.
type ColumnDiff struct {
	Old     *core.Column
	New     *core.Column
	Changes []*FieldChange
}

// FieldChange represents the change of a single property.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// GetName returns the new column name.
func (cd *ColumnDiff) GetName() string { return cd.New.Name }

// OldName returns the column name before the change.
func (cd *ColumnDiff) OldName() string { return cd.Old.Name }

// NewName returns the column name after the change.
func (cd *ColumnDiff) NewName() string { return cd.New.Name }

// ChangedProperties returns the names of the changed properties.
func (cd *ColumnDiff) ChangedProperties() []string {
	out := make([]string, len(cd.Changes))
	for i, fc := range cd.Changes {
		out[i] = fc.Field
	}
	return out
}

// HasChanged reports whether the given property changed.
func (cd *ColumnDiff) HasChanged(prop string) bool {
	for _, fc := range cd.Changes {
		if fc.Field == prop {
			return true
		}
	}
	return false
}

// HasDifference reports whether any property changed.
func (cd *ColumnDiff) HasDifference() bool { return len(cd.Changes) > 0 }

// HasNameDifference reports whether the column was renamed.
func (cd *ColumnDiff) HasNameDifference() bool { return cd.HasChanged(PropName) }

// HasNameDifferenceOnly reports whether the name is the only changed property.
func (cd *ColumnDiff) HasNameDifferenceOnly() bool {
	return len(cd.Changes) == 1 && cd.Changes[0].Field == PropName
}

// CompareColumns compares every property of two columns. Defaults are
// compared exactly: an unset default differs from any declared one.
func CompareColumns(oldC, newC *core.Column) *ColumnDiff {
	c := &fieldChangeCollector{}

	c.Add(PropName, oldC.Name, newC.Name)
	c.Add(PropType, string(oldC.Type), string(newC.Type))
	c.Add(PropLength, strconv.Itoa(oldC.Length), strconv.Itoa(newC.Length))
	c.Add(PropPrecision, strconv.Itoa(oldC.Precision), strconv.Itoa(newC.Precision))
	c.Add(PropScale, strconv.Itoa(oldC.Scale), strconv.Itoa(newC.Scale))
	c.Add(PropNotNull, strconv.FormatBool(oldC.NotNull), strconv.FormatBool(newC.NotNull))
	if !defaultsEqual(oldC.Default, newC.Default) {
		c.changes = append(c.changes, &FieldChange{Field: PropDefault, Old: formatDefault(oldC.Default), New: formatDefault(newC.Default)})
	}
	c.Add(PropAutoIncrement, strconv.FormatBool(oldC.AutoIncrement), strconv.FormatBool(newC.AutoIncrement))
	c.Add(PropComment, oldC.Comment, newC.Comment)
	c.Add(PropFixed, strconv.FormatBool(oldC.Fixed), strconv.FormatBool(newC.Fixed))
	c.Add(PropUnsigned, strconv.FormatBool(oldC.Unsigned), strconv.FormatBool(newC.Unsigned))

	return &ColumnDiff{Old: oldC, New: newC, Changes: c.changes}
}

func defaultsEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func formatDefault(p *string) string {
	if p == nil {
		return "<unset>"
	}
	return *p
}
