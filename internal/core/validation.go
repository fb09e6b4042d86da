package core

import (
	"fmt"
	"strings"
)

// ValidationError represents an error during schema validation.
type ValidationError struct {
	Entity  string
	Name    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s %q field %q: %s", e.Entity, e.Name, e.Field, e.Message)
	}
	return fmt.Sprintf("validation error in %s %q: %s", e.Entity, e.Name, e.Message)
}

// Validate checks cross-table integrity of the schema: every table must hold
// valid objects and foreign keys must point at existing tables and columns.
// Foreign keys referencing tables outside the schema are accepted.
func (s *Schema) Validate() error {
	if s == nil {
		return &ValidationError{Entity: "schema", Message: "schema is nil"}
	}
	for _, t := range s.Tables() {
		if err := t.Validate(); err != nil {
			return err
		}
		for _, fk := range t.ForeignKeys() {
			target, ok := s.Table(fk.ForeignTable)
			if !ok {
				continue
			}
			for _, col := range fk.ForeignColumns {
				if !target.HasColumn(col) {
					return &ValidationError{Entity: "foreign key", Name: fk.Name, Field: "ForeignColumns",
						Message: fmt.Sprintf("referenced column %q does not exist in table %q", col, target.Name)}
				}
			}
		}
	}
	for _, v := range s.Views() {
		if strings.TrimSpace(v.Definition) == "" {
			return &ValidationError{Entity: "view", Name: v.Name, Field: "Definition", Message: "view definition is empty"}
		}
	}
	return nil
}

// Validate checks the table and every object it holds.
func (t *Table) Validate() error {
	if t == nil {
		return &ValidationError{Entity: "table", Message: "table is nil"}
	}
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Entity: "table", Name: "(empty)", Message: "table name is empty"}
	}
	if t.columns.len() == 0 {
		return &ValidationError{Entity: "table", Name: t.Name, Message: "table has no columns"}
	}
	for _, c := range t.Columns() {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	for _, fk := range t.ForeignKeys() {
		if err := fk.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that the column attributes fit its type.
func (c *Column) Validate() error {
	if c == nil {
		return &ValidationError{Entity: "column", Message: "column is nil"}
	}
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Entity: "column", Name: "(empty)", Message: "column name is empty"}
	}
	if !c.Type.IsValid() {
		return &ValidationError{Entity: "column", Name: c.Name, Field: "Type", Message: fmt.Sprintf("unknown type %q", c.Type)}
	}
	if c.Length < 0 || c.Precision < 0 || c.Scale < 0 {
		return &ValidationError{Entity: "column", Name: c.Name, Message: "length, precision and scale must not be negative"}
	}
	if c.Length > 0 && !c.Type.HasLength() {
		return &ValidationError{Entity: "column", Name: c.Name, Field: "Length", Message: fmt.Sprintf("type %s does not take a length", c.Type)}
	}
	if (c.Precision > 0 || c.Scale > 0) && !c.Type.HasPrecision() {
		return &ValidationError{Entity: "column", Name: c.Name, Field: "Precision", Message: fmt.Sprintf("type %s does not take precision or scale", c.Type)}
	}
	if c.Precision > 0 && c.Scale > c.Precision {
		return &ValidationError{Entity: "column", Name: c.Name, Field: "Scale", Message: fmt.Sprintf("scale %d exceeds precision %d", c.Scale, c.Precision)}
	}
	if c.Fixed && c.Type != TypeString && c.Type != TypeBinary {
		return &ValidationError{Entity: "column", Name: c.Name, Field: "Fixed", Message: fmt.Sprintf("type %s cannot be fixed-width", c.Type)}
	}
	if c.Unsigned && !c.Type.IsNumeric() {
		return &ValidationError{Entity: "column", Name: c.Name, Field: "Unsigned", Message: fmt.Sprintf("type %s cannot be unsigned", c.Type)}
	}
	if c.AutoIncrement && !c.Type.IsInteger() {
		return &ValidationError{Entity: "column", Name: c.Name, Field: "AutoIncrement", Message: fmt.Sprintf("type %s cannot auto-increment", c.Type)}
	}
	return nil
}

// Validate checks the foreign key definition on its own.
func (fk *ForeignKey) Validate() error {
	if fk == nil {
		return &ValidationError{Entity: "foreign key", Message: "foreign key is nil"}
	}
	if strings.TrimSpace(fk.Name) == "" {
		return &ValidationError{Entity: "foreign key", Name: "(empty)", Message: "foreign key has no name"}
	}
	if strings.TrimSpace(fk.ForeignTable) == "" {
		return &ValidationError{Entity: "foreign key", Name: fk.Name, Field: "ForeignTable", Message: "foreign key must reference a table"}
	}
	if len(fk.ForeignColumns) == 0 {
		return &ValidationError{Entity: "foreign key", Name: fk.Name, Field: "ForeignColumns", Message: "foreign key must reference columns"}
	}
	if len(fk.Columns) != len(fk.ForeignColumns) {
		return &ValidationError{Entity: "foreign key", Name: fk.Name, Message: "foreign key column count mismatch"}
	}
	return nil
}
