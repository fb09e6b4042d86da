// Package core contains the single source of truth for a database schema.
// It provides a platform-independent representation of tables, columns, keys,
// indexes, checks, sequences and views that the comparators and platforms share.
package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Column represents a column in a table.
type Column struct {
	Name string `json:"name"`
	Type Type   `json:"type"`

	// Length applies to string and binary types; zero means unset.
	Length    int `json:"length,omitempty"`
	Precision int `json:"precision,omitempty"`
	Scale     int `json:"scale,omitempty"`

	NotNull bool `json:"notNull,omitempty"`
	// Default is nil when no default is declared. "NULL" is an explicit null default.
	Default       *string `json:"default,omitempty"`
	AutoIncrement bool    `json:"autoIncrement,omitempty"`
	Comment       string  `json:"comment,omitempty"`
	Fixed         bool    `json:"fixed,omitempty"`
	Unsigned      bool    `json:"unsigned,omitempty"`
}

// GetName implements the Named interface.
func (c *Column) GetName() string { return c.Name }

// HasDefault reports whether a default value is declared.
func (c *Column) HasDefault() bool { return c.Default != nil }

// DefaultString returns the declared default or an empty string.
func (c *Column) DefaultString() string {
	if c.Default == nil {
		return ""
	}
	return *c.Default
}

// PrimaryKey represents the primary key of a table.
type PrimaryKey struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
}

// Equal reports whether both keys have the same name and the same column sequence.
func (pk *PrimaryKey) Equal(other *PrimaryKey) bool {
	if pk == nil || other == nil {
		return pk == other
	}
	return pk.Name == other.Name && slices.Equal(pk.Columns, other.Columns)
}

// ForeignKey represents a foreign key constraint.
type ForeignKey struct {
	Name           string            `json:"name"`
	Columns        []string          `json:"columns"`
	ForeignTable   string            `json:"foreignTable"`
	ForeignColumns []string          `json:"foreignColumns"`
	OnDelete       ReferentialAction `json:"onDelete,omitempty"`
	OnUpdate       ReferentialAction `json:"onUpdate,omitempty"`
}

// GetName implements the Named interface.
func (fk *ForeignKey) GetName() string { return fk.Name }

// Equal compares every attribute of the foreign key.
func (fk *ForeignKey) Equal(other *ForeignKey) bool {
	if fk == nil || other == nil {
		return fk == other
	}
	return fk.Name == other.Name &&
		slices.Equal(fk.Columns, other.Columns) &&
		fk.ForeignTable == other.ForeignTable &&
		slices.Equal(fk.ForeignColumns, other.ForeignColumns) &&
		fk.OnDelete == other.OnDelete &&
		fk.OnUpdate == other.OnUpdate
}

// Index represents a table index.
type Index struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
	// Implicit marks indexes the database creates on its own, such as the
	// index MySQL adds for foreign key columns. It is not compared.
	Implicit bool `json:"implicit,omitempty"`
}

// GetName implements the Named interface.
func (i *Index) GetName() string { return i.Name }

// Equal compares name, column sequence and uniqueness.
func (i *Index) Equal(other *Index) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.Name == other.Name && i.Unique == other.Unique && slices.Equal(i.Columns, other.Columns)
}

// Check represents a CHECK constraint.
type Check struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// GetName implements the Named interface.
func (c *Check) GetName() string { return c.Name }

// Equal compares the name and the trimmed definition.
func (c *Check) Equal(other *Check) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Name == other.Name && strings.TrimSpace(c.Definition) == strings.TrimSpace(other.Definition)
}

// Sequence represents a database sequence.
type Sequence struct {
	Name          string `json:"name"`
	InitialValue  int    `json:"initialValue"`
	IncrementSize int    `json:"incrementSize"`
}

// NewSequence validates the values and returns a sequence.
// Both the initial value and the increment size must be positive.
func NewSequence(name string, initialValue, incrementSize int) (*Sequence, error) {
	seq := &Sequence{Name: name, InitialValue: initialValue, IncrementSize: incrementSize}
	if err := seq.validate(); err != nil {
		return nil, err
	}
	return seq, nil
}

func (s *Sequence) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Entity: "sequence", Name: "(empty)", Message: "sequence name is empty"}
	}
	if s.InitialValue < 1 {
		return &ValidationError{Entity: "sequence", Name: s.Name, Field: "InitialValue",
			Message: fmt.Sprintf("initial value must be a positive integer, got %d", s.InitialValue)}
	}
	if s.IncrementSize < 1 {
		return &ValidationError{Entity: "sequence", Name: s.Name, Field: "IncrementSize",
			Message: fmt.Sprintf("increment size must be a positive integer, got %d", s.IncrementSize)}
	}
	return nil
}

// DefaultSequence returns a sequence starting at 1 and incrementing by 1.
func DefaultSequence(name string) *Sequence {
	return &Sequence{Name: name, InitialValue: 1, IncrementSize: 1}
}

// GetName implements the Named interface.
func (s *Sequence) GetName() string { return s.Name }

// Equal compares name and definition.
func (s *Sequence) Equal(other *Sequence) bool {
	if s == nil || other == nil {
		return s == other
	}
	return *s == *other
}

// View represents a database view.
type View struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// GetName implements the Named interface.
func (v *View) GetName() string { return v.Name }

// Equal compares name and the trimmed definition.
func (v *View) Equal(other *View) bool {
	if v == nil || other == nil {
		return v == other
	}
	return v.Name == other.Name && strings.TrimSpace(v.Definition) == strings.TrimSpace(other.Definition)
}

// Table represents a table in the schema. Columns, foreign keys, indexes and
// checks keep their insertion order and are looked up by exact name.
type Table struct {
	Name string

	columns    named[*Column]
	primaryKey *PrimaryKey
	fks        named[*ForeignKey]
	indexes    named[*Index]
	checks     named[*Check]
}

// NewTable returns an empty table.
func NewTable(name string) *Table {
	return &Table{
		Name:    name,
		columns: newNamed[*Column](),
		fks:     newNamed[*ForeignKey](),
		indexes: newNamed[*Index](),
		checks:  newNamed[*Check](),
	}
}

// GetName implements the Named interface.
func (t *Table) GetName() string { return t.Name }

// AddColumn appends a column after validating it.
func (t *Table) AddColumn(c *Column) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !t.columns.add(c) {
		return t.duplicate("column", c.Name)
	}
	return nil
}

// SetPrimaryKey sets the primary key. All columns must already exist.
func (t *Table) SetPrimaryKey(pk *PrimaryKey) error {
	if pk == nil {
		t.primaryKey = nil
		return nil
	}
	if err := t.checkColumns("primary key", pk.Name, pk.Columns); err != nil {
		return err
	}
	t.primaryKey = pk
	return nil
}

// AddForeignKey appends a foreign key. Local columns must exist.
func (t *Table) AddForeignKey(fk *ForeignKey) error {
	if err := fk.Validate(); err != nil {
		return err
	}
	if err := t.checkColumns("foreign key", fk.Name, fk.Columns); err != nil {
		return err
	}
	if !t.fks.add(fk) {
		return t.duplicate("foreign key", fk.Name)
	}
	return nil
}

// AddIndex appends an index. Indexed columns must exist.
func (t *Table) AddIndex(idx *Index) error {
	if strings.TrimSpace(idx.Name) == "" {
		return &ValidationError{Entity: "index", Name: "(empty)", Message: fmt.Sprintf("index on table %q has no name", t.Name)}
	}
	if err := t.checkColumns("index", idx.Name, idx.Columns); err != nil {
		return err
	}
	if !t.indexes.add(idx) {
		return t.duplicate("index", idx.Name)
	}
	return nil
}

// AddCheck appends a check constraint.
func (t *Table) AddCheck(ck *Check) error {
	if strings.TrimSpace(ck.Name) == "" {
		return &ValidationError{Entity: "check", Name: "(empty)", Message: fmt.Sprintf("check on table %q has no name", t.Name)}
	}
	if strings.TrimSpace(ck.Definition) == "" {
		return &ValidationError{Entity: "check", Name: ck.Name, Field: "Definition", Message: "check constraint must have an expression"}
	}
	if !t.checks.add(ck) {
		return t.duplicate("check", ck.Name)
	}
	return nil
}

// Columns returns the columns in declaration order.
func (t *Table) Columns() []*Column { return t.columns.list() }

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) { return t.columns.get(name) }

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns.get(name)
	return ok
}

// PrimaryKey returns the primary key, if the table has one.
func (t *Table) PrimaryKey() (*PrimaryKey, bool) { return t.primaryKey, t.primaryKey != nil }

// ForeignKeys returns the foreign keys in declaration order.
func (t *Table) ForeignKeys() []*ForeignKey { return t.fks.list() }

// ForeignKey looks up a foreign key by exact name.
func (t *Table) ForeignKey(name string) (*ForeignKey, bool) { return t.fks.get(name) }

// Indexes returns all indexes in declaration order.
func (t *Table) Indexes() []*Index { return t.indexes.list() }

// Index looks up an index by exact name.
func (t *Table) Index(name string) (*Index, bool) { return t.indexes.get(name) }

// Checks returns the check constraints in declaration order.
func (t *Table) Checks() []*Check { return t.checks.list() }

// Check looks up a check constraint by exact name.
func (t *Table) Check(name string) (*Check, bool) { return t.checks.get(name) }

// FilteredIndexes returns the indexes a user declared, leaving out those the
// database creates on its own and the unique index backing the primary key.
func (t *Table) FilteredIndexes() []*Index {
	out := make([]*Index, 0, t.indexes.len())
	for _, idx := range t.indexes.list() {
		if t.isBackingIndex(idx) {
			continue
		}
		out = append(out, idx)
	}
	return out
}

func (t *Table) isBackingIndex(idx *Index) bool {
	if idx.Implicit {
		return true
	}
	return idx.Unique && t.primaryKey != nil && slices.Equal(idx.Columns, t.primaryKey.Columns)
}

func (t *Table) checkColumns(entity, name string, cols []string) error {
	if len(cols) == 0 {
		return &ValidationError{Entity: entity, Name: name, Field: "Columns", Message: fmt.Sprintf("%s has no columns", entity)}
	}
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if _, dup := seen[c]; dup {
			return &ValidationError{Entity: entity, Name: name, Field: "Columns", Message: fmt.Sprintf("column %q listed twice", c)}
		}
		seen[c] = struct{}{}
		if !t.HasColumn(c) {
			return &ValidationError{Entity: entity, Name: name, Field: "Columns",
				Message: fmt.Sprintf("column %q does not exist in table %q", c, t.Name)}
		}
	}
	return nil
}

func (t *Table) duplicate(entity, name string) error {
	return &ValidationError{Entity: "table", Name: t.Name, Message: fmt.Sprintf("duplicate %s name %q", entity, name)}
}

type tableJSON struct {
	Name        string        `json:"name"`
	Columns     []*Column     `json:"columns"`
	PrimaryKey  *PrimaryKey   `json:"primaryKey,omitempty"`
	ForeignKeys []*ForeignKey `json:"foreignKeys,omitempty"`
	Indexes     []*Index      `json:"indexes,omitempty"`
	Checks      []*Check      `json:"checks,omitempty"`
}

// MarshalJSON renders the table with its ordered collections.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableJSON{
		Name:        t.Name,
		Columns:     t.Columns(),
		PrimaryKey:  t.primaryKey,
		ForeignKeys: t.ForeignKeys(),
		Indexes:     t.Indexes(),
		Checks:      t.Checks(),
	})
}

// Schema represents a collection of tables, sequences and views.
type Schema struct {
	Name string

	tables    named[*Table]
	sequences named[*Sequence]
	views     named[*View]
}

// NewSchema returns an empty schema.
func NewSchema(name string) *Schema {
	return &Schema{
		Name:      name,
		tables:    newNamed[*Table](),
		sequences: newNamed[*Sequence](),
		views:     newNamed[*View](),
	}
}

// AddTable appends a table.
func (s *Schema) AddTable(t *Table) error {
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Entity: "table", Name: "(empty)", Message: "table name is empty"}
	}
	if !s.tables.add(t) {
		return s.duplicate("table", t.Name)
	}
	return nil
}

// AddSequence validates and appends a sequence.
func (s *Schema) AddSequence(seq *Sequence) error {
	if err := seq.validate(); err != nil {
		return err
	}
	if !s.sequences.add(seq) {
		return s.duplicate("sequence", seq.Name)
	}
	return nil
}

// AddView appends a view.
func (s *Schema) AddView(v *View) error {
	if strings.TrimSpace(v.Name) == "" {
		return &ValidationError{Entity: "view", Name: "(empty)", Message: "view name is empty"}
	}
	if !s.views.add(v) {
		return s.duplicate("view", v.Name)
	}
	return nil
}

// Tables returns the tables in declaration order.
func (s *Schema) Tables() []*Table { return s.tables.list() }

// Table looks up a table by exact name.
func (s *Schema) Table(name string) (*Table, bool) { return s.tables.get(name) }

// Sequences returns the sequences in declaration order.
func (s *Schema) Sequences() []*Sequence { return s.sequences.list() }

// Sequence looks up a sequence by exact name.
func (s *Schema) Sequence(name string) (*Sequence, bool) { return s.sequences.get(name) }

// Views returns the views in declaration order.
func (s *Schema) Views() []*View { return s.views.list() }

// View looks up a view by exact name.
func (s *Schema) View(name string) (*View, bool) { return s.views.get(name) }

func (s *Schema) duplicate(entity, name string) error {
	return &ValidationError{Entity: "schema", Name: s.Name, Message: fmt.Sprintf("duplicate %s name %q", entity, name)}
}

type schemaJSON struct {
	Name      string      `json:"name"`
	Tables    []*Table    `json:"tables"`
	Sequences []*Sequence `json:"sequences,omitempty"`
	Views     []*View     `json:"views,omitempty"`
}

// MarshalJSON renders the schema with its ordered collections.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(schemaJSON{Name: s.Name, Tables: s.Tables(), Sequences: s.Sequences(), Views: s.Views()})
}
