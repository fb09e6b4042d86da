// Package schemafile defines the declarative schema document shared by the
// TOML and YAML readers and converts it into a core.Schema.
//
// A document looks like this in TOML:
//
//	[schema]
//	name = "app"
//
//	[[tables]]
//	name = "users"
//
//	[[tables.columns]]
//	name = "id"
//	type = "integer"
//	primary_key = true
//	auto_increment = true
//
//	[[tables.columns]]
//	name = "email"
//	type = "varchar(255)"
//	unique = true
//
// Columns are NOT NULL unless nullable is set.
package schemafile

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dbal/internal/core"
	"dbal/internal/dialect"
)

// Document is the top-level schema file.
type Document struct {
	Schema     Header      `toml:"schema" yaml:"schema"`
	Validation *Validation `toml:"validation" yaml:"validation"`
	Tables     []Table     `toml:"tables" yaml:"tables"`
	Sequences  []Sequence  `toml:"sequences" yaml:"sequences"`
	Views      []View      `toml:"views" yaml:"views"`
}

// Header maps [schema].
type Header struct {
	Name     string `toml:"name" yaml:"name"`
	Platform string `toml:"platform" yaml:"platform"`
}

// Validation maps [validation]: naming rules checked during conversion.
type Validation struct {
	MaxTableNameLength  int    `toml:"max_table_name_length" yaml:"max_table_name_length"`
	MaxColumnNameLength int    `toml:"max_column_name_length" yaml:"max_column_name_length"`
	AllowedNamePattern  string `toml:"allowed_name_pattern" yaml:"allowed_name_pattern"`
}

// Table maps [[tables]].
type Table struct {
	Name           string       `toml:"name" yaml:"name"`
	Columns        []Column     `toml:"columns" yaml:"columns"`
	PrimaryKey     []string     `toml:"primary_key" yaml:"primary_key"`
	PrimaryKeyName string       `toml:"primary_key_name" yaml:"primary_key_name"`
	Indexes        []Index      `toml:"indexes" yaml:"indexes"`
	ForeignKeys    []ForeignKey `toml:"foreign_keys" yaml:"foreign_keys"`
	Checks         []Check      `toml:"checks" yaml:"checks"`
}

// Column maps [[tables.columns]].
type Column struct {
	Name          string `toml:"name" yaml:"name"`
	Type          string `toml:"type" yaml:"type"`
	Length        int    `toml:"length" yaml:"length"`
	Precision     int    `toml:"precision" yaml:"precision"`
	Scale         int    `toml:"scale" yaml:"scale"`
	Nullable      bool   `toml:"nullable" yaml:"nullable"`
	PrimaryKey    bool   `toml:"primary_key" yaml:"primary_key"`
	AutoIncrement bool   `toml:"auto_increment" yaml:"auto_increment"`
	Fixed         bool   `toml:"fixed" yaml:"fixed"`
	Unsigned      bool   `toml:"unsigned" yaml:"unsigned"`
	Comment       string `toml:"comment" yaml:"comment"`

	// Default accepts a string, bool or number and is normalized to a string.
	Default any `toml:"default" yaml:"default"`

	// Unique and References are shorthands for a single-column unique index
	// and foreign key. References has the form "table.column".
	Unique     bool   `toml:"unique" yaml:"unique"`
	References string `toml:"references" yaml:"references"`
	OnDelete   string `toml:"on_delete" yaml:"on_delete"`
	OnUpdate   string `toml:"on_update" yaml:"on_update"`
}

// Index maps [[tables.indexes]].
type Index struct {
	Name    string   `toml:"name" yaml:"name"`
	Columns []string `toml:"columns" yaml:"columns"`
	Unique  bool     `toml:"unique" yaml:"unique"`
}

// ForeignKey maps [[tables.foreign_keys]].
type ForeignKey struct {
	Name              string   `toml:"name" yaml:"name"`
	Columns           []string `toml:"columns" yaml:"columns"`
	ReferencedTable   string   `toml:"referenced_table" yaml:"referenced_table"`
	ReferencedColumns []string `toml:"referenced_columns" yaml:"referenced_columns"`
	OnDelete          string   `toml:"on_delete" yaml:"on_delete"`
	OnUpdate          string   `toml:"on_update" yaml:"on_update"`
}

// Check maps [[tables.checks]].
type Check struct {
	Name       string `toml:"name" yaml:"name"`
	Expression string `toml:"expression" yaml:"expression"`
}

// Sequence maps [[sequences]]. Start and increment default to 1.
type Sequence struct {
	Name      string `toml:"name" yaml:"name"`
	Start     *int   `toml:"start" yaml:"start"`
	Increment *int   `toml:"increment" yaml:"increment"`
}

// View maps [[views]].
type View struct {
	Name       string `toml:"name" yaml:"name"`
	Definition string `toml:"definition" yaml:"definition"`
}

// Convert builds and validates the schema described by doc.
func Convert(doc *Document) (*core.Schema, error) {
	c, err := newConverter(doc)
	if err != nil {
		return nil, err
	}
	return c.convert()
}

type converter struct {
	doc    *Document
	rules  *Validation
	nameRe *regexp.Regexp
}

func newConverter(doc *Document) (*converter, error) {
	if doc == nil {
		return nil, errors.New("schema document is nil")
	}
	c := &converter{doc: doc, rules: doc.Validation}
	if c.rules != nil && c.rules.AllowedNamePattern != "" {
		re, err := regexp.Compile(c.rules.AllowedNamePattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed_name_pattern %q: %w", c.rules.AllowedNamePattern, err)
		}
		c.nameRe = re
	}
	return c, nil
}

func (c *converter) convert() (*core.Schema, error) {
	if p := c.doc.Schema.Platform; p != "" {
		if _, err := dialect.ParseType(p); err != nil {
			return nil, err
		}
	}
	s := core.NewSchema(c.doc.Schema.Name)

	for i := range c.doc.Tables {
		tt := &c.doc.Tables[i]
		t, err := c.convertTable(tt)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", tt.Name, err)
		}
		if err := s.AddTable(t); err != nil {
			return nil, err
		}
	}

	for _, sq := range c.doc.Sequences {
		start, increment := 1, 1
		if sq.Start != nil {
			start = *sq.Start
		}
		if sq.Increment != nil {
			increment = *sq.Increment
		}
		seq, err := core.NewSequence(sq.Name, start, increment)
		if err != nil {
			return nil, err
		}
		if err := s.AddSequence(seq); err != nil {
			return nil, err
		}
	}

	for _, v := range c.doc.Views {
		if err := s.AddView(&core.View{Name: v.Name, Definition: v.Definition}); err != nil {
			return nil, err
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *converter) convertTable(tt *Table) (*core.Table, error) {
	if err := c.checkName("table", tt.Name, c.maxTableLen()); err != nil {
		return nil, err
	}
	t := core.NewTable(tt.Name)

	var pkCols []string
	for i := range tt.Columns {
		tc := &tt.Columns[i]
		if err := c.checkName("column", tc.Name, c.maxColumnLen()); err != nil {
			return nil, err
		}
		col, err := convertColumn(tc)
		if err != nil {
			return nil, err
		}
		if err := t.AddColumn(col); err != nil {
			return nil, err
		}
		if tc.PrimaryKey {
			pkCols = append(pkCols, tc.Name)
		}
	}

	if len(pkCols) > 0 && len(tt.PrimaryKey) > 0 {
		return nil, errors.New("primary key declared on both columns and the table; use one of them")
	}
	if len(tt.PrimaryKey) > 0 {
		pkCols = tt.PrimaryKey
	}
	if len(pkCols) > 0 {
		if err := t.SetPrimaryKey(&core.PrimaryKey{Name: tt.PrimaryKeyName, Columns: pkCols}); err != nil {
			return nil, err
		}
	}

	for _, ti := range tt.Indexes {
		if err := t.AddIndex(&core.Index{Name: ti.Name, Columns: ti.Columns, Unique: ti.Unique}); err != nil {
			return nil, err
		}
	}
	for _, tf := range tt.ForeignKeys {
		fk, err := convertForeignKey(tf)
		if err != nil {
			return nil, err
		}
		if err := t.AddForeignKey(fk); err != nil {
			return nil, err
		}
	}
	for _, tc := range tt.Checks {
		if err := t.AddCheck(&core.Check{Name: tc.Name, Definition: tc.Expression}); err != nil {
			return nil, err
		}
	}

	if err := synthesizeColumnConstraints(t, tt); err != nil {
		return nil, err
	}
	return t, nil
}

// synthesizeColumnConstraints turns the unique and references column
// shorthands into named table objects.
func synthesizeColumnConstraints(t *core.Table, tt *Table) error {
	for _, tc := range tt.Columns {
		if tc.Unique {
			name := fmt.Sprintf("uniq_%s_%s", tt.Name, tc.Name)
			if err := t.AddIndex(&core.Index{Name: name, Columns: []string{tc.Name}, Unique: true}); err != nil {
				return err
			}
		}
		if tc.References == "" {
			continue
		}
		refTable, refColumn, ok := parseReferences(tc.References)
		if !ok {
			return fmt.Errorf("column %q: invalid references %q: expected format \"table.column\"", tc.Name, tc.References)
		}
		fk, err := convertForeignKey(ForeignKey{
			Name:              fmt.Sprintf("fk_%s_%s", tt.Name, tc.Name),
			Columns:           []string{tc.Name},
			ReferencedTable:   refTable,
			ReferencedColumns: []string{refColumn},
			OnDelete:          tc.OnDelete,
			OnUpdate:          tc.OnUpdate,
		})
		if err != nil {
			return fmt.Errorf("column %q: %w", tc.Name, err)
		}
		if err := t.AddForeignKey(fk); err != nil {
			return err
		}
	}
	return nil
}

func convertForeignKey(tf ForeignKey) (*core.ForeignKey, error) {
	onDelete, err := core.ParseReferentialAction(tf.OnDelete)
	if err != nil {
		return nil, fmt.Errorf("foreign key %q on_delete: %w", tf.Name, err)
	}
	onUpdate, err := core.ParseReferentialAction(tf.OnUpdate)
	if err != nil {
		return nil, fmt.Errorf("foreign key %q on_update: %w", tf.Name, err)
	}
	return &core.ForeignKey{
		Name:           tf.Name,
		Columns:        tf.Columns,
		ForeignTable:   tf.ReferencedTable,
		ForeignColumns: tf.ReferencedColumns,
		OnDelete:       onDelete,
		OnUpdate:       onUpdate,
	}, nil
}

func convertColumn(tc *Column) (*core.Column, error) {
	spec, err := ParseTypeSpec(tc.Type)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", tc.Name, err)
	}
	col := &core.Column{
		Name:          tc.Name,
		Type:          spec.Type,
		Length:        firstNonZero(tc.Length, spec.Length),
		Precision:     firstNonZero(tc.Precision, spec.Precision),
		Scale:         firstNonZero(tc.Scale, spec.Scale),
		NotNull:       !tc.Nullable,
		AutoIncrement: tc.AutoIncrement,
		Comment:       tc.Comment,
		Fixed:         tc.Fixed || spec.Fixed,
		Unsigned:      tc.Unsigned || spec.Unsigned,
	}
	if tc.Default != nil {
		v, err := normalizeDefault(tc.Default)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", tc.Name, err)
		}
		col.Default = &v
	}
	return col, nil
}

func normalizeDefault(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strings.ToUpper(strconv.FormatBool(val)), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported default value %v (%T)", v, v)
	}
}

func parseReferences(ref string) (table, column string, ok bool) {
	table, column, ok = strings.Cut(strings.TrimSpace(ref), ".")
	if !ok || table == "" || column == "" || strings.Contains(column, ".") {
		return "", "", false
	}
	return table, column, true
}

func (c *converter) checkName(entity, name string, maxLen int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s name is empty", entity)
	}
	if maxLen > 0 && len(name) > maxLen {
		return fmt.Errorf("%s %q exceeds maximum length %d", entity, name, maxLen)
	}
	if c.nameRe != nil && !c.nameRe.MatchString(name) {
		return fmt.Errorf("%s %q does not match allowed pattern %q", entity, name, c.nameRe.String())
	}
	return nil
}

func (c *converter) maxTableLen() int {
	if c.rules == nil {
		return 0
	}
	return c.rules.MaxTableNameLength
}

func (c *converter) maxColumnLen() int {
	if c.rules == nil {
		return 0
	}
	return c.rules.MaxColumnNameLength
}

func firstNonZero(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}
