package mysql

import (
	"fmt"
	"strings"

	"dbal/internal/core"
	"dbal/internal/dialect"
	"dbal/internal/diff"
)

// CreateTableSQL creates the table with its primary key, indexes and checks inline.
func (p *Platform) CreateTableSQL(t *core.Table) []string {
	var lines []string
	for _, c := range t.Columns() {
		lines = append(lines, "  "+p.ColumnDefinition(c))
	}
	if pk, ok := t.PrimaryKey(); ok {
		lines = append(lines, "  PRIMARY KEY "+p.columns(pk.Columns))
	}
	for _, idx := range t.FilteredIndexes() {
		lines = append(lines, "  "+p.indexDefinitionInline(idx))
	}
	for _, ck := range t.Checks() {
		lines = append(lines, fmt.Sprintf("  CONSTRAINT %s CHECK (%s)", p.QuoteIdentifier(ck.Name), strings.TrimSpace(ck.Definition)))
	}
	return []string{fmt.Sprintf("CREATE TABLE %s (\n%s\n)", p.QuoteIdentifier(t.Name), strings.Join(lines, ",\n"))}
}

func (p *Platform) indexDefinitionInline(idx *core.Index) string {
	if idx.Unique {
		return fmt.Sprintf("UNIQUE KEY %s %s", p.QuoteIdentifier(idx.Name), p.columns(idx.Columns))
	}
	return fmt.Sprintf("KEY %s %s", p.QuoteIdentifier(idx.Name), p.columns(idx.Columns))
}

// DropTableSQL drops the table.
func (p *Platform) DropTableSQL(t *core.Table) []string {
	return []string{"DROP TABLE " + p.QuoteIdentifier(t.Name)}
}

// RenameTableSQL renames a table.
func (p *Platform) RenameTableSQL(oldName, newName string) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s RENAME TO %s", p.QuoteIdentifier(oldName), p.QuoteIdentifier(newName))}
}

// CreateColumnSQL adds a column.
func (p *Platform) CreateColumnSQL(table string, c *core.Column) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", p.QuoteIdentifier(table), p.ColumnDefinition(c))}
}

// DropColumnSQL drops a column.
func (p *Platform) DropColumnSQL(table string, c *core.Column) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", p.QuoteIdentifier(table), p.QuoteIdentifier(c.Name))}
}

// AlterColumnSQL redefines the column in one statement. A rename uses CHANGE,
// which takes the old name and the full new definition.
func (p *Platform) AlterColumnSQL(table string, d *diff.ColumnDiff) []string {
	if !d.HasDifference() {
		return nil
	}
	if d.HasNameDifference() {
		return []string{fmt.Sprintf("ALTER TABLE %s CHANGE %s %s", p.QuoteIdentifier(table), p.QuoteIdentifier(d.OldName()), p.ColumnDefinition(d.New))}
	}
	return []string{fmt.Sprintf("ALTER TABLE %s MODIFY %s", p.QuoteIdentifier(table), p.ColumnDefinition(d.New))}
}

// CreatePrimaryKeySQL adds the primary key. MySQL always names it PRIMARY.
func (p *Platform) CreatePrimaryKeySQL(table string, pk *core.PrimaryKey) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY %s", p.QuoteIdentifier(table), p.columns(pk.Columns))}
}

// DefaultPrimaryKeyName returns PRIMARY, the only name MySQL allows.
func (p *Platform) DefaultPrimaryKeyName(string) string { return "PRIMARY" }

// DropPrimaryKeySQL drops the primary key.
func (p *Platform) DropPrimaryKeySQL(table string, _ *core.PrimaryKey) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY", p.QuoteIdentifier(table))}
}

// CreateForeignKeySQL adds a named foreign key.
func (p *Platform) CreateForeignKeySQL(table string, fk *core.ForeignKey) []string {
	var sb strings.Builder
	sb.Grow(128)
	sb.WriteString("ALTER TABLE ")
	sb.WriteString(p.QuoteIdentifier(table))
	sb.WriteString(" ADD CONSTRAINT ")
	sb.WriteString(p.QuoteIdentifier(fk.Name))
	sb.WriteString(" FOREIGN KEY ")
	sb.WriteString(p.columns(fk.Columns))
	sb.WriteString(" REFERENCES ")
	sb.WriteString(p.QuoteIdentifier(fk.ForeignTable))
	sb.WriteString(" ")
	sb.WriteString(p.columns(fk.ForeignColumns))
	sb.WriteString(dialect.ReferentialClause(fk))
	return []string{sb.String()}
}

// DropForeignKeySQL drops a foreign key by name.
func (p *Platform) DropForeignKeySQL(table string, fk *core.ForeignKey) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", p.QuoteIdentifier(table), p.QuoteIdentifier(fk.Name))}
}

// CreateIndexSQL creates an index.
func (p *Platform) CreateIndexSQL(table string, idx *core.Index) []string {
	kind := "INDEX"
	if idx.Unique {
		kind = "UNIQUE INDEX"
	}
	return []string{fmt.Sprintf("CREATE %s %s ON %s %s", kind, p.QuoteIdentifier(idx.Name), p.QuoteIdentifier(table), p.columns(idx.Columns))}
}

// DropIndexSQL drops an index.
func (p *Platform) DropIndexSQL(table string, idx *core.Index) []string {
	return []string{fmt.Sprintf("DROP INDEX %s ON %s", p.QuoteIdentifier(idx.Name), p.QuoteIdentifier(table))}
}

// CreateCheckSQL adds a check constraint.
func (p *Platform) CreateCheckSQL(table string, ck *core.Check) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)", p.QuoteIdentifier(table), p.QuoteIdentifier(ck.Name), strings.TrimSpace(ck.Definition))}
}

// DropCheckSQL drops a check constraint.
func (p *Platform) DropCheckSQL(table string, ck *core.Check) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP CHECK %s", p.QuoteIdentifier(table), p.QuoteIdentifier(ck.Name))}
}

// CreateSequenceSQL returns nothing; see SupportsSequences.
func (p *Platform) CreateSequenceSQL(*core.Sequence) []string { return nil }

// DropSequenceSQL returns nothing; see SupportsSequences.
func (p *Platform) DropSequenceSQL(*core.Sequence) []string { return nil }

// CreateViewSQL creates a view.
func (p *Platform) CreateViewSQL(v *core.View) []string {
	return []string{fmt.Sprintf("CREATE VIEW %s AS %s", p.QuoteIdentifier(v.Name), strings.TrimSpace(v.Definition))}
}

// DropViewSQL drops a view.
func (p *Platform) DropViewSQL(v *core.View) []string {
	return []string{"DROP VIEW " + p.QuoteIdentifier(v.Name)}
}
