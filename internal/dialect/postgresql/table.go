package postgresql

import (
	"fmt"
	"strings"

	"dbal/internal/core"
	"dbal/internal/dialect"
	"dbal/internal/diff"
)

// CreateTableSQL creates the table with its primary key and checks, then its
// indexes and column comments as separate statements.
func (p *Platform) CreateTableSQL(t *core.Table) []string {
	var lines []string
	for _, c := range t.Columns() {
		lines = append(lines, "  "+p.ColumnDefinition(c))
	}
	if pk, ok := t.PrimaryKey(); ok {
		lines = append(lines, "  "+p.primaryKeyClause(pk))
	}
	for _, ck := range t.Checks() {
		lines = append(lines, fmt.Sprintf("  CONSTRAINT %s CHECK (%s)", p.QuoteIdentifier(ck.Name), strings.TrimSpace(ck.Definition)))
	}

	stmts := []string{fmt.Sprintf("CREATE TABLE %s (\n%s\n)", p.QuoteIdentifier(t.Name), strings.Join(lines, ",\n"))}
	for _, idx := range t.FilteredIndexes() {
		stmts = append(stmts, p.CreateIndexSQL(t.Name, idx)...)
	}
	for _, c := range t.Columns() {
		if strings.TrimSpace(c.Comment) != "" {
			stmts = append(stmts, p.commentOnColumn(t.Name, c.Name, c.Comment))
		}
	}
	return stmts
}

func (p *Platform) primaryKeyClause(pk *core.PrimaryKey) string {
	if name := strings.TrimSpace(pk.Name); name != "" {
		return fmt.Sprintf("CONSTRAINT %s PRIMARY KEY %s", p.QuoteIdentifier(name), p.columns(pk.Columns))
	}
	return "PRIMARY KEY " + p.columns(pk.Columns)
}

// DropTableSQL drops the table.
func (p *Platform) DropTableSQL(t *core.Table) []string {
	return []string{"DROP TABLE " + p.QuoteIdentifier(t.Name)}
}

// RenameTableSQL renames a table.
func (p *Platform) RenameTableSQL(oldName, newName string) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s RENAME TO %s", p.QuoteIdentifier(oldName), p.QuoteIdentifier(newName))}
}

// CreateColumnSQL adds a column and its comment.
func (p *Platform) CreateColumnSQL(table string, c *core.Column) []string {
	stmts := []string{fmt.Sprintf("ALTER TABLE %s ADD %s", p.QuoteIdentifier(table), p.ColumnDefinition(c))}
	if strings.TrimSpace(c.Comment) != "" {
		stmts = append(stmts, p.commentOnColumn(table, c.Name, c.Comment))
	}
	return stmts
}

// DropColumnSQL drops a column.
func (p *Platform) DropColumnSQL(table string, c *core.Column) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP %s", p.QuoteIdentifier(table), p.QuoteIdentifier(c.Name))}
}

// AlterColumnSQL emits one statement per changed aspect: rename, type,
// identity removal, default, nullability, identity addition, comment.
// Statements after the rename use the new column name. An identity column
// cannot carry a default, so the identity is dropped before a default is set
// and an existing default is dropped before the identity is added.
func (p *Platform) AlterColumnSQL(table string, d *diff.ColumnDiff) []string {
	if !d.HasDifference() {
		return nil
	}
	qt := p.QuoteIdentifier(table)
	col := p.QuoteIdentifier(d.NewName())
	alter := func(action string) string {
		return fmt.Sprintf("ALTER TABLE %s ALTER %s %s", qt, col, action)
	}
	identityChanged := d.HasChanged(diff.PropAutoIncrement)

	var stmts []string
	if d.HasNameDifference() {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", qt, p.QuoteIdentifier(d.OldName()), col))
	}
	if d.HasChanged(diff.PropType) || d.HasChanged(diff.PropLength) || d.HasChanged(diff.PropPrecision) ||
		d.HasChanged(diff.PropScale) || d.HasChanged(diff.PropFixed) {
		typ := p.ColumnType(d.New)
		if d.HasChanged(diff.PropType) {
			stmts = append(stmts, alter(fmt.Sprintf("TYPE %s USING %s::%s", typ, col, typ)))
		} else {
			stmts = append(stmts, alter("TYPE "+typ))
		}
	}
	if identityChanged && !d.New.AutoIncrement {
		stmts = append(stmts, alter("DROP IDENTITY IF EXISTS"))
	}
	switch {
	case d.New.AutoIncrement:
		if identityChanged && d.Old.Default != nil {
			stmts = append(stmts, alter("DROP DEFAULT"))
		}
	case d.HasChanged(diff.PropDefault):
		if d.New.Default == nil {
			stmts = append(stmts, alter("DROP DEFAULT"))
		} else {
			stmts = append(stmts, alter("SET DEFAULT "+p.formatValue(*d.New.Default)))
		}
	}
	if d.HasChanged(diff.PropNotNull) {
		if d.New.NotNull {
			stmts = append(stmts, alter("SET NOT NULL"))
		} else {
			stmts = append(stmts, alter("DROP NOT NULL"))
		}
	}
	if identityChanged && d.New.AutoIncrement {
		stmts = append(stmts, alter("ADD GENERATED BY DEFAULT AS IDENTITY"))
	}
	if d.HasChanged(diff.PropComment) {
		stmts = append(stmts, p.commentOnColumn(table, d.NewName(), d.New.Comment))
	}
	return stmts
}

// CreatePrimaryKeySQL adds the primary key.
func (p *Platform) CreatePrimaryKeySQL(table string, pk *core.PrimaryKey) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s ADD %s", p.QuoteIdentifier(table), p.primaryKeyClause(pk))}
}

// DefaultPrimaryKeyName is the name PostgreSQL gives an unnamed primary key.
// Renaming the table later does not rename the constraint.
func (p *Platform) DefaultPrimaryKeyName(table string) string { return table + "_pkey" }

// DropPrimaryKeySQL drops the primary key constraint. An unnamed key uses
// DefaultPrimaryKeyName.
func (p *Platform) DropPrimaryKeySQL(table string, pk *core.PrimaryKey) []string {
	name := strings.TrimSpace(pk.Name)
	if name == "" {
		name = p.DefaultPrimaryKeyName(table)
	}
	return []string{fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", p.QuoteIdentifier(table), p.QuoteIdentifier(name))}
}

// CreateForeignKeySQL adds a named foreign key.
func (p *Platform) CreateForeignKeySQL(table string, fk *core.ForeignKey) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY %s REFERENCES %s %s%s",
		p.QuoteIdentifier(table), p.QuoteIdentifier(fk.Name), p.columns(fk.Columns),
		p.QuoteIdentifier(fk.ForeignTable), p.columns(fk.ForeignColumns), dialect.ReferentialClause(fk))}
}

// DropForeignKeySQL drops a foreign key constraint.
func (p *Platform) DropForeignKeySQL(table string, fk *core.ForeignKey) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", p.QuoteIdentifier(table), p.QuoteIdentifier(fk.Name))}
}

// CreateIndexSQL creates an index.
func (p *Platform) CreateIndexSQL(table string, idx *core.Index) []string {
	kind := "INDEX"
	if idx.Unique {
		kind = "UNIQUE INDEX"
	}
	return []string{fmt.Sprintf("CREATE %s %s ON %s %s", kind, p.QuoteIdentifier(idx.Name), p.QuoteIdentifier(table), p.columns(idx.Columns))}
}

// DropIndexSQL drops an index. Index names are schema-wide in PostgreSQL.
func (p *Platform) DropIndexSQL(_ string, idx *core.Index) []string {
	return []string{"DROP INDEX " + p.QuoteIdentifier(idx.Name)}
}

// CreateCheckSQL adds a check constraint.
func (p *Platform) CreateCheckSQL(table string, ck *core.Check) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)", p.QuoteIdentifier(table), p.QuoteIdentifier(ck.Name), strings.TrimSpace(ck.Definition))}
}

// DropCheckSQL drops a check constraint.
func (p *Platform) DropCheckSQL(table string, ck *core.Check) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", p.QuoteIdentifier(table), p.QuoteIdentifier(ck.Name))}
}

// CreateSequenceSQL creates a sequence.
func (p *Platform) CreateSequenceSQL(s *core.Sequence) []string {
	return []string{fmt.Sprintf("CREATE SEQUENCE %s INCREMENT BY %d MINVALUE 1 START %d", p.QuoteIdentifier(s.Name), s.IncrementSize, s.InitialValue)}
}

// DropSequenceSQL drops a sequence.
func (p *Platform) DropSequenceSQL(s *core.Sequence) []string {
	return []string{"DROP SEQUENCE " + p.QuoteIdentifier(s.Name)}
}

// CreateViewSQL creates a view.
func (p *Platform) CreateViewSQL(v *core.View) []string {
	return []string{fmt.Sprintf("CREATE VIEW %s AS %s", p.QuoteIdentifier(v.Name), strings.TrimSpace(v.Definition))}
}

// DropViewSQL drops a view.
func (p *Platform) DropViewSQL(v *core.View) []string {
	return []string{"DROP VIEW " + p.QuoteIdentifier(v.Name)}
}
