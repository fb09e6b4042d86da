package mysql

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pingcap/tidb/pkg/parser/ast"

	"dbal/internal/core"
)

// tableBuilder collects the objects of one CREATE TABLE. Unnamed constraints
// get the names MySQL would generate.
type tableBuilder struct {
	table     *core.Table
	pkColumns []string
	fkCount   int
	chkCount  int
}

func convertCreateTable(stmt *ast.CreateTableStmt) (*core.Table, error) {
	if stmt.ReferTable != nil {
		return nil, errors.New("CREATE TABLE ... LIKE is not supported")
	}
	if stmt.Select != nil {
		return nil, errors.New("CREATE TABLE ... AS SELECT is not supported")
	}

	b := &tableBuilder{table: core.NewTable(stmt.Table.Name.O)}
	for _, colDef := range stmt.Cols {
		if err := b.addColumn(colDef); err != nil {
			return nil, err
		}
	}
	for _, c := range stmt.Constraints {
		if err := b.addConstraint(c); err != nil {
			return nil, err
		}
	}
	if len(b.pkColumns) > 0 {
		if err := b.table.SetPrimaryKey(&core.PrimaryKey{Columns: b.pkColumns}); err != nil {
			return nil, err
		}
	}
	b.markImplicitIndexes()
	return b.table, nil
}

func (b *tableBuilder) addColumn(colDef *ast.ColumnDef) error {
	col, err := newColumnFromDef(colDef)
	if err != nil {
		return err
	}

	var inline []func() error
	for _, opt := range colDef.Options {
		switch opt.Tp {
		case ast.ColumnOptionNotNull:
			col.NotNull = true
		case ast.ColumnOptionNull:
			col.NotNull = false
		case ast.ColumnOptionPrimaryKey:
			col.NotNull = true
			b.pkColumns = append(b.pkColumns, col.Name)
		case ast.ColumnOptionAutoIncrement:
			col.AutoIncrement = true
		case ast.ColumnOptionDefaultValue:
			if v, ok := defaultValue(opt.Expr); ok {
				col.Default = &v
			}
		case ast.ColumnOptionComment:
			if v, ok := exprToString(opt.Expr); ok {
				col.Comment = v
			}
		case ast.ColumnOptionUniqKey:
			inline = append(inline, func() error {
				return b.table.AddIndex(&core.Index{Name: b.indexName(col.Name), Columns: []string{col.Name}, Unique: true})
			})
		case ast.ColumnOptionCheck:
			inline = append(inline, func() error {
				return b.addCheck("", opt.Expr)
			})
		case ast.ColumnOptionReference:
			inline = append(inline, func() error {
				return b.addForeignKey("", []string{col.Name}, opt.Refer)
			})
		case ast.ColumnOptionGenerated:
			return fmt.Errorf("column %q: generated columns are not supported", col.Name)
		}
	}

	if err := b.table.AddColumn(col); err != nil {
		return err
	}
	for _, add := range inline {
		if err := add(); err != nil {
			return fmt.Errorf("column %q: %w", col.Name, err)
		}
	}
	return nil
}

func (b *tableBuilder) addConstraint(c *ast.Constraint) error {
	columns, err := keyColumns(c.Keys)
	if err != nil {
		return fmt.Errorf("constraint %q: %w", c.Name, err)
	}

	switch c.Tp {
	case ast.ConstraintPrimaryKey:
		if len(b.pkColumns) > 0 {
			return errors.New("multiple primary keys defined")
		}
		b.pkColumns = columns
		for _, name := range columns {
			if col, ok := b.table.Column(name); ok {
				col.NotNull = true
			}
		}
	case ast.ConstraintUniq, ast.ConstraintUniqKey, ast.ConstraintUniqIndex:
		return b.addIndex(c.Name, columns, true)
	case ast.ConstraintIndex, ast.ConstraintKey:
		return b.addIndex(c.Name, columns, false)
	case ast.ConstraintForeignKey:
		return b.addForeignKey(c.Name, columns, c.Refer)
	case ast.ConstraintCheck:
		return b.addCheck(c.Name, c.Expr)
	case ast.ConstraintFulltext:
		return fmt.Errorf("fulltext index %q is not supported", c.Name)
	}
	return nil
}

func keyColumns(keys []*ast.IndexPartSpecification) ([]string, error) {
	columns := make([]string, 0, len(keys))
	for _, key := range keys {
		if key.Column == nil {
			return nil, errors.New("expression key parts are not supported")
		}
		columns = append(columns, key.Column.Name.O)
	}
	return columns, nil
}

func (b *tableBuilder) addIndex(name string, columns []string, unique bool) error {
	if name == "" && len(columns) > 0 {
		name = b.indexName(columns[0])
	}
	return b.table.AddIndex(&core.Index{Name: name, Columns: columns, Unique: unique})
}

// indexName mirrors MySQL: the first column name, suffixed with _2, _3 and
// so on when taken.
func (b *tableBuilder) indexName(column string) string {
	name := column
	for i := 2; ; i++ {
		if _, taken := b.table.Index(name); !taken {
			return name
		}
		name = fmt.Sprintf("%s_%d", column, i)
	}
}

func (b *tableBuilder) addForeignKey(name string, columns []string, ref *ast.ReferenceDef) error {
	if ref == nil || ref.Table == nil {
		return errors.New("foreign key without REFERENCES clause")
	}
	if name == "" {
		b.fkCount++
		name = fmt.Sprintf("%s_ibfk_%d", b.table.Name, b.fkCount)
	}
	refColumns, err := keyColumns(ref.IndexPartSpecifications)
	if err != nil {
		return fmt.Errorf("foreign key %q: %w", name, err)
	}

	fk := &core.ForeignKey{
		Name:           name,
		Columns:        columns,
		ForeignTable:   ref.Table.Name.O,
		ForeignColumns: refColumns,
	}
	if ref.OnDelete != nil {
		if fk.OnDelete, err = core.ParseReferentialAction(ref.OnDelete.ReferOpt.String()); err != nil {
			return fmt.Errorf("foreign key %q: %w", name, err)
		}
	}
	if ref.OnUpdate != nil {
		if fk.OnUpdate, err = core.ParseReferentialAction(ref.OnUpdate.ReferOpt.String()); err != nil {
			return fmt.Errorf("foreign key %q: %w", name, err)
		}
	}
	return b.table.AddForeignKey(fk)
}

func (b *tableBuilder) addCheck(name string, expr ast.ExprNode) error {
	if name == "" {
		b.chkCount++
		name = fmt.Sprintf("%s_chk_%d", b.table.Name, b.chkCount)
	}
	def, ok := restoreExpr(expr)
	if !ok {
		return fmt.Errorf("check %q: cannot restore expression", name)
	}
	return b.table.AddCheck(&core.Check{Name: name, Definition: def})
}

// markImplicitIndexes flags the indexes InnoDB creates for foreign keys.
// SHOW CREATE TABLE prints them as plain keys named after the constraint.
func (b *tableBuilder) markImplicitIndexes() {
	for _, fk := range b.table.ForeignKeys() {
		idx, ok := b.table.Index(fk.Name)
		if ok && !idx.Unique && slices.Equal(idx.Columns, fk.Columns) {
			idx.Implicit = true
		}
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
