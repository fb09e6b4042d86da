// Package mysql reads MySQL DDL dumps (the output of mysqldump --no-data or
// SHOW CREATE TABLE) into the schema model.
package mysql

import (
	"fmt"
	"os"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver" // registers the value expression driver

	"dbal/internal/core"
)

// Parser converts CREATE TABLE, CREATE VIEW and CREATE SEQUENCE statements.
// Other statements in the dump are ignored.
type Parser struct {
	p *parser.Parser
}

// NewParser creates a MySQL dump parser. A Parser is not safe for
// concurrent use.
func NewParser() *Parser {
	return &Parser{p: parser.New()}
}

// ParseFile reads the dump at path.
func (p *Parser) ParseFile(path string) (*core.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mysql: read file %q: %w", path, err)
	}
	return p.Parse(string(data))
}

// Parse converts the statements in sql into a validated schema.
func (p *Parser) Parse(sql string) (*core.Schema, error) {
	stmtNodes, _, err := p.p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("mysql: parse dump: %w", err)
	}

	s := core.NewSchema("")
	for _, node := range stmtNodes {
		if err := p.addStatement(s, node); err != nil {
			return nil, err
		}
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("mysql: %w", err)
	}
	return s, nil
}

func (p *Parser) addStatement(s *core.Schema, node ast.StmtNode) error {
	switch stmt := node.(type) {
	case *ast.CreateTableStmt:
		t, err := convertCreateTable(stmt)
		if err != nil {
			return fmt.Errorf("mysql: table %q: %w", stmt.Table.Name.O, err)
		}
		return s.AddTable(t)
	case *ast.CreateViewStmt:
		def, err := viewDefinition(stmt)
		if err != nil {
			return fmt.Errorf("mysql: view %q: %w", stmt.ViewName.Name.O, err)
		}
		return s.AddView(&core.View{Name: stmt.ViewName.Name.O, Definition: def})
	case *ast.CreateSequenceStmt:
		seq, err := convertSequence(stmt)
		if err != nil {
			return fmt.Errorf("mysql: %w", err)
		}
		return s.AddSequence(seq)
	case *ast.CreateDatabaseStmt:
		if s.Name == "" {
			s.Name = stmt.Name.O
		}
	case *ast.UseStmt:
		if s.Name == "" {
			s.Name = stmt.DBName
		}
	}
	return nil
}

func viewDefinition(stmt *ast.CreateViewStmt) (string, error) {
	if stmt.Select == nil {
		return "", fmt.Errorf("view has no definition")
	}
	if text := strings.TrimSpace(stmt.Select.Text()); text != "" {
		return text, nil
	}
	var sb strings.Builder
	if err := stmt.Select.Restore(format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)); err != nil {
		return "", fmt.Errorf("restore view definition: %w", err)
	}
	return sb.String(), nil
}

func convertSequence(stmt *ast.CreateSequenceStmt) (*core.Sequence, error) {
	start, increment := int64(1), int64(1)
	for _, opt := range stmt.SeqOptions {
		switch opt.Tp {
		case ast.SequenceStartWith:
			start = opt.IntValue
		case ast.SequenceOptionIncrementBy:
			increment = opt.IntValue
		}
	}
	return core.NewSequence(stmt.Name.Name.O, int(start), int(increment))
}
