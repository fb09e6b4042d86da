package apply

import (
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver" // registers the value expression driver
)

// mysqlEffect is what one statement shape does to a live table. Empty
// strings mean the effect does not apply.
type mysqlEffect struct {
	destructive string
	blocking    string
}

// alterClauseEffects covers the ALTER TABLE clauses the MySQL platform
// emits. DROP FOREIGN KEY and DROP CHECK only touch metadata.
var alterClauseEffects = map[ast.AlterTableType]mysqlEffect{
	ast.AlterTableRenameTable:    {blocking: "RENAME TO waits for a metadata lock on the table"},
	ast.AlterTableAddColumns:     {blocking: "ADD COLUMN rebuilds the table unless MySQL can add it instantly"},
	ast.AlterTableChangeColumn:   {blocking: "CHANGE rebuilds the table when the column definition changes"},
	ast.AlterTableModifyColumn:   {blocking: "MODIFY rebuilds the table when the column type or size changes"},
	ast.AlterTableDropPrimaryKey: {blocking: "DROP PRIMARY KEY rebuilds the clustered index"},
	ast.AlterTableDropColumn: {
		destructive: "DROP COLUMN will permanently delete the column and its data",
		blocking:    "DROP COLUMN rebuilds the table",
	},
}

// addConstraintEffects covers ALTER TABLE ... ADD by constraint kind.
var addConstraintEffects = map[ast.ConstraintType]mysqlEffect{
	ast.ConstraintPrimaryKey: {blocking: "ADD PRIMARY KEY rebuilds the clustered index"},
	ast.ConstraintForeignKey: {blocking: "ADD FOREIGN KEY checks existing rows while holding a lock"},
	ast.ConstraintCheck:      {blocking: "ADD CHECK scans existing rows while holding a lock"},
}

// StatementAnalyzer classifies MySQL statements with the TiDB parser. MySQL
// commits implicitly around every DDL statement, so no DDL is
// transaction-safe.
type StatementAnalyzer struct {
	parser *parser.Parser
}

// NewStatementAnalyzer creates a new AST-based statement analyzer.
func NewStatementAnalyzer() *StatementAnalyzer {
	return &StatementAnalyzer{parser: parser.New()}
}

// AnalyzeStatements analyzes multiple SQL statements and returns a PreflightResult.
func (a *StatementAnalyzer) AnalyzeStatements(statements []string, unsafeAllowed bool) *PreflightResult {
	return analyzeAll(a.AnalyzeStatement, statements, unsafeAllowed)
}

// AnalyzeStatement parses a single statement and reports its effects.
func (a *StatementAnalyzer) AnalyzeStatement(sql string) *StatementAnalysis {
	nodes, _, err := a.parser.Parse(sql, "", "")
	if err != nil {
		analysis := &StatementAnalysis{IsTransactionSafe: true, StatementType: statementUnparseable}
		if looksLikeDDL(sql) {
			analysis.IsTransactionSafe = false
			analysis.TxUnsafeReason = "DDL statement causes implicit commit"
		}
		return analysis
	}
	if len(nodes) == 0 {
		return &StatementAnalysis{IsTransactionSafe: true}
	}
	return classifyMySQL(nodes[0], sql)
}

func classifyMySQL(node ast.StmtNode, sql string) *StatementAnalysis {
	analysis := &StatementAnalysis{IsTransactionSafe: true}
	_, ddl := node.(ast.DDLNode)

	switch stmt := node.(type) {
	case *ast.CreateTableStmt:
		analysis.StatementType = "CREATE TABLE"
	case *ast.DropTableStmt:
		if stmt.IsView {
			analysis.StatementType = "DROP VIEW"
			break
		}
		analysis.StatementType = "DROP TABLE"
		applyEffect(analysis, mysqlEffect{destructive: "DROP TABLE will permanently delete the table and all its data"})
	case *ast.CreateViewStmt:
		analysis.StatementType = "CREATE VIEW"
	case *ast.CreateIndexStmt:
		analysis.StatementType = "CREATE INDEX"
		applyEffect(analysis, mysqlEffect{blocking: "CREATE INDEX may block writes while the index builds"})
	case *ast.DropIndexStmt:
		analysis.StatementType = "DROP INDEX"
	case *ast.AlterTableStmt:
		analysis.StatementType = "ALTER TABLE"
		for _, spec := range stmt.Specs {
			effect := alterClauseEffects[spec.Tp]
			if spec.Tp == ast.AlterTableAddConstraint && spec.Constraint != nil {
				effect = addConstraintEffects[spec.Constraint.Tp]
			}
			applyEffect(analysis, effect)
		}
	case *ast.TruncateTableStmt:
		analysis.StatementType = "TRUNCATE TABLE"
		applyEffect(analysis, mysqlEffect{
			destructive: "TRUNCATE TABLE will delete all rows from the table",
			blocking:    "TRUNCATE TABLE takes an exclusive lock on the table",
		})
	case *ast.DeleteStmt:
		analysis.StatementType = "DELETE"
		applyEffect(analysis, mysqlEffect{destructive: "DELETE will remove rows from the table"})
	default:
		n := 1
		if ddl {
			n = 2
		}
		analysis.StatementType = leadingWords(sql, n)
	}

	if ddl {
		analysis.IsTransactionSafe = false
		analysis.TxUnsafeReason = analysis.StatementType + " causes an implicit commit in MySQL"
	}
	return analysis
}

func applyEffect(analysis *StatementAnalysis, effect mysqlEffect) {
	if effect.destructive != "" {
		analysis.IsDestructive = true
		analysis.DestructiveReason = effect.destructive
	}
	if effect.blocking != "" {
		analysis.IsBlocking = true
		analysis.BlockingReasons = append(analysis.BlockingReasons, effect.blocking)
	}
}

func looksLikeDDL(sql string) bool {
	switch leadingWords(sql, 1) {
	case "CREATE", "DROP", "ALTER", "RENAME", "TRUNCATE":
		return true
	}
	return false
}

func leadingWords(sql string, n int) string {
	fields := strings.Fields(strings.ToUpper(sql))
	return strings.Join(fields[:min(n, len(fields))], " ")
}
