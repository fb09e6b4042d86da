package apply

import (
	"encoding/json"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"

	"dbal/internal/dialect"
)

// jsonMigration is the subset of the JSON migration output Apply reads.
type jsonMigration struct {
	Format string   `json:"format"`
	SQL    []string `json:"sql"`
}

// ParseStatements extracts executable statements from a migration file. It
// accepts the JSON migration format and plain SQL scripts.
func ParseStatements(content string, platform dialect.Type) []string {
	content = strings.TrimSpace(content)

	var migration jsonMigration
	if err := json.Unmarshal([]byte(content), &migration); err == nil && migration.Format == "json" {
		var statements []string
		for _, stmt := range migration.SQL {
			if stmt = trimStatement(stmt); stmt != "" {
				statements = append(statements, stmt)
			}
		}
		return statements
	}

	if platform == dialect.MySQL || platform == "" {
		if statements := splitWithParser(content); len(statements) > 0 {
			return statements
		}
	}
	return splitStatementsBySemicolon(content)
}

// splitWithParser splits a MySQL script with the TiDB parser, keeping each
// statement's original text.
func splitWithParser(content string) []string {
	stmtNodes, _, err := parser.New().Parse(content, "", "")
	if err != nil {
		return nil
	}
	statements := make([]string, 0, len(stmtNodes))
	for _, node := range stmtNodes {
		if node == nil {
			continue
		}
		if stmt := trimStatement(node.Text()); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// splitStatementsBySemicolon splits on semicolons outside quotes, dollar
// quotes and comments. Comment-only lines are dropped.
func splitStatementsBySemicolon(content string) []string {
	var (
		statements []string
		current    strings.Builder
		quote      byte
		dollarTag  string
	)
	emit := func() {
		if stmt := trimStatement(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case dollarTag != "":
			if strings.HasPrefix(content[i:], dollarTag) {
				current.WriteString(dollarTag)
				i += len(dollarTag) - 1
				dollarTag = ""
				continue
			}
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '$':
			if tag, ok := dollarQuoteTag(content[i:]); ok {
				dollarTag = tag
				current.WriteString(tag)
				i += len(tag) - 1
				continue
			}
		case c == '-' && strings.HasPrefix(content[i:], "--"):
			for i < len(content) && content[i] != '\n' {
				i++
			}
			current.WriteByte('\n')
			continue
		case c == ';':
			emit()
			continue
		}
		current.WriteByte(c)
	}
	emit()
	return statements
}

// dollarQuoteTag returns the opening tag of a PostgreSQL dollar-quoted
// string such as $$ or $body$.
func dollarQuoteTag(s string) (string, bool) {
	end := strings.IndexByte(s[1:], '$')
	if end < 0 {
		return "", false
	}
	tag := s[:end+2]
	for _, r := range tag[1 : len(tag)-1] {
		if r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", false
		}
	}
	return tag, true
}

func trimStatement(stmt string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
}
