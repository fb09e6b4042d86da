package apply

import (
	"slices"
	"strings"
	"unicode"
)

// PostgresAnalyzer classifies PostgreSQL statements by their leading
// keywords. PostgreSQL runs almost all DDL inside transactions, so only a
// handful of statements break transactionality.
type PostgresAnalyzer struct{}

// NewPostgresAnalyzer creates a keyword-based analyzer for PostgreSQL.
func NewPostgresAnalyzer() *PostgresAnalyzer {
	return &PostgresAnalyzer{}
}

// AnalyzeStatements analyzes multiple SQL statements and returns a PreflightResult.
func (a *PostgresAnalyzer) AnalyzeStatements(statements []string, unsafeAllowed bool) *PreflightResult {
	return analyzeAll(a.AnalyzeStatement, statements, unsafeAllowed)
}

// AnalyzeStatement classifies a single statement.
func (a *PostgresAnalyzer) AnalyzeStatement(sql string) *StatementAnalysis {
	analysis := &StatementAnalysis{IsTransactionSafe: true}
	words := keywords(sql)
	if len(words) == 0 {
		return analysis
	}

	switch {
	case hasWords(words, "DROP", "TABLE"):
		analysis.StatementType = "DROP TABLE"
		analysis.IsDestructive = true
		analysis.DestructiveReason = "DROP TABLE will permanently delete the table and all its data"
	case hasWords(words, "DROP", "SCHEMA"), hasWords(words, "DROP", "DATABASE"):
		analysis.StatementType = "DROP " + words[1]
		analysis.IsDestructive = true
		analysis.DestructiveReason = "DROP " + words[1] + " will permanently delete every object it contains"
		if words[1] == "DATABASE" {
			analysis.IsTransactionSafe = false
			analysis.TxUnsafeReason = "DROP DATABASE cannot run inside a transaction block"
		}
	case hasWords(words, "DROP", "SEQUENCE"):
		analysis.StatementType = "DROP SEQUENCE"
		analysis.IsDestructive = true
		analysis.DestructiveReason = "DROP SEQUENCE discards the current sequence value"
	case hasWords(words, "DROP", "INDEX"):
		analysis.StatementType = "DROP INDEX"
		analysis.IsBlocking = true
		analysis.BlockingReasons = append(analysis.BlockingReasons, "DROP INDEX takes an ACCESS EXCLUSIVE lock on the table")
		concurrently(words, analysis, "DROP INDEX")
	case hasWords(words, "CREATE", "INDEX"), hasWords(words, "CREATE", "UNIQUE", "INDEX"):
		analysis.StatementType = "CREATE INDEX"
		if !slices.Contains(words, "CONCURRENTLY") {
			analysis.IsBlocking = true
			analysis.BlockingReasons = append(analysis.BlockingReasons, "CREATE INDEX blocks writes to the table until the index is built")
		}
		concurrently(words, analysis, "CREATE INDEX")
	case hasWords(words, "CREATE", "DATABASE"):
		analysis.StatementType = "CREATE DATABASE"
		analysis.IsTransactionSafe = false
		analysis.TxUnsafeReason = "CREATE DATABASE cannot run inside a transaction block"
	case hasWords(words, "ALTER", "TABLE"):
		analysis.StatementType = "ALTER TABLE"
		analyzePostgresAlterTable(words, analysis)
	case hasWords(words, "TRUNCATE"):
		analysis.StatementType = "TRUNCATE TABLE"
		analysis.IsDestructive = true
		analysis.DestructiveReason = "TRUNCATE TABLE will delete all rows from the table"
	case hasWords(words, "DELETE"):
		analysis.StatementType = "DELETE"
		analysis.IsDestructive = true
		analysis.DestructiveReason = "DELETE will remove rows from the table"
	case hasWords(words, "VACUUM"):
		analysis.StatementType = "VACUUM"
		analysis.IsTransactionSafe = false
		analysis.TxUnsafeReason = "VACUUM cannot run inside a transaction block"
	default:
		analysis.StatementType = strings.Join(words[:min(2, len(words))], " ")
	}
	return analysis
}

func concurrently(words []string, analysis *StatementAnalysis, statementType string) {
	if slices.Contains(words, "CONCURRENTLY") {
		analysis.IsTransactionSafe = false
		analysis.TxUnsafeReason = statementType + " CONCURRENTLY cannot run inside a transaction block"
	}
}

// analyzePostgresAlterTable inspects the actions after the table name.
// Quoted identifiers are already collapsed, so a dropped column shows up
// as DROP followed by an identifier or COLUMN.
func analyzePostgresAlterTable(words []string, analysis *StatementAnalysis) {
	for i := 2; i < len(words); i++ {
		next := ""
		if i+1 < len(words) {
			next = words[i+1]
		}
		switch words[i] {
		case "DROP":
			switch next {
			case "CONSTRAINT", "DEFAULT", "NOT", "IDENTITY", "EXPRESSION":
			default:
				analysis.IsDestructive = true
				analysis.DestructiveReason = "DROP COLUMN will permanently delete the column and its data"
			}
		case "TYPE":
			analysis.IsBlocking = true
			analysis.BlockingReasons = append(analysis.BlockingReasons, "changing a column type may rewrite the table under an ACCESS EXCLUSIVE lock")
		case "SET":
			if next == "NOT" {
				analysis.IsBlocking = true
				analysis.BlockingReasons = append(analysis.BlockingReasons, "SET NOT NULL scans the whole table")
			}
		case "FOREIGN", "CHECK":
			if next == "KEY" || words[i] == "CHECK" {
				analysis.IsBlocking = true
				analysis.BlockingReasons = append(analysis.BlockingReasons, "ADD CONSTRAINT validates existing rows while holding a lock")
			}
		case "PRIMARY":
			analysis.IsBlocking = true
			analysis.BlockingReasons = append(analysis.BlockingReasons, "ADD PRIMARY KEY builds a unique index while blocking writes")
		}
	}
}

// keywords returns the upper-cased words of sql. Quoted identifiers become
// the placeholder IDENT and string literals LITERAL so their contents never
// match a keyword.
func keywords(sql string) []string {
	var (
		words []string
		sb    strings.Builder
	)
	flush := func() {
		if sb.Len() > 0 {
			words = append(words, strings.ToUpper(sb.String()))
			sb.Reset()
		}
	}

	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' || r == '\'':
			flush()
			for i++; i < len(runes); i++ {
				if runes[i] == r {
					if i+1 < len(runes) && runes[i+1] == r {
						i++
						continue
					}
					break
				}
			}
			if r == '"' {
				words = append(words, "IDENT")
			} else {
				words = append(words, "LITERAL")
			}
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			flush()
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			sb.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return words
}

func hasWords(words []string, prefix ...string) bool {
	if len(words) < len(prefix) {
		return false
	}
	for i, w := range prefix {
		if words[i] != w {
			return false
		}
	}
	return true
}
