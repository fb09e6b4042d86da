package apply

import (
	"fmt"

	"dbal/internal/dialect"
)

// PreflightResult contains a list of warnings, errors, and transactionality info about migration.
type PreflightResult struct {
	Warnings        []Warning
	Errors          []string
	IsTransactional bool
	NonTxReasons    []string
}

// HasDestructiveOperations reports whether any warning is at danger level.
func (r *PreflightResult) HasDestructiveOperations() bool {
	if r == nil {
		return false
	}
	for _, w := range r.Warnings {
		if w.Level == WarnDanger {
			return true
		}
	}
	return false
}

// Warning contains a Level of a warning, message, and actual SQL from migration.
type Warning struct {
	Level   WarningLevel
	Message string
	SQL     string
}

// WarningLevel grades how dangerous a statement is.
type WarningLevel string

const (
	WarnCaution WarningLevel = "CAUTION"
	WarnDanger  WarningLevel = "DANGER"
)

// StatementAnalysis contains the results of analyzing a SQL statement.
type StatementAnalysis struct {
	IsBlocking        bool
	BlockingReasons   []string
	IsDestructive     bool
	DestructiveReason string
	IsTransactionSafe bool
	TxUnsafeReason    string
	StatementType     string
}

// Analyzer inspects statements before they run.
type Analyzer interface {
	AnalyzeStatement(sql string) *StatementAnalysis
	AnalyzeStatements(statements []string, unsafeAllowed bool) *PreflightResult
}

// NewAnalyzer returns the analyzer for the platform. MySQL statements are
// parsed with the TiDB parser; PostgreSQL statements are classified by
// keywords.
func NewAnalyzer(t dialect.Type) Analyzer {
	if t == dialect.PostgreSQL {
		return NewPostgresAnalyzer()
	}
	return NewStatementAnalyzer()
}

// analyzeAll folds per-statement analyses into a preflight result.
func analyzeAll(analyze func(string) *StatementAnalysis, statements []string, unsafeAllowed bool) *PreflightResult {
	result := &PreflightResult{IsTransactional: true}

	for _, stmt := range statements {
		analysis := analyze(stmt)
		if analysis == nil {
			continue
		}
		if analysis.StatementType == statementUnparseable {
			result.Errors = append(result.Errors, fmt.Sprintf("could not parse statement: %s", truncateSQL(stmt)))
		}
		addBlockingWarnings(result, analysis, stmt)
		addDestructiveWarning(result, analysis, stmt, unsafeAllowed)
		addTransactionSafety(result, analysis, stmt)
	}

	return result
}

const statementUnparseable = "UNPARSEABLE"

func addBlockingWarnings(result *PreflightResult, analysis *StatementAnalysis, stmt string) {
	if !analysis.IsBlocking {
		return
	}
	for _, reason := range analysis.BlockingReasons {
		result.Warnings = append(result.Warnings, Warning{
			Level:   WarnCaution,
			Message: fmt.Sprintf("Potentially blocking DDL: %s", reason),
			SQL:     stmt,
		})
	}
}

func addDestructiveWarning(result *PreflightResult, analysis *StatementAnalysis, stmt string, unsafeAllowed bool) {
	if !analysis.IsDestructive {
		return
	}
	msg := analysis.DestructiveReason
	if !unsafeAllowed {
		msg = fmt.Sprintf("%s (requires --unsafe flag)", msg)
	}
	result.Warnings = append(result.Warnings, Warning{
		Level:   WarnDanger,
		Message: msg,
		SQL:     stmt,
	})
}

func addTransactionSafety(result *PreflightResult, analysis *StatementAnalysis, stmt string) {
	if analysis.IsTransactionSafe {
		return
	}
	result.IsTransactional = false
	reason := analysis.TxUnsafeReason
	if reason == "" {
		reason = "DDL statement causes implicit commit"
	}
	result.NonTxReasons = append(result.NonTxReasons, fmt.Sprintf("%s: %s", reason, truncateSQL(stmt)))
}
