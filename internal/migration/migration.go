// Package migration plans schema-level migrations. A Planner turns a
// diff.SchemaDiff into a Migration: ordered SQL for one platform, the reverse
// statements for a rollback, and notes about breaking or unresolved changes.
package migration

import (
	"fmt"
	"os"
	"strings"
)

// Kind identifies what an operation carries.
type Kind string

const (
	KindSQL        Kind = "SQL"
	KindNote       Kind = "NOTE"
	KindBreaking   Kind = "BREAKING"
	KindUnresolved Kind = "UNRESOLVED"
)

// Risk is the risk level attached to an operation.
type Risk string

const (
	RiskInfo     Risk = "INFO"
	RiskWarning  Risk = "WARNING"
	RiskBreaking Risk = "BREAKING"
	RiskCritical Risk = "CRITICAL"
)

// Operation is a single step of a migration. SQL operations carry a
// statement; the other kinds carry a message.
type Operation struct {
	Kind    Kind   `json:"kind"`
	SQL     string `json:"sql,omitempty"`
	Message string `json:"message,omitempty"`
	Table   string `json:"table,omitempty"`
	Risk    Risk   `json:"risk,omitempty"`
}

// Migration holds the planned operations and the statements that undo them.
type Migration struct {
	Operations []Operation `json:"operations"`
	Rollback   []string    `json:"rollback,omitempty"`
}

// IsEmpty reports whether the migration has no SQL to run.
func (m *Migration) IsEmpty() bool { return len(m.SQLStatements()) == 0 }

// AddStatement appends SQL for table. Blank statements are ignored.
func (m *Migration) AddStatement(table, stmt string) {
	if stmt = strings.TrimSpace(stmt); stmt == "" {
		return
	}
	m.Operations = append(m.Operations, Operation{Kind: KindSQL, SQL: stmt, Table: table})
}

// AddStatements appends every statement for table.
func (m *Migration) AddStatements(table string, stmts []string) {
	for _, s := range stmts {
		m.AddStatement(table, s)
	}
}

// AddRollback appends statements to the rollback script.
func (m *Migration) AddRollback(stmts ...string) {
	for _, s := range stmts {
		if s = strings.TrimSpace(s); s != "" {
			m.Rollback = append(m.Rollback, s)
		}
	}
}

func (m *Migration) AddBreaking(table, msg string, risk Risk) {
	if msg = strings.TrimSpace(msg); msg == "" {
		return
	}
	m.Operations = append(m.Operations, Operation{Kind: KindBreaking, Message: msg, Table: table, Risk: risk})
}

func (m *Migration) AddNote(msg string) {
	if msg = strings.TrimSpace(msg); msg == "" {
		return
	}
	m.Operations = append(m.Operations, Operation{Kind: KindNote, Message: msg, Risk: RiskInfo})
}

func (m *Migration) AddUnresolved(table, msg string) {
	if msg = strings.TrimSpace(msg); msg == "" {
		return
	}
	m.Operations = append(m.Operations, Operation{Kind: KindUnresolved, Message: msg, Table: table, Risk: RiskWarning})
}

// SQLStatements returns the statements to execute, in order.
func (m *Migration) SQLStatements() []string {
	return m.filterByKind(KindSQL, func(op Operation) string { return op.SQL })
}

// RollbackStatements returns the statements that revert the migration.
func (m *Migration) RollbackStatements() []string {
	return append([]string(nil), m.Rollback...)
}

// BreakingNotes returns messages about changes that may lose data or break clients.
func (m *Migration) BreakingNotes() []string {
	return m.filterByKind(KindBreaking, func(op Operation) string { return op.Message })
}

// UnresolvedNotes returns messages about changes the plan could not express.
func (m *Migration) UnresolvedNotes() []string {
	return m.filterByKind(KindUnresolved, func(op Operation) string { return op.Message })
}

// InfoNotes returns informational messages.
func (m *Migration) InfoNotes() []string {
	return m.filterByKind(KindNote, func(op Operation) string { return op.Message })
}

// Dedupe removes repeated notes and blank operations. SQL statements are
// never deduplicated since repeating a statement can be intentional.
func (m *Migration) Dedupe() {
	if len(m.Operations) == 0 {
		return
	}
	seen := make(map[Kind]map[string]struct{}, 3)
	out := make([]Operation, 0, len(m.Operations))
	for _, op := range m.Operations {
		op.SQL = strings.TrimSpace(op.SQL)
		op.Message = strings.TrimSpace(op.Message)

		if op.Kind == KindSQL {
			if op.SQL != "" {
				out = append(out, op)
			}
			continue
		}
		if op.Message == "" {
			continue
		}
		if seen[op.Kind] == nil {
			seen[op.Kind] = make(map[string]struct{})
		}
		if _, dup := seen[op.Kind][op.Message]; dup {
			continue
		}
		seen[op.Kind][op.Message] = struct{}{}
		out = append(out, op)
	}
	m.Operations = out
}

// SaveRollbackToFile writes the rollback script to path, one statement per line.
func (m *Migration) SaveRollbackToFile(path string) error {
	var sb strings.Builder
	for _, stmt := range m.Rollback {
		sb.WriteString(stmt)
		sb.WriteString(";\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write rollback file: %w", err)
	}
	return nil
}

func (m *Migration) filterByKind(kind Kind, fieldFn func(Operation) string) []string {
	out := make([]string, 0, len(m.Operations)/4+1)
	for _, op := range m.Operations {
		if op.Kind != kind {
			continue
		}
		if val := strings.TrimSpace(fieldFn(op)); val != "" {
			out = append(out, val)
		}
	}
	return out
}
