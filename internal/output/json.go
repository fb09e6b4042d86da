package output

import (
	"encoding/json"

	"dbal/internal/core"
	"dbal/internal/diff"
	"dbal/internal/migration"
)

type jsonFormatter struct{}

type diffSummary struct {
	CreatedTables    int `json:"createdTables"`
	AlteredTables    int `json:"alteredTables"`
	DroppedTables    int `json:"droppedTables"`
	CreatedSequences int `json:"createdSequences"`
	DroppedSequences int `json:"droppedSequences"`
	CreatedViews     int `json:"createdViews"`
	DroppedViews     int `json:"droppedViews"`
}

type columnChange struct {
	Name    string              `json:"name"`
	OldName string              `json:"oldName,omitempty"`
	Changes []*diff.FieldChange `json:"changes,omitempty"`
}

type tableChange struct {
	Name               string         `json:"name"`
	OldName            string         `json:"oldName,omitempty"`
	Warnings           []string       `json:"warnings,omitempty"`
	CreatedColumns     []string       `json:"createdColumns,omitempty"`
	AlteredColumns     []columnChange `json:"alteredColumns,omitempty"`
	DroppedColumns     []string       `json:"droppedColumns,omitempty"`
	CreatedPrimaryKey  []string       `json:"createdPrimaryKey,omitempty"`
	DroppedPrimaryKey  []string       `json:"droppedPrimaryKey,omitempty"`
	CreatedForeignKeys []string       `json:"createdForeignKeys,omitempty"`
	DroppedForeignKeys []string       `json:"droppedForeignKeys,omitempty"`
	CreatedIndexes     []string       `json:"createdIndexes,omitempty"`
	DroppedIndexes     []string       `json:"droppedIndexes,omitempty"`
	CreatedChecks      []string       `json:"createdChecks,omitempty"`
	DroppedChecks      []string       `json:"droppedChecks,omitempty"`
}

type diffPayload struct {
	Format           string           `json:"format"`
	OldSchema        string           `json:"oldSchema,omitempty"`
	NewSchema        string           `json:"newSchema,omitempty"`
	Summary          diffSummary      `json:"summary"`
	Warnings         []string         `json:"warnings,omitempty"`
	CreatedTables    []*core.Table    `json:"createdTables,omitempty"`
	AlteredTables    []tableChange    `json:"alteredTables,omitempty"`
	DroppedTables    []string         `json:"droppedTables,omitempty"`
	CreatedSequences []*core.Sequence `json:"createdSequences,omitempty"`
	DroppedSequences []string         `json:"droppedSequences,omitempty"`
	CreatedViews     []*core.View     `json:"createdViews,omitempty"`
	DroppedViews     []string         `json:"droppedViews,omitempty"`
}

type migrationSummary struct {
	BreakingChanges    int `json:"breakingChanges"`
	Unresolved         int `json:"unresolved"`
	Notes              int `json:"notes"`
	SQLStatements      int `json:"sqlStatements"`
	RollbackStatements int `json:"rollbackStatements"`
}

// migrationPayload is also the input format of the apply command, which
// reads the "format" and "sql" keys.
type migrationPayload struct {
	Format          string           `json:"format"`
	Summary         migrationSummary `json:"summary"`
	BreakingChanges []string         `json:"breakingChanges,omitempty"`
	Unresolved      []string         `json:"unresolved,omitempty"`
	Notes           []string         `json:"notes,omitempty"`
	SQL             []string         `json:"sql,omitempty"`
	Rollback        []string         `json:"rollback,omitempty"`
}

type Payload interface {
	diffPayload | migrationPayload
}

func (jsonFormatter) FormatDiff(d *diff.SchemaDiff) (string, error) {
	payload := diffPayload{Format: string(FormatJSON)}
	if d != nil {
		if d.Old != nil {
			payload.OldSchema = d.Old.Name
		}
		if d.New != nil {
			payload.NewSchema = d.New.Name
		}
		payload.Warnings = d.Warnings
		payload.CreatedTables = d.CreatedTables
		payload.DroppedTables = names(d.DroppedTables)
		payload.CreatedSequences = d.CreatedSequences
		payload.DroppedSequences = names(d.DroppedSequences)
		payload.CreatedViews = d.CreatedViews
		payload.DroppedViews = names(d.DroppedViews)
		for _, td := range d.AlteredTables {
			payload.AlteredTables = append(payload.AlteredTables, newTableChange(td))
		}
		payload.Summary = diffSummary{
			CreatedTables:    len(d.CreatedTables),
			AlteredTables:    len(d.AlteredTables),
			DroppedTables:    len(d.DroppedTables),
			CreatedSequences: len(d.CreatedSequences),
			DroppedSequences: len(d.DroppedSequences),
			CreatedViews:     len(d.CreatedViews),
			DroppedViews:     len(d.DroppedViews),
		}
	}
	return marshalJSON(payload)
}

func newTableChange(td *diff.TableDiff) tableChange {
	tc := tableChange{
		Name:               td.NewName(),
		Warnings:           td.Warnings,
		CreatedColumns:     names(td.CreatedColumns),
		DroppedColumns:     names(td.DroppedColumns),
		CreatedForeignKeys: names(td.CreatedForeignKeys),
		DroppedForeignKeys: names(td.DroppedForeignKeys),
		CreatedIndexes:     names(td.CreatedIndexes),
		DroppedIndexes:     names(td.DroppedIndexes),
		CreatedChecks:      names(td.CreatedChecks),
		DroppedChecks:      names(td.DroppedChecks),
	}
	if td.HasNameDifference() {
		tc.OldName = td.OldName()
	}
	if pk, ok := td.CreatedPrimaryKey(); ok {
		tc.CreatedPrimaryKey = pk.Columns
	}
	if pk, ok := td.DroppedPrimaryKey(); ok {
		tc.DroppedPrimaryKey = pk.Columns
	}
	for _, cd := range td.AlteredColumns {
		cc := columnChange{Name: cd.NewName(), Changes: cd.Changes}
		if cd.OldName() != cd.NewName() {
			cc.OldName = cd.OldName()
		}
		tc.AlteredColumns = append(tc.AlteredColumns, cc)
	}
	return tc
}

func names[T core.Named](items []T) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.GetName())
	}
	return out
}

func (jsonFormatter) FormatMigration(m *migration.Migration) (string, error) {
	payload := migrationPayload{Format: string(FormatJSON)}
	if m != nil {
		breaking := m.BreakingNotes()
		unresolved := m.UnresolvedNotes()
		notes := m.InfoNotes()
		sql := terminateAll(m.SQLStatements())
		rollback := terminateAll(m.RollbackStatements())

		payload.BreakingChanges = breaking
		payload.Unresolved = unresolved
		payload.Notes = notes
		payload.SQL = sql
		payload.Rollback = rollback
		payload.Summary = migrationSummary{
			BreakingChanges:    len(breaking),
			Unresolved:         len(unresolved),
			Notes:              len(notes),
			SQLStatements:      len(sql),
			RollbackStatements: len(rollback),
		}
	}
	return marshalJSON(payload)
}

func marshalJSON[T Payload](payload T) (string, error) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
