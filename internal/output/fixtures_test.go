package output

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dbal/internal/core"
	"dbal/internal/diff"
	"dbal/internal/migration"
)

func addTable(t *testing.T, s *core.Schema, name string, cols ...*core.Column) *core.Table {
	t.Helper()
	tbl := core.NewTable(name)
	for _, c := range cols {
		require.NoError(t, tbl.AddColumn(c))
	}
	require.NoError(t, tbl.SetPrimaryKey(&core.PrimaryKey{Columns: []string{cols[0].Name}}))
	require.NoError(t, s.AddTable(tbl))
	return tbl
}

// sampleDiff creates posts, drops legacy, widens users.name and adds
// users.email with a unique index.
func sampleDiff(t *testing.T) *diff.SchemaDiff {
	t.Helper()
	oldS := core.NewSchema("app")
	addTable(t, oldS, "users",
		&core.Column{Name: "id", Type: core.TypeInteger, NotNull: true},
		&core.Column{Name: "name", Type: core.TypeString, Length: 100},
	)
	addTable(t, oldS, "legacy", &core.Column{Name: "id", Type: core.TypeInteger, NotNull: true})

	newS := core.NewSchema("app")
	users := addTable(t, newS, "users",
		&core.Column{Name: "id", Type: core.TypeInteger, NotNull: true},
		&core.Column{Name: "name", Type: core.TypeString, Length: 200},
		&core.Column{Name: "email", Type: core.TypeString, Length: 255, NotNull: true},
	)
	require.NoError(t, users.AddIndex(&core.Index{Name: "idx_users_email", Columns: []string{"email"}, Unique: true}))
	addTable(t, newS, "posts", &core.Column{Name: "id", Type: core.TypeBigInt, NotNull: true})

	d := diff.CompareSchemas(oldS, newS)
	require.True(t, d.HasDifference())
	return d
}

func sampleMigration() *migration.Migration {
	m := &migration.Migration{}
	m.AddStatement("posts", "CREATE TABLE posts (id BIGINT NOT NULL)")
	m.Operations = append(m.Operations, migration.Operation{
		Kind:  migration.KindSQL,
		SQL:   "DROP TABLE legacy",
		Table: "legacy",
		Risk:  migration.RiskCritical,
	})
	m.AddBreaking("legacy", "Table legacy will be dropped", migration.RiskCritical)
	m.AddUnresolved("users", "column type change needs review")
	m.AddNote("line one\nline two")
	m.AddRollback("CREATE TABLE legacy (\n  id INT NOT NULL\n)", "DROP TABLE posts")
	return m
}
