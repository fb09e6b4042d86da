package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbal/internal/core"
)

func TestBreakingChangeAnalyzer(t *testing.T) {
	t.Run("drops and renames", func(t *testing.T) {
		oldS := core.NewSchema("app")
		newS := core.NewSchema("app")

		require.NoError(t, oldS.AddTable(buildTable(t, "sessions", &core.Column{Name: "id", Type: core.TypeInteger})))
		require.NoError(t, oldS.AddTable(buildTable(t, "users",
			&core.Column{Name: "id", Type: core.TypeInteger},
			&core.Column{Name: "name", Type: core.TypeString, Length: 50},
			&core.Column{Name: "legacy", Type: core.TypeBoolean},
		)))
		require.NoError(t, newS.AddTable(buildTable(t, "users",
			&core.Column{Name: "id", Type: core.TypeInteger},
			&core.Column{Name: "full_name", Type: core.TypeString, Length: 50},
			&core.Column{Name: "email", Type: core.TypeString, Length: 255, NotNull: true},
		)))

		changes := NewBreakingChangeAnalyzer().Analyze(CompareSchemas(oldS, newS))

		assert.True(t, hasBC(changes, SeverityCritical, "sessions", "sessions", "dropped"))
		assert.True(t, hasBC(changes, SeverityCritical, "users", "legacy", "dropped"))
		assert.True(t, hasBC(changes, SeverityBreaking, "users", "name->full_name", "rename"))
		assert.True(t, hasBC(changes, SeverityBreaking, "users", "email", "NOT NULL column without default"))
	})

	t.Run("column conversions", func(t *testing.T) {
		oldT := buildTable(t, "t",
			&core.Column{Name: "widen", Type: core.TypeInteger},
			&core.Column{Name: "narrow", Type: core.TypeBigInt},
			&core.Column{Name: "incompat", Type: core.TypeInteger},
			&core.Column{Name: "short", Type: core.TypeString, Length: 100},
			&core.Column{Name: "price", Type: core.TypeDecimal, Precision: 10, Scale: 4},
			&core.Column{Name: "flag", Type: core.TypeBoolean},
		)
		newT := buildTable(t, "t",
			&core.Column{Name: "widen", Type: core.TypeBigInt},
			&core.Column{Name: "narrow", Type: core.TypeInteger},
			&core.Column{Name: "incompat", Type: core.TypeString, Length: 10},
			&core.Column{Name: "short", Type: core.TypeString, Length: 20},
			&core.Column{Name: "price", Type: core.TypeDecimal, Precision: 10, Scale: 2},
			&core.Column{Name: "flag", Type: core.TypeBoolean, NotNull: true},
		)

		d := &SchemaDiff{AlteredTables: []*TableDiff{CompareTables(oldT, newT)}}
		changes := NewBreakingChangeAnalyzer().Analyze(d)

		assert.True(t, hasBC(changes, SeverityInfo, "t", "widen", "type changes"))
		assert.True(t, hasBC(changes, SeverityCritical, "t", "narrow", "type changes"))
		assert.True(t, hasBC(changes, SeverityCritical, "t", "incompat", "type changes"))
		assert.True(t, hasBC(changes, SeverityBreaking, "t", "short", "length shrinks"))
		assert.True(t, hasBC(changes, SeverityBreaking, "t", "price", "precision shrinks"))
		assert.True(t, hasBC(changes, SeverityBreaking, "t", "flag", "NOT NULL"))
	})

	t.Run("nil diff", func(t *testing.T) {
		assert.Nil(t, NewBreakingChangeAnalyzer().Analyze(nil))
	})
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "INFO", SeverityInfo.String())
	assert.Equal(t, "CRITICAL", SeverityCritical.String())
	assert.Equal(t, "UNKNOWN", ChangeSeverity(42).String())
}

func hasBC(changes []BreakingChange, sev ChangeSeverity, table, object, descSubstr string) bool {
	for _, c := range changes {
		if c.Severity != sev || c.Table != table || c.Object != object {
			continue
		}
		if strings.Contains(c.Description, descSubstr) {
			return true
		}
	}
	return false
}
