package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbal/internal/core"
)

func strPtr(s string) *string { return &s }

func buildTable(t *testing.T, name string, cols ...*core.Column) *core.Table {
	t.Helper()
	tbl := core.NewTable(name)
	for _, c := range cols {
		require.NoError(t, tbl.AddColumn(c))
	}
	return tbl
}

func columnNames(cols []*core.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func TestCompareColumns(t *testing.T) {
	base := core.Column{Name: "title", Type: core.TypeString, Length: 50}

	tests := []struct {
		name     string
		mutate   func(c *core.Column)
		expected []string
	}{
		{name: "identical", mutate: func(c *core.Column) {}, expected: []string{}},
		{name: "name only", mutate: func(c *core.Column) { c.Name = "headline" }, expected: []string{PropName}},
		{name: "length", mutate: func(c *core.Column) { c.Length = 100 }, expected: []string{PropLength}},
		{name: "not null", mutate: func(c *core.Column) { c.NotNull = true }, expected: []string{PropNotNull}},
		{name: "default set", mutate: func(c *core.Column) { c.Default = strPtr("x") }, expected: []string{PropDefault}},
		{name: "empty default differs from unset", mutate: func(c *core.Column) { c.Default = strPtr("") }, expected: []string{PropDefault}},
		{name: "comment", mutate: func(c *core.Column) { c.Comment = "shown in lists" }, expected: []string{PropComment}},
		{name: "fixed", mutate: func(c *core.Column) { c.Fixed = true }, expected: []string{PropFixed}},
		{
			name: "type and length",
			mutate: func(c *core.Column) {
				c.Type = core.TypeText
				c.Length = 0
			},
			expected: []string{PropType, PropLength},
		},
		{
			name: "rename with change",
			mutate: func(c *core.Column) {
				c.Name = "headline"
				c.NotNull = true
			},
			expected: []string{PropName, PropNotNull},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldC := base
			newC := base
			tt.mutate(&newC)

			cd := CompareColumns(&oldC, &newC)
			assert.Equal(t, tt.expected, cd.ChangedProperties())
			assert.Equal(t, len(tt.expected) > 0, cd.HasDifference())
			assert.Equal(t, cd.HasChanged(PropName), cd.HasNameDifference())
			assert.Equal(t, len(tt.expected) == 1 && tt.expected[0] == PropName, cd.HasNameDifferenceOnly())
		})
	}
}

func TestCompareColumnsDefaultsAreExact(t *testing.T) {
	a := &core.Column{Name: "n", Type: core.TypeInteger, Default: strPtr("0")}
	b := &core.Column{Name: "n", Type: core.TypeInteger, Default: strPtr("0")}
	assert.False(t, CompareColumns(a, b).HasDifference())

	b.Default = strPtr("'0'")
	assert.True(t, CompareColumns(a, b).HasChanged(PropDefault))

	b.Default = strPtr("NULL")
	a.Default = nil
	assert.True(t, CompareColumns(a, b).HasChanged(PropDefault), "explicit NULL differs from unset")
}

func TestCompareTablesIdentity(t *testing.T) {
	tbl := buildTable(t, "users",
		&core.Column{Name: "id", Type: core.TypeInteger, NotNull: true},
		&core.Column{Name: "email", Type: core.TypeString, Length: 255},
	)
	require.NoError(t, tbl.SetPrimaryKey(&core.PrimaryKey{Columns: []string{"id"}}))
	require.NoError(t, tbl.AddIndex(&core.Index{Name: "idx_email", Columns: []string{"email"}}))
	require.NoError(t, tbl.AddCheck(&core.Check{Name: "chk_id", Definition: "id > 0"}))

	td := CompareTables(tbl, tbl)
	require.NotNil(t, td)
	assert.False(t, td.HasDifference())
	assert.Empty(t, td.CreatedColumns)
	assert.Empty(t, td.AlteredColumns)
	assert.Empty(t, td.DroppedColumns)
	assert.Empty(t, td.CreatedIndexes)
	assert.Empty(t, td.DroppedIndexes)
	assert.Empty(t, td.CreatedChecks)
	_, ok := td.CreatedPrimaryKey()
	assert.False(t, ok)
}

func TestCompareTablesRenameDetection(t *testing.T) {
	t.Run("single rename", func(t *testing.T) {
		oldT := buildTable(t, "t", &core.Column{Name: "a", Type: core.TypeString, Length: 50})
		newT := buildTable(t, "t", &core.Column{Name: "b", Type: core.TypeString, Length: 50})

		td := CompareTables(oldT, newT)
		assert.Empty(t, td.CreatedColumns)
		assert.Empty(t, td.DroppedColumns)
		require.Len(t, td.AlteredColumns, 1)
		assert.Equal(t, "a", td.AlteredColumns[0].OldName())
		assert.Equal(t, "b", td.AlteredColumns[0].NewName())
		assert.True(t, td.AlteredColumns[0].HasNameDifferenceOnly())
		assert.Len(t, td.RenamedColumns(), 1)
	})

	t.Run("structural difference prevents pairing", func(t *testing.T) {
		oldT := buildTable(t, "t", &core.Column{Name: "a", Type: core.TypeString, Length: 50})
		newT := buildTable(t, "t", &core.Column{Name: "b", Type: core.TypeString, Length: 60})

		td := CompareTables(oldT, newT)
		assert.Equal(t, []string{"b"}, columnNames(td.CreatedColumns))
		assert.Equal(t, []string{"a"}, columnNames(td.DroppedColumns))
		assert.Empty(t, td.AlteredColumns)
	})

	t.Run("first match wins", func(t *testing.T) {
		oldT := buildTable(t, "t",
			&core.Column{Name: "x1", Type: core.TypeInteger},
			&core.Column{Name: "x2", Type: core.TypeInteger},
		)
		newT := buildTable(t, "t",
			&core.Column{Name: "y1", Type: core.TypeInteger},
			&core.Column{Name: "y2", Type: core.TypeInteger},
			&core.Column{Name: "y3", Type: core.TypeInteger},
		)

		td := CompareTables(oldT, newT)
		require.Len(t, td.AlteredColumns, 2)
		assert.Equal(t, "x1", td.AlteredColumns[0].OldName())
		assert.Equal(t, "y1", td.AlteredColumns[0].NewName())
		assert.Equal(t, "x2", td.AlteredColumns[1].OldName())
		assert.Equal(t, "y2", td.AlteredColumns[1].NewName())
		assert.Equal(t, []string{"y3"}, columnNames(td.CreatedColumns))
		assert.Empty(t, td.DroppedColumns)
	})

	t.Run("disabled", func(t *testing.T) {
		oldT := buildTable(t, "t", &core.Column{Name: "a", Type: core.TypeText})
		newT := buildTable(t, "t", &core.Column{Name: "b", Type: core.TypeText})

		td := NewComparator(Options{}).CompareTables(oldT, newT)
		assert.Len(t, td.CreatedColumns, 1)
		assert.Len(t, td.DroppedColumns, 1)
		assert.Empty(t, td.AlteredColumns)
	})
}

func TestCompareTablesTypeChange(t *testing.T) {
	oldT := buildTable(t, "t", &core.Column{Name: "foo", Type: core.TypeText})
	newT := buildTable(t, "t", &core.Column{Name: "foo", Type: core.TypeString, Length: 100})

	td := CompareTables(oldT, newT)
	require.Len(t, td.AlteredColumns, 1)
	cd := td.AlteredColumns[0]
	assert.Equal(t, "foo", cd.NewName())
	assert.True(t, cd.HasChanged(PropType))
	assert.True(t, cd.HasChanged(PropLength))
	assert.False(t, cd.HasNameDifference())
}

func TestCompareTablesPrimaryKey(t *testing.T) {
	cols := func() []*core.Column {
		return []*core.Column{
			{Name: "a", Type: core.TypeInteger},
			{Name: "b", Type: core.TypeInteger},
		}
	}

	tests := []struct {
		name        string
		oldPK       *core.PrimaryKey
		newPK       *core.PrimaryKey
		wantCreated bool
		wantDropped bool
	}{
		{name: "unchanged", oldPK: &core.PrimaryKey{Columns: []string{"a"}}, newPK: &core.PrimaryKey{Columns: []string{"a"}}},
		{name: "added", newPK: &core.PrimaryKey{Columns: []string{"a"}}, wantCreated: true},
		{name: "removed", oldPK: &core.PrimaryKey{Columns: []string{"a"}}, wantDropped: true},
		{name: "column order", oldPK: &core.PrimaryKey{Columns: []string{"a", "b"}}, newPK: &core.PrimaryKey{Columns: []string{"b", "a"}}, wantCreated: true, wantDropped: true},
		{name: "renamed", oldPK: &core.PrimaryKey{Name: "pk1", Columns: []string{"a"}}, newPK: &core.PrimaryKey{Name: "pk2", Columns: []string{"a"}}, wantCreated: true, wantDropped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldT := buildTable(t, "t", cols()...)
			newT := buildTable(t, "t", cols()...)
			require.NoError(t, oldT.SetPrimaryKey(tt.oldPK))
			require.NoError(t, newT.SetPrimaryKey(tt.newPK))

			td := CompareTables(oldT, newT)
			created, okC := td.CreatedPrimaryKey()
			dropped, okD := td.DroppedPrimaryKey()
			assert.Equal(t, tt.wantCreated, okC)
			assert.Equal(t, tt.wantDropped, okD)
			if okC {
				assert.Same(t, tt.newPK, created)
			}
			if okD {
				assert.Same(t, tt.oldPK, dropped)
			}
			assert.Equal(t, tt.wantCreated || tt.wantDropped, td.HasDifference())
		})
	}
}

func TestCompareTablesKeysIndexesChecks(t *testing.T) {
	newTable := func(t *testing.T, onDelete core.ReferentialAction, idxUnique bool, check string) *core.Table {
		tbl := buildTable(t, "orders",
			&core.Column{Name: "id", Type: core.TypeInteger},
			&core.Column{Name: "user_id", Type: core.TypeInteger},
			&core.Column{Name: "total", Type: core.TypeDecimal, Precision: 10, Scale: 2},
		)
		require.NoError(t, tbl.SetPrimaryKey(&core.PrimaryKey{Columns: []string{"id"}}))
		require.NoError(t, tbl.AddForeignKey(&core.ForeignKey{Name: "fk_user", Columns: []string{"user_id"}, ForeignTable: "users", ForeignColumns: []string{"id"}, OnDelete: onDelete}))
		require.NoError(t, tbl.AddIndex(&core.Index{Name: "PRIMARY", Columns: []string{"id"}, Unique: true}))
		require.NoError(t, tbl.AddIndex(&core.Index{Name: "idx_total", Columns: []string{"total"}, Unique: idxUnique}))
		require.NoError(t, tbl.AddCheck(&core.Check{Name: "chk_total", Definition: check}))
		return tbl
	}

	oldT := newTable(t, core.ActionCascade, false, "total >= 0")
	newT := newTable(t, core.ActionSetNull, true, "total > 0")

	td := CompareTables(oldT, newT)
	require.Len(t, td.CreatedForeignKeys, 1)
	require.Len(t, td.DroppedForeignKeys, 1)
	assert.Equal(t, core.ActionSetNull, td.CreatedForeignKeys[0].OnDelete)
	assert.Equal(t, core.ActionCascade, td.DroppedForeignKeys[0].OnDelete)

	require.Len(t, td.CreatedIndexes, 1, "backing index of the primary key is not compared")
	assert.Equal(t, "idx_total", td.CreatedIndexes[0].Name)
	require.Len(t, td.DroppedIndexes, 1)

	require.Len(t, td.CreatedChecks, 1)
	require.Len(t, td.DroppedChecks, 1)
	assert.Equal(t, "total > 0", td.CreatedChecks[0].Definition)
}

func TestCompareTablesUniqueIndexOverForeignKey(t *testing.T) {
	build := func(t *testing.T, withUnique bool) *core.Table {
		tbl := buildTable(t, "profiles",
			&core.Column{Name: "id", Type: core.TypeInteger},
			&core.Column{Name: "user_id", Type: core.TypeInteger},
		)
		require.NoError(t, tbl.AddForeignKey(&core.ForeignKey{Name: "fk_user", Columns: []string{"user_id"}, ForeignTable: "users", ForeignColumns: []string{"id"}}))
		if withUnique {
			require.NoError(t, tbl.AddIndex(&core.Index{Name: "uniq_user", Columns: []string{"user_id"}, Unique: true}))
		}
		return tbl
	}

	td := CompareTables(build(t, false), build(t, true))
	assert.True(t, td.HasDifference())
	require.Len(t, td.CreatedIndexes, 1)
	assert.Equal(t, "uniq_user", td.CreatedIndexes[0].Name)
	assert.Empty(t, td.DroppedIndexes)
}

func TestTableDiffNameQueries(t *testing.T) {
	oldT := buildTable(t, "people", &core.Column{Name: "id", Type: core.TypeInteger})
	newT := buildTable(t, "persons", &core.Column{Name: "id", Type: core.TypeInteger})

	td := CompareTables(oldT, newT)
	assert.True(t, td.HasDifference())
	assert.True(t, td.HasNameDifference())
	assert.True(t, td.HasNameDifferenceOnly())
	assert.Equal(t, "people", td.OldName())
	assert.Equal(t, "persons", td.NewName())

	require.NoError(t, newT.AddColumn(&core.Column{Name: "age", Type: core.TypeSmallInt}))
	td = CompareTables(oldT, newT)
	assert.True(t, td.HasNameDifference())
	assert.False(t, td.HasNameDifferenceOnly())
}

func TestCompareSchemas(t *testing.T) {
	oldS := core.NewSchema("app")
	newS := core.NewSchema("app")

	keep := buildTable(t, "keep", &core.Column{Name: "id", Type: core.TypeInteger})
	require.NoError(t, oldS.AddTable(keep))
	require.NoError(t, newS.AddTable(keep))

	require.NoError(t, oldS.AddTable(buildTable(t, "legacy", &core.Column{Name: "id", Type: core.TypeInteger})))
	require.NoError(t, oldS.AddTable(buildTable(t, "users", &core.Column{Name: "id", Type: core.TypeInteger})))

	require.NoError(t, newS.AddTable(buildTable(t, "users",
		&core.Column{Name: "id", Type: core.TypeInteger},
		&core.Column{Name: "email", Type: core.TypeString, Length: 255},
	)))
	require.NoError(t, newS.AddTable(buildTable(t, "audit", &core.Column{Name: "id", Type: core.TypeBigInt})))

	require.NoError(t, oldS.AddSequence(core.DefaultSequence("order_seq")))
	seq, err := core.NewSequence("order_seq", 1000, 1)
	require.NoError(t, err)
	require.NoError(t, newS.AddSequence(seq))
	require.NoError(t, newS.AddSequence(core.DefaultSequence("invoice_seq")))

	require.NoError(t, oldS.AddView(&core.View{Name: "v_users", Definition: "SELECT id FROM users"}))
	require.NoError(t, newS.AddView(&core.View{Name: "v_users", Definition: "SELECT id FROM users "}))

	d := CompareSchemas(oldS, newS)
	assert.True(t, d.HasDifference())
	assert.False(t, d.HasNameDifference())
	assert.False(t, d.HasNameDifferenceOnly())

	assert.Equal(t, []string{"audit"}, tableNames(d.CreatedTables))
	assert.Equal(t, []string{"legacy"}, tableNames(d.DroppedTables))
	require.Len(t, d.AlteredTables, 1)
	assert.Equal(t, "users", d.AlteredTables[0].NewName())

	require.Len(t, d.CreatedSequences, 2)
	assert.Equal(t, "order_seq", d.CreatedSequences[0].Name)
	assert.Equal(t, "invoice_seq", d.CreatedSequences[1].Name)
	require.Len(t, d.DroppedSequences, 1)
	assert.Equal(t, 1, d.DroppedSequences[0].InitialValue)

	assert.Empty(t, d.CreatedViews, "trailing whitespace is not a change")
	assert.Empty(t, d.DroppedViews)
}

func TestCompareSchemasNameOnly(t *testing.T) {
	oldS := core.NewSchema("app")
	newS := core.NewSchema("app_v2")

	d := CompareSchemas(oldS, newS)
	assert.True(t, d.HasDifference())
	assert.True(t, d.HasNameDifferenceOnly())

	empty := CompareSchemas(core.NewSchema("x"), core.NewSchema("x"))
	assert.False(t, empty.HasDifference())
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, "No differences detected.", empty.String())
}

func tableNames(tables []*core.Table) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.Name
	}
	return out
}
