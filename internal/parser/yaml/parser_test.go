package yaml

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbal/internal/core"
	"dbal/internal/parser/toml"
)

func testdataPath(file string) string {
	return filepath.Join("..", "testdata", file)
}

func TestParseFileSchemaYaml(t *testing.T) {
	s, err := NewParser().ParseFile(testdataPath("schema.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "shop", s.Name)
	require.Len(t, s.Tables(), 2)

	orders, ok := s.Table("orders")
	require.True(t, ok)
	total, _ := orders.Column("total")
	assert.Equal(t, core.TypeDecimal, total.Type)
	require.NotNil(t, total.Default)
	assert.Equal(t, "0", *total.Default)

	ck, ok := orders.Check("chk_orders_total")
	require.True(t, ok)
	assert.Equal(t, "total >= 0", ck.Definition)
}

func TestYamlMatchesToml(t *testing.T) {
	fromYaml, err := NewParser().ParseFile(testdataPath("schema.yaml"))
	require.NoError(t, err)
	fromToml, err := toml.NewParser().ParseFile(testdataPath("schema.toml"))
	require.NoError(t, err)

	for _, want := range fromToml.Tables() {
		got, ok := fromYaml.Table(want.Name)
		require.True(t, ok, want.Name)
		assert.Equal(t, want.Columns(), got.Columns(), want.Name)
		assert.Equal(t, want.Indexes(), got.Indexes(), want.Name)
		assert.Equal(t, want.ForeignKeys(), got.ForeignKeys(), want.Name)
		assert.Equal(t, want.Checks(), got.Checks(), want.Name)
	}
	assert.Equal(t, fromToml.Sequences(), fromYaml.Sequences())
	assert.Equal(t, fromToml.Views(), fromYaml.Views())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "empty",
			input:   "",
			wantErr: "yaml: empty document",
		},
		{
			name:    "unknown field",
			input:   "schema:\n  name: x\n  owner: me\n",
			wantErr: "yaml: decode error",
		},
		{
			name:    "wrong shape",
			input:   "tables: users\n",
			wantErr: "yaml: decode error",
		},
		{
			name:    "conversion error",
			input:   "tables:\n  - name: t\n    columns:\n      - name: id\n        type: integer\n        references: nowhere\n",
			wantErr: `yaml: table "t"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
