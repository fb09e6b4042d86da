package schemafile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbal/internal/core"
	"dbal/internal/dialect"
)

func intPtr(v int) *int { return &v }

func usersDocument() *Document {
	return &Document{
		Schema: Header{Name: "app", Platform: "mysql"},
		Tables: []Table{
			{
				Name: "users",
				Columns: []Column{
					{Name: "id", Type: "bigint", PrimaryKey: true, AutoIncrement: true},
					{Name: "email", Type: "varchar(320)", Unique: true},
					{Name: "active", Type: "boolean", Default: true},
					{Name: "bio", Type: "text", Nullable: true, Comment: "free text"},
				},
			},
			{
				Name: "orders",
				Columns: []Column{
					{Name: "id", Type: "integer"},
					{Name: "user_id", Type: "bigint", References: "users.id", OnDelete: "cascade"},
					{Name: "total", Type: "decimal(10,2)", Default: 0},
				},
				PrimaryKey: []string{"id"},
				Indexes:    []Index{{Name: "idx_orders_total", Columns: []string{"total"}}},
				Checks:     []Check{{Name: "chk_total", Expression: "total >= 0"}},
			},
		},
		Sequences: []Sequence{{Name: "order_seq", Start: intPtr(100)}},
		Views:     []View{{Name: "active_users", Definition: "SELECT id FROM users WHERE active"}},
	}
}

func TestConvert(t *testing.T) {
	s, err := Convert(usersDocument())
	require.NoError(t, err)

	assert.Equal(t, "app", s.Name)
	require.Len(t, s.Tables(), 2)

	users, ok := s.Table("users")
	require.True(t, ok)
	pk, ok := users.PrimaryKey()
	require.True(t, ok)
	assert.Equal(t, []string{"id"}, pk.Columns)

	email, ok := users.Column("email")
	require.True(t, ok)
	assert.Equal(t, core.TypeString, email.Type)
	assert.Equal(t, 320, email.Length)
	assert.True(t, email.NotNull)

	active, _ := users.Column("active")
	require.NotNil(t, active.Default)
	assert.Equal(t, "TRUE", *active.Default)

	bio, _ := users.Column("bio")
	assert.False(t, bio.NotNull)
	assert.Equal(t, "free text", bio.Comment)

	uniq, ok := users.Index("uniq_users_email")
	require.True(t, ok)
	assert.True(t, uniq.Unique)

	orders, _ := s.Table("orders")
	total, _ := orders.Column("total")
	assert.Equal(t, 10, total.Precision)
	assert.Equal(t, 2, total.Scale)
	assert.Equal(t, "0", *total.Default)

	fk, ok := orders.ForeignKey("fk_orders_user_id")
	require.True(t, ok)
	assert.Equal(t, "users", fk.ForeignTable)
	assert.Equal(t, []string{"id"}, fk.ForeignColumns)
	assert.Equal(t, core.ActionCascade, fk.OnDelete)

	_, ok = orders.Check("chk_total")
	assert.True(t, ok)

	seq, ok := s.Sequence("order_seq")
	require.True(t, ok)
	assert.Equal(t, 100, seq.InitialValue)
	assert.Equal(t, 1, seq.IncrementSize)

	_, ok = s.View("active_users")
	assert.True(t, ok)
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Document)
		wantErr string
	}{
		{
			name:    "nil document",
			wantErr: "schema document is nil",
		},
		{
			name:    "unknown platform",
			mutate:  func(d *Document) { d.Schema.Platform = "oracle" },
			wantErr: "unsupported dialect",
		},
		{
			name:    "unknown type wraps table name",
			mutate:  func(d *Document) { d.Tables[0].Columns[1].Type = "geometry" },
			wantErr: `table "users": column "email"`,
		},
		{
			name: "primary key declared twice",
			mutate: func(d *Document) {
				d.Tables[0].PrimaryKey = []string{"id"}
			},
			wantErr: "primary key declared on both",
		},
		{
			name:    "bad references",
			mutate:  func(d *Document) { d.Tables[1].Columns[1].References = "users" },
			wantErr: `invalid references "users"`,
		},
		{
			name:    "bad referential action",
			mutate:  func(d *Document) { d.Tables[1].Columns[1].OnDelete = "explode" },
			wantErr: "on_delete",
		},
		{
			name:    "missing referenced column",
			mutate:  func(d *Document) { d.Tables[1].Columns[1].References = "users.uuid" },
			wantErr: `referenced column "uuid"`,
		},
		{
			name:    "unsupported default",
			mutate:  func(d *Document) { d.Tables[0].Columns[2].Default = []string{"x"} },
			wantErr: "unsupported default value",
		},
		{
			name:    "non-positive sequence start",
			mutate:  func(d *Document) { d.Sequences[0].Start = intPtr(0) },
			wantErr: "initial value must be a positive integer",
		},
		{
			name:    "empty view definition",
			mutate:  func(d *Document) { d.Views[0].Definition = " " },
			wantErr: "view definition is empty",
		},
		{
			name: "name longer than limit",
			mutate: func(d *Document) {
				d.Validation = &Validation{MaxTableNameLength: 5}
			},
			wantErr: `table "orders" exceeds maximum length 5`,
		},
		{
			name: "column name outside pattern",
			mutate: func(d *Document) {
				d.Validation = &Validation{AllowedNamePattern: "^[a-z]+$"}
			},
			wantErr: `column "user_id" does not match allowed pattern`,
		},
		{
			name: "invalid pattern",
			mutate: func(d *Document) {
				d.Validation = &Validation{AllowedNamePattern: "("}
			},
			wantErr: "invalid allowed_name_pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc *Document
			if tt.mutate != nil {
				doc = usersDocument()
				tt.mutate(doc)
			}
			_, err := Convert(doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConvertPlatformAliases(t *testing.T) {
	doc := usersDocument()
	doc.Schema.Platform = "postgres"
	_, err := Convert(doc)
	require.NoError(t, err)

	doc.Schema.Platform = "db2"
	_, err = Convert(doc)
	var unsupported *dialect.UnsupportedError
	assert.True(t, errors.As(err, &unsupported))
}

func TestParseTypeSpec(t *testing.T) {
	tests := []struct {
		raw     string
		want    TypeSpec
		wantErr bool
	}{
		{raw: "string", want: TypeSpec{Type: core.TypeString}},
		{raw: "VARCHAR(64)", want: TypeSpec{Type: core.TypeString, Length: 64}},
		{raw: "char(2)", want: TypeSpec{Type: core.TypeString, Length: 2, Fixed: true}},
		{raw: "binary(16)", want: TypeSpec{Type: core.TypeBinary, Length: 16, Fixed: true}},
		{raw: "numeric(12, 4)", want: TypeSpec{Type: core.TypeDecimal, Precision: 12, Scale: 4}},
		{raw: "decimal(8)", want: TypeSpec{Type: core.TypeDecimal, Precision: 8}},
		{raw: "int(11) unsigned", want: TypeSpec{Type: core.TypeInteger, Unsigned: true}},
		{raw: "tinyint(1)", want: TypeSpec{Type: core.TypeSmallInt}},
		{raw: "uuid", want: TypeSpec{Type: core.TypeGUID}},
		{raw: "", wantErr: true},
		{raw: "varchar(", wantErr: true},
		{raw: "varchar(a)", wantErr: true},
		{raw: "text(10)", wantErr: true},
		{raw: "decimal(1,2,3)", wantErr: true},
		{raw: "point", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseTypeSpec(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDefault(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: "CURRENT_TIMESTAMP", want: "CURRENT_TIMESTAMP"},
		{in: false, want: "FALSE"},
		{in: 42, want: "42"},
		{in: int64(-7), want: "-7"},
		{in: uint64(9), want: "9"},
		{in: 1.5, want: "1.5"},
	}
	for _, tt := range tests {
		got, err := normalizeDefault(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
