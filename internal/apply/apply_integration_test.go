package apply

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"dbal/internal/core"
	"dbal/internal/dialect"
	mysqlplatform "dbal/internal/dialect/mysql"
	"dbal/internal/diff"
	"dbal/internal/migration"
	mysqlparser "dbal/internal/parser/mysql"
)

type testMySQLContainer struct {
	dsn string
	db  *sql.DB
}

const shopV1 = `
CREATE TABLE customers (
  id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
  email VARCHAR(255) NOT NULL,
  UNIQUE KEY uniq_customers_email (email)
);
CREATE TABLE orders (
  id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
  customer_id INT NOT NULL,
  CONSTRAINT fk_orders_customer FOREIGN KEY (customer_id) REFERENCES customers (id) ON DELETE CASCADE
);`

const shopV2 = `
CREATE TABLE customers (
  id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
  email VARCHAR(255) NOT NULL,
  nickname VARCHAR(64) NULL,
  UNIQUE KEY uniq_customers_email (email)
);
CREATE TABLE orders (
  id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
  customer_id INT NOT NULL,
  total DECIMAL(10,2) NOT NULL DEFAULT 0,
  KEY idx_orders_total (total),
  CONSTRAINT fk_orders_customer FOREIGN KEY (customer_id) REFERENCES customers (id) ON DELETE CASCADE
);`

func TestApplierConnectIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tc := setupMySQL(t)
	ctx := context.Background()

	t.Run("successful connection", func(t *testing.T) {
		applier := NewApplier(Options{DSN: tc.dsn})
		require.NoError(t, applier.Connect(ctx))
		require.NoError(t, applier.Close())
	})

	t.Run("invalid DSN fails", func(t *testing.T) {
		applier := NewApplier(Options{DSN: "invalid:user@tcp(127.0.0.1:1)/nope"})
		assert.Error(t, applier.Connect(ctx))
		assert.NoError(t, applier.Close())
	})
}

func TestApplyPlannedMigrationIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tc := setupMySQL(t)
	ctx := context.Background()

	parser := mysqlparser.NewParser()
	v1, err := parser.Parse(shopV1)
	require.NoError(t, err)
	v2, err := parser.Parse(shopV2)
	require.NoError(t, err)

	opts := dialect.DefaultMigrationOptions(dialect.MySQL)
	opts.IncludeUnsafe = true
	planner := migration.NewPlanner(mysqlplatform.NewPlatform(), opts, nil)

	run := func(t *testing.T, stmts []string) {
		t.Helper()
		applier := NewApplier(Options{DSN: tc.dsn, Platform: dialect.MySQL, Unsafe: true})
		require.NoError(t, applier.Connect(ctx))
		defer func() { require.NoError(t, applier.Close()) }()

		res, err := applier.Apply(ctx, stmts, nil)
		require.NoError(t, err)
		assert.Equal(t, len(stmts), res.Applied)
	}

	create := planner.Plan(diff.CompareSchemas(core.NewSchema(v1.Name), v1))
	require.False(t, create.IsEmpty())
	run(t, create.SQLStatements())
	assert.Equal(t, 2, countRows(t, tc.db,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'testdb'"))

	alter := planner.Plan(diff.CompareSchemas(v1, v2))
	require.False(t, alter.IsEmpty())
	run(t, alter.SQLStatements())
	assert.Equal(t, 1, countRows(t, tc.db,
		"SELECT COUNT(*) FROM information_schema.columns WHERE table_schema = 'testdb' AND table_name = 'customers' AND column_name = 'nickname'"))
	assert.Equal(t, 1, countRows(t, tc.db,
		"SELECT COUNT(*) FROM information_schema.statistics WHERE table_schema = 'testdb' AND index_name = 'idx_orders_total'"))

	run(t, alter.RollbackStatements())
	assert.Equal(t, 0, countRows(t, tc.db,
		"SELECT COUNT(*) FROM information_schema.columns WHERE table_schema = 'testdb' AND table_name = 'orders' AND column_name = 'total'"))

	again := planner.Plan(diff.CompareSchemas(v1, v1))
	assert.True(t, again.IsEmpty())
}

func countRows(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), query).Scan(&n))
	return n
}

func setupMySQL(t *testing.T) *testMySQLContainer {
	t.Helper()
	ctx := context.Background()

	mysqlContainer, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase("testdb"),
		tcmysql.WithUsername("root"),
		tcmysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(mysqlContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := mysqlContainer.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err, "failed to get connection string")

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err, "failed to open direct DB connection")
	require.NoError(t, db.PingContext(ctx), "failed to ping database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close DB connection: %v", err)
		}
	})

	return &testMySQLContainer{dsn: dsn, db: db}
}
