// Package apply adds a functionality to connect to a user database and perform
// an actual migration on the database. User can decide upon different settings,
// so the migration can be as safe as possible and reversible.
package apply

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	_ "github.com/go-sql-driver/mysql" // registers the "mysql" driver
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"dbal/internal/dialect"
	"dbal/internal/logger"
)

var (
	// ErrDestructive is returned when destructive statements run without unsafe mode.
	ErrDestructive = errors.New("destructive operations detected without --unsafe flag")
	// ErrNonTransactional is returned when a transaction was requested for
	// statements that commit implicitly.
	ErrNonTransactional = errors.New("migration contains non-transactional DDL statements; use --allow-non-transactional to proceed")
	// ErrNotConnected is returned by Apply before Connect succeeded.
	ErrNotConnected = errors.New("not connected to a database")
)

// Executor runs statements. *sql.DB and *sql.Tx satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Options struct contains all setting available for user to choose during apply command.
type Options struct {
	DSN                   string
	Platform              dialect.Type
	DryRun                bool
	Transaction           bool
	AllowNonTransactional bool
	Unsafe                bool
	Out                   io.Writer
	Logger                *logger.Logger
}

// Result reports what Apply executed.
type Result struct {
	Applied      int
	RowsAffected int64
}

// Applier executes migration statements against one database.
type Applier struct {
	db       *sql.DB
	options  Options
	analyzer Analyzer
	out      io.Writer
	log      *logger.Logger
}

// NewApplier returns a pointer to Applier for user use, with provided options.
// The platform defaults to MySQL.
func NewApplier(options Options) *Applier {
	if options.Platform == "" {
		options.Platform = dialect.MySQL
	}
	out := options.Out
	if out == nil {
		out = io.Discard
	}
	log := options.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Applier{
		options:  options,
		analyzer: NewAnalyzer(options.Platform),
		out:      out,
		log:      log.With().Str("platform", string(options.Platform)).Logger(),
	}
}

func (a *Applier) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func (a *Applier) println(args ...any) {
	_, _ = fmt.Fprintln(a.out, args...)
}

func driverName(t dialect.Type) (string, error) {
	switch t {
	case dialect.MySQL:
		return "mysql", nil
	case dialect.PostgreSQL:
		return "pgx", nil
	default:
		return "", &dialect.UnsupportedError{Name: string(t)}
	}
}

// Connect establishes a connection with a user database and pings it to test a connection.
func (a *Applier) Connect(ctx context.Context) error {
	driver, err := driverName(a.options.Platform)
	if err != nil {
		return err
	}
	db, err := sql.Open(driver, a.options.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			return fmt.Errorf("failed to ping database: %w; additionally failed to close connection: %w", pingErr, closeErr)
		}
		return fmt.Errorf("failed to ping database: %w", pingErr)
	}

	a.Attach(db)
	return nil
}

// Attach uses an already open database handle instead of Connect.
func (a *Applier) Attach(db *sql.DB) {
	a.db = db
}

// Close closes the connection. It is safe to call more than once.
func (a *Applier) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// Preflight analyzes statements for destructive, blocking and
// non-transactional operations.
func (a *Applier) Preflight(statements []string) *PreflightResult {
	return a.analyzer.AnalyzeStatements(statements, a.options.Unsafe)
}

// Apply runs statements. A nil preflight is computed on the fly. Dry runs
// print the plan and never touch the database.
func (a *Applier) Apply(ctx context.Context, statements []string, preflight *PreflightResult) (*Result, error) {
	if preflight == nil {
		preflight = a.Preflight(statements)
	}
	if a.options.DryRun {
		return &Result{}, a.dryRun(statements, preflight)
	}
	if preflight.HasDestructiveOperations() && !a.options.Unsafe {
		return nil, ErrDestructive
	}
	if a.db == nil {
		return nil, ErrNotConnected
	}

	useTx := a.options.Transaction && preflight.IsTransactional
	if a.options.Transaction && !preflight.IsTransactional && !a.options.AllowNonTransactional {
		return nil, ErrNonTransactional
	}

	a.log.With().Int("statements", len(statements)).Bool("transaction", useTx).Logger().Info("applying migration")
	if useTx {
		return a.applyWithTransaction(ctx, statements)
	}
	return a.applyWithoutTransaction(ctx, statements)
}

func truncateSQL(stmt string) string {
	stmt = strings.Join(strings.Fields(stmt), " ")
	if len(stmt) > 80 {
		return stmt[:77] + "..."
	}
	return stmt
}

func (a *Applier) dryRun(statements []string, preflight *PreflightResult) error {
	a.println("=== DRY RUN MODE ===")

	a.println("--- Preflight Checks ---")
	if len(preflight.Warnings) == 0 {
		a.println("No warnings")
	} else {
		for _, w := range preflight.Warnings {
			a.printf("[%s] %s\n", w.Level, w.Message)
			if w.SQL != "" {
				a.printf("    SQL: %s\n", truncateSQL(w.SQL))
			}
		}
	}
	for _, e := range preflight.Errors {
		a.printf("[ERROR] %s\n", e)
	}

	a.println("--- Transaction Safety ---")
	if preflight.IsTransactional {
		a.println("All statements are transaction-safe")
	} else {
		a.println("Migration is NOT transaction-safe")
		for _, reason := range preflight.NonTxReasons {
			a.printf("  - %s\n", reason)
		}
	}

	a.println("--- Statements to Execute ---")
	for i, stmt := range statements {
		a.printf("%d. %s;\n\n", i+1, stmt)
	}

	if preflight.HasDestructiveOperations() && !a.options.Unsafe {
		return fmt.Errorf("preflight checks failed: %w", ErrDestructive)
	}
	if a.options.Transaction && !preflight.IsTransactional && !a.options.AllowNonTransactional {
		return fmt.Errorf("preflight checks failed: %w", ErrNonTransactional)
	}

	a.println("=== DRY RUN COMPLETE ===")
	a.println("All preflight checks passed. Run without --dry-run to apply.")
	return nil
}

func (a *Applier) applyWithTransaction(ctx context.Context, statements []string) (*Result, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := a.execAll(ctx, tx, statements)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return nil, fmt.Errorf("%w; rollback also failed: %w", err, rbErr)
		}
		a.log.Error("migration rolled back", err)
		return nil, fmt.Errorf("%w (rolled back)", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	a.printf("Successfully applied %d statements\n", res.Applied)
	return res, nil
}

func (a *Applier) applyWithoutTransaction(ctx context.Context, statements []string) (*Result, error) {
	a.println("Applying migration without transaction wrapper (DDL statements cause implicit commits)")

	res, err := a.execAll(ctx, a.db, statements)
	if err != nil {
		a.log.Error("migration failed", err)
		return res, fmt.Errorf("%w\n  %d statements were already applied and cannot be automatically rolled back", err, res.Applied)
	}

	a.printf("Successfully applied %d statements\n", res.Applied)
	return res, nil
}

// execAll runs statements in order and stops at the first failure. The
// returned result counts the statements that succeeded.
func (a *Applier) execAll(ctx context.Context, ex Executor, statements []string) (*Result, error) {
	res := &Result{}
	for i, stmt := range statements {
		a.printf("Executing statement %d/%d...\n", i+1, len(statements))
		r, err := ex.ExecContext(ctx, stmt)
		if err != nil {
			return res, fmt.Errorf("statement %d failed: %w\n  Statement: %s", i+1, err, truncateSQL(stmt))
		}
		if n, err := r.RowsAffected(); err == nil {
			res.RowsAffected += n
		}
		res.Applied++
		a.log.With().Int("index", i+1).Logger().Debug("statement applied")
	}
	return res, nil
}
