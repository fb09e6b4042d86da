package migration

import (
	"fmt"

	"dbal/internal/collector"
	"dbal/internal/core"
	"dbal/internal/dialect"
	"dbal/internal/diff"
	"dbal/internal/logger"
)

// Planner turns schema diffs into migrations for one platform. It keeps no
// state between Plan calls.
type Planner struct {
	platform dialect.Platform
	opts     dialect.MigrationOptions
	log      *logger.Logger
}

// NewPlanner creates a planner. A nil log discards planner events.
func NewPlanner(p dialect.Platform, opts dialect.MigrationOptions, log *logger.Logger) *Planner {
	if log == nil {
		log = logger.Nop()
	}
	return &Planner{
		platform: p,
		opts:     opts,
		log:      log.With().Str("platform", string(p.Name())).Logger(),
	}
}

// Plan generates the migration for d with the planner's options.
//
// Statements run in this order: drop views, create sequences, create tables
// without foreign keys, alter tables, add the new tables' foreign keys, drop
// tables, drop sequences, create views. The rollback is planned from the
// reverse diff and restores tables that safe mode renamed away.
func (pl *Planner) Plan(d *diff.SchemaDiff) *Migration {
	m := &Migration{}
	if d == nil || !d.HasDifference() {
		return m
	}

	pl.addNotes(m, d)
	res := pl.emit(d, m, pl.opts, nil)

	rb := &Migration{}
	rollbackOpts := pl.opts
	rollbackOpts.IncludeDrops = true
	rollbackOpts.IncludeUnsafe = true
	pl.emit(res.reverse(d), rb, rollbackOpts, res.backups)
	m.AddRollback(rb.SQLStatements()...)

	stmts := m.SQLStatements()
	if !pl.platform.SupportsTransactionalDDL() && hasLockingStatements(stmts) {
		m.AddNote("Lock-time warning: ALTER TABLE / index changes may lock or rebuild tables; for large tables consider online schema change tools and off-peak execution.")
	}
	if pl.opts.TransactionMode != dialect.TransactionNone && !pl.platform.SupportsTransactionalDDL() {
		m.AddNote(fmt.Sprintf("%s commits DDL implicitly; a failed migration is not rolled back and must be repaired with the rollback script.", pl.platform.Name()))
	}
	m.Dedupe()

	pl.log.With().
		Int("statements", len(m.SQLStatements())).
		Int("rollback", len(m.Rollback)).
		Int("breaking", len(m.BreakingNotes())).
		Int("unresolved", len(m.UnresolvedNotes())).
		Logger().Info("migration planned")
	return m
}

func (pl *Planner) addNotes(m *Migration, d *diff.SchemaDiff) {
	for _, w := range d.Warnings {
		m.AddNote("[WARNING] " + w)
	}

	for _, bc := range diff.NewBreakingChangeAnalyzer().Analyze(d) {
		switch bc.Severity {
		case diff.SeverityCritical:
			m.AddBreaking(bc.Table, fmt.Sprintf("[%s] %s.%s: %s", bc.Severity, bc.Table, bc.Object, bc.Description), RiskCritical)
		case diff.SeverityBreaking:
			m.AddBreaking(bc.Table, fmt.Sprintf("[%s] %s.%s: %s", bc.Severity, bc.Table, bc.Object, bc.Description), RiskBreaking)
		case diff.SeverityWarning:
			m.AddNote(fmt.Sprintf("[WARNING] %s.%s: %s", bc.Table, bc.Object, bc.Description))
		case diff.SeverityInfo:
		}
		for _, rec := range migrationRecommendations(bc) {
			m.AddNote(rec)
		}
	}

	if !pl.opts.IncludeUnsafe && pl.opts.IncludeDrops && len(d.DroppedTables) > 0 {
		m.AddNote("Safe mode: dropped tables are renamed to " + backupSuffixPrefix + "* instead of dropped, so the rollback can restore them.")
	}
}

// emitResult records what a forward plan left in place, so the rollback
// does not try to recreate or remove objects that never changed.
type emitResult struct {
	backups   map[string]string
	tables    map[string]bool
	sequences map[string]bool
	views     map[string]bool
}

func newEmitResult() *emitResult {
	return &emitResult{
		backups:   map[string]string{},
		tables:    map[string]bool{},
		sequences: map[string]bool{},
		views:     map[string]bool{},
	}
}

// reverse computes the diff that undoes d minus the objects left in place.
func (r *emitResult) reverse(d *diff.SchemaDiff) *diff.SchemaDiff {
	rev := diff.CompareSchemas(d.New, d.Old)
	rev.CreatedTables = skipNamed(rev.CreatedTables, r.tables)
	rev.DroppedTables = skipNamed(rev.DroppedTables, r.tables)
	rev.CreatedSequences = skipNamed(rev.CreatedSequences, r.sequences)
	rev.DroppedSequences = skipNamed(rev.DroppedSequences, r.sequences)
	rev.CreatedViews = skipNamed(rev.CreatedViews, r.views)
	rev.DroppedViews = skipNamed(rev.DroppedViews, r.views)
	return rev
}

func skipNamed[T core.Named](items []T, skip map[string]bool) []T {
	if len(skip) == 0 {
		return items
	}
	out := items[:0:0]
	for _, it := range items {
		if !skip[it.GetName()] {
			out = append(out, it)
		}
	}
	return out
}

// emit writes the statements for d into m. restore maps table names to the
// backup names a previous safe-mode plan renamed them to; such tables are
// renamed back instead of created.
func (pl *Planner) emit(d *diff.SchemaDiff, m *Migration, opts dialect.MigrationOptions, restore map[string]string) *emitResult {
	p := pl.platform
	res := newEmitResult()

	createdViews := namesOf(d.CreatedViews)
	createdSeqs := namesOf(d.CreatedSequences)

	for _, v := range d.DroppedViews {
		if !createdViews[v.Name] && !opts.IncludeDrops {
			m.AddUnresolved("", fmt.Sprintf("View %s was removed; drop it manually or enable drops.", v.Name))
			res.views[v.Name] = true
			continue
		}
		m.AddStatements("", p.DropViewSQL(v))
	}

	droppedSeqs := namesOf(d.DroppedSequences)
	for _, s := range d.CreatedSequences {
		if !p.SupportsSequences() {
			m.AddUnresolved("", fmt.Sprintf("Sequence %s cannot be created: %s has no sequences.", s.Name, p.Name()))
			continue
		}
		if droppedSeqs[s.Name] {
			if !opts.IncludeDrops {
				m.AddUnresolved("", fmt.Sprintf("Sequence %s changed; recreating it requires drops to be enabled.", s.Name))
				res.sequences[s.Name] = true
				continue
			}
			for _, old := range d.DroppedSequences {
				if old.Name == s.Name {
					m.AddStatements("", p.DropSequenceSQL(old))
				}
			}
		}
		m.AddStatements("", p.CreateSequenceSQL(s))
	}

	created, acyclic := orderByDependency(d.CreatedTables)
	if !acyclic {
		pl.log.Debug("foreign key cycle between created tables; keeping schema order")
	}
	for _, t := range created {
		if backup, ok := restore[t.Name]; ok {
			m.AddStatements(t.Name, p.RenameTableSQL(backup, t.Name))
			continue
		}
		m.AddStatements(t.Name, p.CreateTableSQL(t))
	}

	c := collector.New(p)
	for _, td := range d.AlteredTables {
		c.Collect(td)
	}
	for _, b := range collector.Buckets() {
		if stmts := c.Bucket(b); len(stmts) > 0 {
			pl.log.With().Str("bucket", b.String()).Int("statements", len(stmts)).Logger().Debug("collected")
		}
	}
	m.AddStatements("", c.Queries())

	fkCount := 0
	for _, t := range created {
		if _, ok := restore[t.Name]; ok {
			continue
		}
		for _, fk := range t.ForeignKeys() {
			m.AddStatements(t.Name, p.CreateForeignKeySQL(t.Name, fk))
			fkCount++
		}
	}
	if fkCount > 0 {
		m.AddNote("Foreign keys added after table creation to avoid dependency issues.")
	}

	pl.dropTables(d.DroppedTables, m, opts, res)

	for _, s := range d.DroppedSequences {
		if createdSeqs[s.Name] || !p.SupportsSequences() {
			continue
		}
		if !opts.IncludeDrops {
			m.AddUnresolved("", fmt.Sprintf("Sequence %s was removed; drop it manually or enable drops.", s.Name))
			res.sequences[s.Name] = true
			continue
		}
		m.AddStatements("", p.DropSequenceSQL(s))
	}

	for _, v := range d.CreatedViews {
		m.AddStatements("", p.CreateViewSQL(v))
	}

	return res
}

func (pl *Planner) dropTables(tables []*core.Table, m *Migration, opts dialect.MigrationOptions, res *emitResult) {
	p := pl.platform
	if len(tables) == 0 {
		return
	}
	if !opts.IncludeDrops {
		for _, t := range tables {
			m.AddUnresolved(t.Name, fmt.Sprintf("Table %s was removed; drop it manually or enable drops.", t.Name))
			res.tables[t.Name] = true
		}
		return
	}
	if !opts.IncludeUnsafe {
		for _, t := range tables {
			backup := backupName(t.Name, p.MaxIdentifierLength())
			m.AddStatements(t.Name, p.RenameTableSQL(t.Name, backup))
			res.backups[t.Name] = backup
		}
		return
	}

	ordered, acyclic := orderByDependency(tables)
	if !acyclic {
		dropped := namesOf(tables)
		for _, t := range tables {
			for _, fk := range t.ForeignKeys() {
				if dropped[fk.ForeignTable] && fk.ForeignTable != t.Name {
					m.AddStatements(t.Name, p.DropForeignKeySQL(t.Name, fk))
				}
			}
		}
	}
	for _, t := range reversed(ordered) {
		m.AddStatements(t.Name, p.DropTableSQL(t))
	}
}

func namesOf[T core.Named](items []T) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it.GetName()] = true
	}
	return out
}
