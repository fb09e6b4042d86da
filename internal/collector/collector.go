// Package collector turns table diffs into ordered ALTER statements.
//
// Statements are gathered into twelve buckets that are concatenated in a fixed
// order: everything that can block a drop goes first, and everything that
// depends on a created object goes last. Collecting several diffs into one
// Collector therefore runs every table's drops before any table's creates.
// The SQL text itself always comes from the dialect.Platform.
//
// A Collector is not safe for concurrent use.
package collector

import (
	"strings"

	"dbal/internal/dialect"
	"dbal/internal/diff"
)

// Bucket identifies one step of the alteration order.
type Bucket int

const (
	RenameTable Bucket = iota
	DropChecks
	DropForeignKeys
	DropIndexes
	DropPrimaryKey
	DropColumns
	AlterColumns
	CreateColumns
	CreatePrimaryKey
	CreateIndexes
	CreateForeignKeys
	CreateChecks

	bucketCount
)

var bucketNames = [bucketCount]string{
	"rename table",
	"drop checks",
	"drop foreign keys",
	"drop indexes",
	"drop primary key",
	"drop columns",
	"alter columns",
	"create columns",
	"create primary key",
	"create indexes",
	"create foreign keys",
	"create checks",
}

// Buckets returns every bucket in execution order.
func Buckets() []Bucket {
	out := make([]Bucket, bucketCount)
	for i := range out {
		out[i] = Bucket(i)
	}
	return out
}

func (b Bucket) String() string {
	if b < 0 || b >= bucketCount {
		return "unknown"
	}
	return bucketNames[b]
}

// Collector accumulates statements for one platform.
type Collector struct {
	platform dialect.Platform
	buckets  [bucketCount][]string
}

// New creates a Collector bound to p.
func New(p dialect.Platform) *Collector {
	return &Collector{platform: p}
}

// Platform returns the platform the collector renders with.
func (c *Collector) Platform() dialect.Platform { return c.platform }

// CollectTable renders a single diff with a fresh collector.
func CollectTable(p dialect.Platform, td *diff.TableDiff) []string {
	c := New(p)
	c.Collect(td)
	return c.Queries()
}

// Collect appends the statements for td to the buckets. A nil or empty diff
// adds nothing.
func (c *Collector) Collect(td *diff.TableDiff) {
	if td == nil || !td.HasDifference() {
		return
	}
	p := c.platform
	oldName := td.OldName()
	table := td.NewName()

	if td.HasNameDifference() {
		c.add(RenameTable, p.RenameTableSQL(oldName, table))
	}

	for _, ck := range td.DroppedChecks {
		c.add(DropChecks, p.DropCheckSQL(table, ck))
	}
	for _, fk := range td.DroppedForeignKeys {
		c.add(DropForeignKeys, p.DropForeignKeySQL(table, fk))
	}
	for _, idx := range td.DroppedIndexes {
		c.add(DropIndexes, p.DropIndexSQL(table, idx))
	}
	if pk, ok := td.DroppedPrimaryKey(); ok {
		// an unnamed key keeps the name derived from the table it was created on
		if td.HasNameDifference() && strings.TrimSpace(pk.Name) == "" {
			named := *pk
			named.Name = p.DefaultPrimaryKeyName(oldName)
			pk = &named
		}
		c.add(DropPrimaryKey, p.DropPrimaryKeySQL(table, pk))
	}
	for _, col := range td.DroppedColumns {
		c.add(DropColumns, p.DropColumnSQL(table, col))
	}

	for _, cd := range td.AlteredColumns {
		c.add(AlterColumns, p.AlterColumnSQL(table, cd))
	}

	for _, col := range td.CreatedColumns {
		c.add(CreateColumns, p.CreateColumnSQL(table, col))
	}
	if pk, ok := td.CreatedPrimaryKey(); ok {
		c.add(CreatePrimaryKey, p.CreatePrimaryKeySQL(table, pk))
	}
	for _, idx := range td.CreatedIndexes {
		c.add(CreateIndexes, p.CreateIndexSQL(table, idx))
	}
	for _, fk := range td.CreatedForeignKeys {
		c.add(CreateForeignKeys, p.CreateForeignKeySQL(table, fk))
	}
	for _, ck := range td.CreatedChecks {
		c.add(CreateChecks, p.CreateCheckSQL(table, ck))
	}
}

func (c *Collector) add(b Bucket, stmts []string) {
	for _, stmt := range stmts {
		stmt = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
		if stmt == "" {
			continue
		}
		c.buckets[b] = append(c.buckets[b], stmt)
	}
}

// Queries returns every collected statement in bucket order.
func (c *Collector) Queries() []string {
	out := make([]string, 0, c.Len())
	for _, stmts := range c.buckets {
		out = append(out, stmts...)
	}
	return out
}

// Bucket returns a copy of the statements collected into b.
func (c *Collector) Bucket(b Bucket) []string {
	if b < 0 || b >= bucketCount {
		return nil
	}
	return append([]string(nil), c.buckets[b]...)
}

// Len returns the number of collected statements.
func (c *Collector) Len() int {
	n := 0
	for _, stmts := range c.buckets {
		n += len(stmts)
	}
	return n
}

// Reset clears all buckets. The platform is kept.
func (c *Collector) Reset() {
	c.buckets = [bucketCount][]string{}
}
