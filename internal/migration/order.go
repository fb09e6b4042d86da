package migration

import (
	"github.com/yourbasic/graph"

	"dbal/internal/core"
)

// orderByDependency sorts tables so that a table comes after every table it
// references through a foreign key. References to tables outside the list
// and self references are ignored. When the references form a cycle the
// input order is returned with ok set to false.
func orderByDependency(tables []*core.Table) (ordered []*core.Table, ok bool) {
	if len(tables) < 2 {
		return tables, true
	}
	index := make(map[string]int, len(tables))
	for i, t := range tables {
		index[t.Name] = i
	}

	g := graph.New(len(tables))
	for i, t := range tables {
		for _, fk := range t.ForeignKeys() {
			if j, found := index[fk.ForeignTable]; found && j != i {
				g.Add(j, i)
			}
		}
	}

	order, ok := graph.TopSort(g)
	if !ok {
		return tables, false
	}
	ordered = make([]*core.Table, 0, len(tables))
	for _, i := range order {
		ordered = append(ordered, tables[i])
	}
	return ordered, true
}

// reversed returns a reversed copy of tables.
func reversed(tables []*core.Table) []*core.Table {
	out := make([]*core.Table, len(tables))
	for i, t := range tables {
		out[len(tables)-1-i] = t
	}
	return out
}
