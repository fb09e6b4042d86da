package diff

import (
	"strings"

	"dbal/internal/core"
)

type fieldChangeCollector struct {
	changes []*FieldChange
}

func (c *fieldChangeCollector) Add(field, oldV, newV string) {
	if oldV == newV {
		return
	}
	c.changes = append(c.changes, &FieldChange{Field: field, Old: oldV, New: newV})
}

// equalNamed is implemented by schema objects compared by name and definition.
type equalNamed[T any] interface {
	core.Named
	Equal(T) bool
}

// diffNamed returns the items of newItems that are missing from oldItems or
// differ from their namesake, and symmetrically for oldItems. A changed item
// therefore appears in both results. Input order is preserved.
func diffNamed[T equalNamed[T]](oldItems, newItems []T) (created, dropped []T) {
	oldByName := mapByName(oldItems)
	newByName := mapByName(newItems)

	for _, n := range newItems {
		if o, ok := oldByName[n.GetName()]; !ok || !o.Equal(n) {
			created = append(created, n)
		}
	}
	for _, o := range oldItems {
		if n, ok := newByName[o.GetName()]; !ok || !n.Equal(o) {
			dropped = append(dropped, o)
		}
	}
	return created, dropped
}

func mapByName[T core.Named](items []T) map[string]T {
	m := make(map[string]T, len(items))
	for _, item := range items {
		m[item.GetName()] = item
	}
	return m
}

func formatNameList(items []string) string {
	return "(" + strings.Join(items, ", ") + ")"
}
