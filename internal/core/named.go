package core

// Named is implemented by every schema object addressed by name.
type Named interface {
	GetName() string
}

// named is an insertion-ordered collection with constant-time lookup.
type named[T Named] struct {
	items []T
	index map[string]int
}

func newNamed[T Named]() named[T] {
	return named[T]{index: make(map[string]int)}
}

func (n *named[T]) add(item T) bool {
	if n.index == nil {
		n.index = make(map[string]int)
	}
	name := item.GetName()
	if _, exists := n.index[name]; exists {
		return false
	}
	n.index[name] = len(n.items)
	n.items = append(n.items, item)
	return true
}

func (n *named[T]) get(name string) (T, bool) {
	i, ok := n.index[name]
	if !ok {
		var zero T
		return zero, false
	}
	return n.items[i], true
}

func (n *named[T]) list() []T {
	out := make([]T, len(n.items))
	copy(out, n.items)
	return out
}

func (n *named[T]) len() int { return len(n.items) }
