// Package skiplist provides an ordered list with O(log n) insertion and
// lower-bound search, and O(1) expected removal through node handles.
package skiplist

import "math/rand/v2"

const (
	maxLevel    = 32
	probability = 0.25
)

// Node is a single element of a List. A *Node returned by Insert stays
// valid until that exact node is removed, no matter what else is inserted
// or removed around it.
type Node[T any] struct {
	Value T

	next []*Node[T]
	prev []*Node[T]
}

// Next returns the node that follows n in order, or nil at the end.
func (n *Node[T]) Next() *Node[T] {
	return n.next[0]
}

// List keeps elements ordered by a strict less function. Every node
// carries backward links on each of its levels, so removing it through a
// cached handle never searches the list again.
type List[T any] struct {
	head  *Node[T]
	less  func(a, b T) bool
	level int
	size  int
}

// New creates an empty list ordered by less.
func New[T any](less func(a, b T) bool) *List[T] {
	return &List[T]{
		head:  &Node[T]{next: make([]*Node[T], maxLevel)},
		less:  less,
		level: 1,
	}
}

// Len returns the number of elements in the list.
func (l *List[T]) Len() int {
	return l.size
}

// Front returns the smallest element's node, or nil if the list is empty.
func (l *List[T]) Front() *Node[T] {
	return l.head.next[0]
}

// Insert adds v to the list and returns its node. Elements that compare
// equal under less are kept in insertion order.
func (l *List[T]) Insert(v T) *Node[T] {
	update := make([]*Node[T], maxLevel)
	current := l.head

	for i := l.level - 1; i >= 0; i-- {
		// Advance while next <= v, so equal elements land after the
		// ones already present.
		for current.next[i] != nil && !l.less(v, current.next[i].Value) {
			current = current.next[i]
		}
		update[i] = current
	}

	lvl := randomLevel()
	if lvl > l.level {
		for i := l.level; i < lvl; i++ {
			update[i] = l.head
		}
		l.level = lvl
	}

	n := &Node[T]{
		Value: v,
		next:  make([]*Node[T], lvl),
		prev:  make([]*Node[T], lvl),
	}

	for i := 0; i < lvl; i++ {
		n.next[i] = update[i].next[i]
		n.prev[i] = update[i]
		if n.next[i] != nil {
			n.next[i].prev[i] = n
		}
		update[i].next[i] = n
	}

	l.size++
	return n
}

// Seek returns the first node whose value is not less than v (lower
// bound), or nil if every element is smaller.
func (l *List[T]) Seek(v T) *Node[T] {
	current := l.head

	for i := l.level - 1; i >= 0; i-- {
		for current.next[i] != nil && l.less(current.next[i].Value, v) {
			current = current.next[i]
		}
	}

	return current.next[0]
}

// Remove unlinks n from the list. n must be a node previously returned by
// Insert on this list and not removed yet.
func (l *List[T]) Remove(n *Node[T]) {
	for i := range n.next {
		n.prev[i].next[i] = n.next[i]
		if n.next[i] != nil {
			n.next[i].prev[i] = n.prev[i]
		}
		n.next[i] = nil
		n.prev[i] = nil
	}

	for l.level > 1 && l.head.next[l.level-1] == nil {
		l.level--
	}

	l.size--
}

func randomLevel() int {
	lvl := 1
	for lvl < maxLevel && rand.Float64() < probability {
		lvl++
	}
	return lvl
}
