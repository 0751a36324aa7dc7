package splay

import (
	"github.com/joshuapare/rtlkit/rtl"
)

type entry[T any] struct {
	value            T
	prevIns, nextIns Node
}

// Table is a generic table kept in a splay tree. Successful lookups and
// inserts splay the touched element to the root, so recently used elements
// are cheap to reach again.
type Table[T any] struct {
	cmp    rtl.Comparator[T]
	forest *Forest[entry[T]]
	root   Node

	head, tail Node // insertion order

	// Last ordinal served by Nth.
	nthIdx  int
	nthNode Node

	enumLast    Node
	enumStarted bool
}

// Hint is the result of LookupFull.
type Hint struct {
	node   Node
	Result rtl.SearchResult
}

// Cursor is caller-held state for Next. The zero value starts at the
// smallest element.
type Cursor[T any] struct {
	last    Node
	key     T
	started bool
	done    bool
}

// Reset rewinds the cursor.
func (c *Cursor[T]) Reset() {
	*c = Cursor[T]{}
}

// NewTable creates an empty table ordered by cmp.
func NewTable[T any](cmp rtl.Comparator[T], capHint int) *Table[T] {
	return &Table[T]{
		cmp:    cmp,
		forest: NewForest[entry[T]](capHint),
	}
}

// Len returns the number of elements.
func (t *Table[T]) Len() int {
	return t.forest.Len()
}

// IsEmpty reports whether the table has no elements.
func (t *Table[T]) IsEmpty() bool {
	return t.root == Nil
}

// Reset removes every element.
func (t *Table[T]) Reset() {
	t.forest.Reset()
	t.root, t.head, t.tail = Nil, Nil, Nil
	t.nthIdx, t.nthNode = 0, Nil
	t.enumLast, t.enumStarted = Nil, false
}

func (t *Table[T]) e(x Node) *entry[T] {
	return t.forest.Value(x)
}

// LookupFull searches for key without splaying and reports where the
// search ended.
func (t *Table[T]) LookupFull(key T) (T, Hint) {
	var zero T
	if t.root == Nil {
		return zero, Hint{Result: rtl.EmptyTree}
	}
	x := t.root
	for {
		c := t.cmp(key, t.e(x).value)
		switch {
		case c == 0:
			return t.e(x).value, Hint{node: x, Result: rtl.FoundNode}
		case c < 0:
			l := t.forest.Left(x)
			if l == Nil {
				return zero, Hint{node: x, Result: rtl.InsertAsLeft}
			}
			x = l
		default:
			r := t.forest.Right(x)
			if r == Nil {
				return zero, Hint{node: x, Result: rtl.InsertAsRight}
			}
			x = r
		}
	}
}

// Lookup returns the element equal to key and splays it to the root.
func (t *Table[T]) Lookup(key T) (T, bool) {
	v, hint := t.LookupFull(key)
	if hint.Result != rtl.FoundNode {
		return v, false
	}
	t.root = t.forest.Splay(hint.node)
	return v, true
}

// Insert adds v, or returns the equal element already present with false.
func (t *Table[T]) Insert(v T) (T, bool) {
	existing, hint := t.LookupFull(v)
	if hint.Result == rtl.FoundNode {
		t.root = t.forest.Splay(hint.node)
		return existing, false
	}
	v, inserted, _ := t.InsertFull(v, hint)
	return v, inserted
}

// InsertFull inserts v at the slot hint names. Only the liveness of the hint
// node and the emptiness of the slot are checked.
func (t *Table[T]) InsertFull(v T, hint Hint) (T, bool, error) {
	switch hint.Result {
	case rtl.FoundNode:
		e := t.e(hint.node)
		if e == nil {
			var zero T
			return zero, false, ErrBadHint
		}
		return e.value, false, nil
	case rtl.EmptyTree:
		if t.root != Nil {
			return v, false, ErrBadHint
		}
	case rtl.InsertAsLeft, rtl.InsertAsRight:
		if !t.forest.Valid(hint.node) {
			return v, false, ErrBadHint
		}
	default:
		return v, false, ErrBadHint
	}

	x := t.forest.NewNode(entry[T]{value: v, prevIns: t.tail})
	var err error
	switch hint.Result {
	case rtl.InsertAsLeft:
		err = t.forest.InsertAsLeftChild(hint.node, x)
	case rtl.InsertAsRight:
		err = t.forest.InsertAsRightChild(hint.node, x)
	}
	if err != nil {
		_ = t.forest.Free(x)
		return v, false, ErrBadHint
	}

	if t.tail != Nil {
		t.e(t.tail).nextIns = x
	} else {
		t.head = x
	}
	t.tail = x
	t.root = t.forest.Splay(x)
	return v, true, nil
}

// Delete removes the element equal to key.
func (t *Table[T]) Delete(key T) bool {
	_, hint := t.LookupFull(key)
	if hint.Result != rtl.FoundNode {
		return false
	}
	x := hint.node

	if t.enumLast == x {
		t.enumLast = t.forest.RealPredecessor(x)
		if t.enumLast == Nil {
			t.enumStarted = false
		}
	}
	t.nthIdx, t.nthNode = 0, Nil

	t.root = t.forest.Delete(x)

	e := t.e(x)
	if e.prevIns != Nil {
		t.e(e.prevIns).nextIns = e.nextIns
	} else {
		t.head = e.nextIns
	}
	if e.nextIns != Nil {
		t.e(e.nextIns).prevIns = e.prevIns
	} else {
		t.tail = e.prevIns
	}
	_ = t.forest.Free(x)
	return true
}

// Enumerate returns elements in sorted order, splaying each one it returns.
// Pass restart to begin from the smallest element.
func (t *Table[T]) Enumerate(restart bool) (T, bool) {
	var zero T
	var x Node
	switch {
	case restart || !t.enumStarted:
		x = t.forest.Minimum(t.root)
		t.enumStarted = true
	case t.enumLast == Nil:
		return zero, false
	default:
		x = t.forest.RealSuccessor(t.enumLast)
	}
	t.enumLast = x
	if x == Nil {
		return zero, false
	}
	t.root = t.forest.Splay(x)
	return t.e(x).value, true
}

// Next returns the element after the one c last returned, without splaying.
func (t *Table[T]) Next(c *Cursor[T]) (T, bool) {
	var zero T
	if c.done {
		return zero, false
	}

	var x Node
	switch {
	case !c.started:
		x = t.forest.Minimum(t.root)
	case t.forest.Valid(c.last):
		x = t.forest.RealSuccessor(c.last)
	default:
		x = t.upperBound(c.key)
	}

	c.started = true
	if x == Nil {
		c.done = true
		c.last, c.key = Nil, zero
		return zero, false
	}
	c.last = x
	c.key = t.e(x).value
	return c.key, true
}

func (t *Table[T]) upperBound(key T) Node {
	best := Nil
	for x := t.root; x != Nil; {
		if t.cmp(key, t.e(x).value) < 0 {
			best = x
			x = t.forest.Left(x)
		} else {
			x = t.forest.Right(x)
		}
	}
	return best
}

// Nth returns the i-th element in insertion order (0-based). It walks the
// insertion list from whichever of the two ends or the previously served
// ordinal is closest.
func (t *Table[T]) Nth(i int) (T, bool) {
	var zero T
	n := t.Len()
	if i < 0 || i >= n {
		return zero, false
	}

	from, x := 0, t.head
	if n-1-i < i-from {
		from, x = n-1, t.tail
	}
	if t.nthNode != Nil && abs(i-t.nthIdx) < abs(i-from) {
		from, x = t.nthIdx, t.nthNode
	}
	for ; from < i; from++ {
		x = t.e(x).nextIns
	}
	for ; from > i; from-- {
		x = t.e(x).prevIns
	}
	t.nthIdx, t.nthNode = i, x
	return t.e(x).value, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
