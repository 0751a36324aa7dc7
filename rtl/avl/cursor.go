package avl

import (
	"github.com/joshuapare/rtlkit/internal/arena"
	"github.com/joshuapare/rtlkit/rtl"
)

// Cursor is caller-held state for a sorted enumeration with Next. The zero
// value starts at the smallest element. Any number of cursors may be active
// on one table.
//
// If the element a cursor last returned is deleted, the cursor resumes at
// the first element that sorts after it.
type Cursor[T any] struct {
	last    arena.Ref
	key     T
	started bool
	done    bool
}

// Reset rewinds the cursor to the smallest element.
func (c *Cursor[T]) Reset() {
	*c = Cursor[T]{}
}

// InsertCursor is caller-held state for NextInserted. The zero value starts
// at the oldest element.
type InsertCursor struct {
	last    arena.Ref
	seq     uint64
	started bool
	done    bool
}

// Reset rewinds the cursor to the oldest element.
func (c *InsertCursor) Reset() {
	*c = InsertCursor{}
}

// Next returns the element after the one c last returned, in sorted order.
func (t *Table[T]) Next(c *Cursor[T]) (T, bool) {
	var zero T
	if c.done {
		return zero, false
	}

	var r arena.Ref
	switch {
	case !c.started:
		r = t.minimum(t.root)
	case t.nodes.Valid(c.last):
		r = t.successor(c.last)
	default:
		r = t.upperBound(c.key)
	}

	c.started = true
	if r == arena.Nil {
		c.done = true
		c.last = arena.Nil
		c.key = zero
		return zero, false
	}
	c.last = r
	c.key = t.n(r).value
	return c.key, true
}

// upperBound returns the smallest node greater than key.
func (t *Table[T]) upperBound(key T) arena.Ref {
	best := arena.Nil
	for r := t.root; r != arena.Nil; {
		n := t.n(r)
		if t.cmp(key, n.value) < 0 {
			best = r
			r = n.left
		} else {
			r = n.right
		}
	}
	return best
}

// NextInserted returns elements in the order they were inserted.
func (t *Table[T]) NextInserted(c *InsertCursor) (T, bool) {
	var zero T
	if c.done {
		return zero, false
	}

	var r arena.Ref
	switch {
	case !c.started:
		r = t.head
	case t.nodes.Valid(c.last):
		r = t.n(c.last).nextIns
	default:
		// The last element was deleted; sequence numbers are monotonic, so
		// the first surviving newer element is where to continue.
		r = t.head
		for r != arena.Nil && t.n(r).seq <= c.seq {
			r = t.n(r).nextIns
		}
	}

	c.started = true
	if r == arena.Nil {
		c.done = true
		c.last = arena.Nil
		return zero, false
	}
	n := t.n(r)
	c.last = r
	c.seq = n.seq
	return n.value, true
}

// EnumerateLikeADirectory walks the table in sorted order from c, returning
// the next element for which match reports rtl.Match. Elements reporting
// rtl.NoMatch are skipped; rtl.Stop ends the scan and leaves the cursor
// exhausted.
func (t *Table[T]) EnumerateLikeADirectory(match func(T) rtl.MatchResult, c *Cursor[T]) (T, bool) {
	var zero T
	for {
		v, ok := t.Next(c)
		if !ok {
			return zero, false
		}
		switch match(v) {
		case rtl.Match:
			return v, true
		case rtl.Stop:
			c.done = true
			return zero, false
		}
	}
}
