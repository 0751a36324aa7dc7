package avl

import (
	"iter"

	"github.com/joshuapare/rtlkit/internal/arena"
	"github.com/joshuapare/rtlkit/rtl"
)

// node is the table-owned link record wrapping one caller element.
type node[T any] struct {
	value T

	parent, left, right arena.Ref
	height              int8
	size                int // nodes in the subtree rooted here

	// Insertion-order list.
	prevIns, nextIns arena.Ref
	seq              uint64
}

// Table is an AVL-balanced ordered table.
type Table[T any] struct {
	cmp   rtl.Comparator[T]
	nodes *arena.Arena[node[T]]
	root  arena.Ref

	head, tail arena.Ref // insertion order
	nextSeq    uint64

	// Internal cursor for Enumerate.
	enumLast    arena.Ref
	enumStarted bool
}

// Hint is the result of LookupFull: the node reached and what it means.
// For FoundNode it addresses the equal element; for InsertAsLeft and
// InsertAsRight it addresses the parent of the empty slot.
type Hint struct {
	node   arena.Ref
	Result rtl.SearchResult
}

type config struct {
	capacity int
}

// Option configures a Table.
type Option func(*config)

// WithCapacity reserves node storage for n elements.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// New creates an empty table ordered by cmp.
func New[T any](cmp rtl.Comparator[T], opts ...Option) *Table[T] {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	return &Table[T]{
		cmp:   cmp,
		nodes: arena.New[node[T]](cfg.capacity),
	}
}

// Len returns the number of elements.
func (t *Table[T]) Len() int {
	return t.nodes.Live()
}

// IsEmpty reports whether the table has no elements.
func (t *Table[T]) IsEmpty() bool {
	return t.root == arena.Nil
}

// Reset removes every element at once.
func (t *Table[T]) Reset() {
	t.nodes.Reset()
	t.root = arena.Nil
	t.head, t.tail = arena.Nil, arena.Nil
	t.enumLast, t.enumStarted = arena.Nil, false
}

// Insert adds v. If an equal element exists, it is returned with false and
// the table is unchanged.
func (t *Table[T]) Insert(v T) (T, bool) {
	existing, hint := t.LookupFull(v)
	if hint.Result == rtl.FoundNode {
		return existing, false
	}
	t.attach(v, hint)
	return v, true
}

// LookupFull searches for key and reports where the search ended.
func (t *Table[T]) LookupFull(key T) (T, Hint) {
	var zero T
	if t.root == arena.Nil {
		return zero, Hint{Result: rtl.EmptyTree}
	}
	r := t.root
	for {
		n := t.n(r)
		c := t.cmp(key, n.value)
		switch {
		case c == 0:
			return n.value, Hint{node: r, Result: rtl.FoundNode}
		case c < 0:
			if n.left == arena.Nil {
				return zero, Hint{node: r, Result: rtl.InsertAsLeft}
			}
			r = n.left
		default:
			if n.right == arena.Nil {
				return zero, Hint{node: r, Result: rtl.InsertAsRight}
			}
			r = n.right
		}
	}
}

// InsertFull inserts v at the position described by hint, which must come
// from LookupFull on this table with no mutation in between. The hint is not
// re-validated against the comparator; only its liveness and the emptiness
// of the named slot are checked.
func (t *Table[T]) InsertFull(v T, hint Hint) (T, bool, error) {
	switch hint.Result {
	case rtl.FoundNode:
		n := t.nodes.At(hint.node)
		if n == nil {
			var zero T
			return zero, false, ErrBadHint
		}
		return n.value, false, nil
	case rtl.EmptyTree:
		if t.root != arena.Nil {
			return v, false, ErrBadHint
		}
	case rtl.InsertAsLeft, rtl.InsertAsRight:
		p := t.nodes.At(hint.node)
		if p == nil {
			return v, false, ErrBadHint
		}
		if hint.Result == rtl.InsertAsLeft && p.left != arena.Nil ||
			hint.Result == rtl.InsertAsRight && p.right != arena.Nil {
			return v, false, ErrBadHint
		}
	default:
		return v, false, ErrBadHint
	}
	t.attach(v, hint)
	return v, true, nil
}

// attach links a new node at the slot named by hint and rebalances.
func (t *Table[T]) attach(v T, hint Hint) {
	t.nextSeq++
	ref := t.nodes.Alloc(node[T]{
		value:   v,
		height:  1,
		size:    1,
		prevIns: t.tail,
		seq:     t.nextSeq,
	})

	if t.tail != arena.Nil {
		t.n(t.tail).nextIns = ref
	} else {
		t.head = ref
	}
	t.tail = ref

	switch hint.Result {
	case rtl.EmptyTree:
		t.root = ref
		return
	case rtl.InsertAsLeft:
		t.n(hint.node).left = ref
	default:
		t.n(hint.node).right = ref
	}
	t.n(ref).parent = hint.node
	t.retrace(hint.node)
}

// Lookup returns the element equal to key.
func (t *Table[T]) Lookup(key T) (T, bool) {
	v, hint := t.LookupFull(key)
	return v, hint.Result == rtl.FoundNode
}

// LookupFirstMatching returns the leftmost element equal to key. It differs
// from Lookup only for comparators that treat ranges of keys as equal.
func (t *Table[T]) LookupFirstMatching(key T) (T, bool) {
	found := arena.Nil
	for r := t.root; r != arena.Nil; {
		n := t.n(r)
		c := t.cmp(key, n.value)
		if c <= 0 {
			if c == 0 {
				found = r
			}
			r = n.left
		} else {
			r = n.right
		}
	}
	if found == arena.Nil {
		var zero T
		return zero, false
	}
	return t.n(found).value, true
}

// FindFirstMatch returns the first element in sorted order for which pred
// holds. It scans, so it costs O(n) in the worst case.
func (t *Table[T]) FindFirstMatch(pred func(T) bool) (T, bool) {
	for r := t.minimum(t.root); r != arena.Nil; r = t.successor(r) {
		if v := t.n(r).value; pred(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Delete removes the element equal to key. It reports false if there is none.
func (t *Table[T]) Delete(key T) bool {
	_, hint := t.LookupFull(key)
	if hint.Result != rtl.FoundNode {
		return false
	}
	t.remove(hint.node)
	return true
}

func (t *Table[T]) remove(z arena.Ref) {
	if t.enumLast == z {
		p := t.predecessor(z)
		t.enumLast = p
		if p == arena.Nil {
			t.enumStarted = false
		}
	}

	zn := t.n(z)
	var fix arena.Ref
	switch {
	case zn.left == arena.Nil:
		fix = zn.parent
		t.transplant(z, zn.right)
	case zn.right == arena.Nil:
		fix = zn.parent
		t.transplant(z, zn.left)
	default:
		// Relink the successor into z's place rather than copying values,
		// so Refs held by cursors keep addressing the same element.
		y := t.minimum(zn.right)
		yn := t.n(y)
		if yn.parent != z {
			fix = yn.parent
			t.transplant(y, yn.right)
			yn.right = zn.right
			t.n(yn.right).parent = y
		} else {
			fix = y
		}
		t.transplant(z, y)
		yn.left = zn.left
		t.n(yn.left).parent = y
	}
	t.retrace(fix)

	if zn.prevIns != arena.Nil {
		t.n(zn.prevIns).nextIns = zn.nextIns
	} else {
		t.head = zn.nextIns
	}
	if zn.nextIns != arena.Nil {
		t.n(zn.nextIns).prevIns = zn.prevIns
	} else {
		t.tail = zn.prevIns
	}

	_ = t.nodes.Free(z)
}

// Nth returns the element of sorted rank i (0-based).
func (t *Table[T]) Nth(i int) (T, bool) {
	var zero T
	if i < 0 || i >= t.Len() {
		return zero, false
	}
	r := t.root
	for r != arena.Nil {
		n := t.n(r)
		ls := t.size(n.left)
		switch {
		case i < ls:
			r = n.left
		case i == ls:
			return n.value, true
		default:
			i -= ls + 1
			r = n.right
		}
	}
	return zero, false
}

// Enumerate returns elements in sorted order, one per call. Pass restart to
// begin from the smallest element. Once exhausted it keeps returning false
// until restarted. Deleting the element last returned does not disturb it.
func (t *Table[T]) Enumerate(restart bool) (T, bool) {
	var r arena.Ref
	switch {
	case restart || !t.enumStarted:
		r = t.minimum(t.root)
		t.enumStarted = true
	case t.enumLast == arena.Nil:
		var zero T
		return zero, false
	default:
		r = t.successor(t.enumLast)
	}
	t.enumLast = r
	if r == arena.Nil {
		var zero T
		return zero, false
	}
	return t.n(r).value, true
}

// All returns an iterator over the elements in sorted order. The table must
// not be modified during iteration.
func (t *Table[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for r := t.minimum(t.root); r != arena.Nil; r = t.successor(r) {
			if !yield(t.n(r).value) {
				return
			}
		}
	}
}

func (t *Table[T]) n(r arena.Ref) *node[T] {
	return t.nodes.At(r)
}

func (t *Table[T]) height(r arena.Ref) int8 {
	if r == arena.Nil {
		return 0
	}
	return t.n(r).height
}

func (t *Table[T]) size(r arena.Ref) int {
	if r == arena.Nil {
		return 0
	}
	return t.n(r).size
}

func (t *Table[T]) update(r arena.Ref) {
	n := t.n(r)
	n.height = 1 + max(t.height(n.left), t.height(n.right))
	n.size = 1 + t.size(n.left) + t.size(n.right)
}

func (t *Table[T]) balance(r arena.Ref) int {
	n := t.n(r)
	return int(t.height(n.right)) - int(t.height(n.left))
}

// retrace walks from r to the root, refreshing heights and sizes and
// rotating wherever the AVL condition is violated.
func (t *Table[T]) retrace(r arena.Ref) {
	for r != arena.Nil {
		r = t.rebalance(r)
		r = t.n(r).parent
	}
}

// rebalance restores the AVL condition at r and returns the subtree's new root.
func (t *Table[T]) rebalance(r arena.Ref) arena.Ref {
	t.update(r)
	n := t.n(r)
	switch bf := t.balance(r); {
	case bf > 1:
		if t.balance(n.right) < 0 {
			t.rotateRight(n.right)
		}
		return t.rotateLeft(r)
	case bf < -1:
		if t.balance(n.left) > 0 {
			t.rotateLeft(n.left)
		}
		return t.rotateRight(r)
	}
	return r
}

func (t *Table[T]) rotateLeft(x arena.Ref) arena.Ref {
	xn := t.n(x)
	y := xn.right
	yn := t.n(y)

	xn.right = yn.left
	if yn.left != arena.Nil {
		t.n(yn.left).parent = x
	}
	yn.parent = xn.parent
	t.replaceChild(xn.parent, x, y)
	yn.left = x
	xn.parent = y

	t.update(x)
	t.update(y)
	return y
}

func (t *Table[T]) rotateRight(x arena.Ref) arena.Ref {
	xn := t.n(x)
	y := xn.left
	yn := t.n(y)

	xn.left = yn.right
	if yn.right != arena.Nil {
		t.n(yn.right).parent = x
	}
	yn.parent = xn.parent
	t.replaceChild(xn.parent, x, y)
	yn.right = x
	xn.parent = y

	t.update(x)
	t.update(y)
	return y
}

func (t *Table[T]) replaceChild(parent, old, repl arena.Ref) {
	if parent == arena.Nil {
		t.root = repl
		return
	}
	p := t.n(parent)
	if p.left == old {
		p.left = repl
	} else {
		p.right = repl
	}
}

// transplant puts v where u was. u's own links are left untouched.
func (t *Table[T]) transplant(u, v arena.Ref) {
	un := t.n(u)
	t.replaceChild(un.parent, u, v)
	if v != arena.Nil {
		t.n(v).parent = un.parent
	}
}

func (t *Table[T]) minimum(r arena.Ref) arena.Ref {
	if r == arena.Nil {
		return r
	}
	for t.n(r).left != arena.Nil {
		r = t.n(r).left
	}
	return r
}

func (t *Table[T]) maximum(r arena.Ref) arena.Ref {
	if r == arena.Nil {
		return r
	}
	for t.n(r).right != arena.Nil {
		r = t.n(r).right
	}
	return r
}

func (t *Table[T]) successor(r arena.Ref) arena.Ref {
	n := t.n(r)
	if n.right != arena.Nil {
		return t.minimum(n.right)
	}
	p := n.parent
	for p != arena.Nil && t.n(p).right == r {
		r = p
		p = t.n(p).parent
	}
	return p
}

func (t *Table[T]) predecessor(r arena.Ref) arena.Ref {
	n := t.n(r)
	if n.left != arena.Nil {
		return t.maximum(n.left)
	}
	p := n.parent
	for p != arena.Nil && t.n(p).left == r {
		r = p
		p = t.n(p).parent
	}
	return p
}
