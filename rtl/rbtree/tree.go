// Package rbtree implements a red-black tree whose callers may choose the
// insertion point themselves.
//
// Tree[T] keeps its nodes in an index arena. InsertAt links a new node at a
// caller-named empty slot (parent plus side) and rebalances, so a caller
// that already knows where an element belongs skips the descent. Search
// computes that slot from the comparator; Insert combines the two. The
// tree caches its minimum so Min is O(1).
//
// NOT thread-safe.
package rbtree

import (
	"iter"

	"github.com/joshuapare/rtlkit/internal/arena"
	"github.com/joshuapare/rtlkit/rtl"
)

// Node addresses a node of a Tree. Nodes stay valid until removed.
type Node = arena.Ref

// Nil is the absent node.
const Nil Node = arena.Nil

type node[T any] struct {
	value               T
	parent, left, right Node
	red                 bool
}

// Tree is a red-black tree ordered by a comparator.
type Tree[T any] struct {
	cmp   rtl.Comparator[T]
	nodes *arena.Arena[node[T]]
	root  Node
	min   Node
}

type config struct {
	capacity int
}

// Option configures a Tree.
type Option func(*config)

// WithCapacity reserves node storage for n elements.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// New creates an empty tree ordered by cmp.
func New[T any](cmp rtl.Comparator[T], opts ...Option) *Tree[T] {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	return &Tree[T]{
		cmp:   cmp,
		nodes: arena.New[node[T]](cfg.capacity),
	}
}

// Len returns the number of nodes.
func (t *Tree[T]) Len() int {
	return t.nodes.Live()
}

// Root returns the root node.
func (t *Tree[T]) Root() Node {
	return t.root
}

// Min returns the node holding the smallest element.
func (t *Tree[T]) Min() Node {
	return t.min
}

// Max returns the node holding the largest element.
func (t *Tree[T]) Max() Node {
	return t.maximum(t.root)
}

// Value returns the element held by x.
func (t *Tree[T]) Value(x Node) (T, bool) {
	if n := t.nodes.At(x); n != nil {
		return n.value, true
	}
	var zero T
	return zero, false
}

// Parent returns x's parent, or Nil for the root.
func (t *Tree[T]) Parent(x Node) Node {
	if n := t.nodes.At(x); n != nil {
		return n.parent
	}
	return Nil
}

// Left returns x's left child.
func (t *Tree[T]) Left(x Node) Node {
	if n := t.nodes.At(x); n != nil {
		return n.left
	}
	return Nil
}

// Right returns x's right child.
func (t *Tree[T]) Right(x Node) Node {
	if n := t.nodes.At(x); n != nil {
		return n.right
	}
	return Nil
}

// Search looks for key. On FoundNode the returned node holds an equal
// element; on InsertAsLeft or InsertAsRight it is the parent of the empty
// slot where key belongs; on EmptyTree it is Nil.
func (t *Tree[T]) Search(key T) (Node, rtl.SearchResult) {
	if t.root == Nil {
		return Nil, rtl.EmptyTree
	}
	x := t.root
	for {
		n := t.n(x)
		c := t.cmp(key, n.value)
		switch {
		case c == 0:
			return x, rtl.FoundNode
		case c < 0:
			if n.left == Nil {
				return x, rtl.InsertAsLeft
			}
			x = n.left
		default:
			if n.right == Nil {
				return x, rtl.InsertAsRight
			}
			x = n.right
		}
	}
}

// Find returns the node holding an element equal to key.
func (t *Tree[T]) Find(key T) (Node, bool) {
	x, res := t.Search(key)
	return x, res == rtl.FoundNode
}

// Insert adds v unless an equal element exists, in which case that
// element's node is returned with false.
func (t *Tree[T]) Insert(v T) (Node, bool) {
	x, res := t.Search(v)
	if res == rtl.FoundNode {
		return x, false
	}
	return t.attach(x, res == rtl.InsertAsRight, v), true
}

// InsertAt links v as the right (or left) child of parent and rebalances.
// A Nil parent inserts into an empty tree. The slot must be empty, and v
// must belong there in comparator order; the order is not checked.
func (t *Tree[T]) InsertAt(parent Node, right bool, v T) (Node, error) {
	if parent == Nil {
		if t.root != Nil {
			return Nil, ErrSlotTaken
		}
		return t.attach(Nil, false, v), nil
	}
	p := t.nodes.At(parent)
	if p == nil {
		return Nil, ErrBadNode
	}
	if right && p.right != Nil || !right && p.left != Nil {
		return Nil, ErrSlotTaken
	}
	return t.attach(parent, right, v), nil
}

func (t *Tree[T]) attach(parent Node, right bool, v T) Node {
	z := t.nodes.Alloc(node[T]{value: v, parent: parent, red: true})
	switch {
	case parent == Nil:
		t.root = z
	case right:
		t.n(parent).right = z
	default:
		t.n(parent).left = z
	}
	if t.min == Nil || parent == t.min && !right {
		t.min = z
	}
	t.insertFixup(z)
	return z
}

func (t *Tree[T]) insertFixup(z Node) {
	for z != t.root && t.isRed(t.n(z).parent) {
		p := t.n(z).parent
		g := t.n(p).parent
		if p == t.n(g).left {
			u := t.n(g).right
			if t.isRed(u) {
				t.n(p).red, t.n(u).red, t.n(g).red = false, false, true
				z = g
				continue
			}
			if z == t.n(p).right {
				z = p
				t.rotateLeft(z)
				p = t.n(z).parent
			}
			t.n(p).red, t.n(g).red = false, true
			t.rotateRight(g)
		} else {
			u := t.n(g).left
			if t.isRed(u) {
				t.n(p).red, t.n(u).red, t.n(g).red = false, false, true
				z = g
				continue
			}
			if z == t.n(p).left {
				z = p
				t.rotateRight(z)
				p = t.n(z).parent
			}
			t.n(p).red, t.n(g).red = false, true
			t.rotateLeft(g)
		}
	}
	t.n(t.root).red = false
}

// Delete removes the element equal to key. It reports false if there is none.
func (t *Tree[T]) Delete(key T) bool {
	x, ok := t.Find(key)
	if !ok {
		return false
	}
	t.remove(x)
	return true
}

// Remove unlinks and frees z.
func (t *Tree[T]) Remove(z Node) error {
	if !t.nodes.Valid(z) {
		return ErrBadNode
	}
	t.remove(z)
	return nil
}

func (t *Tree[T]) remove(z Node) {
	if z == t.min {
		t.min = t.Next(z)
	}

	zn := t.n(z)
	removedRed := zn.red
	var x, xp Node
	switch {
	case zn.left == Nil:
		x, xp = zn.right, zn.parent
		t.transplant(z, zn.right)
	case zn.right == Nil:
		x, xp = zn.left, zn.parent
		t.transplant(z, zn.left)
	default:
		y := t.minimum(zn.right)
		yn := t.n(y)
		removedRed = yn.red
		x = yn.right
		if yn.parent == z {
			xp = y
		} else {
			xp = yn.parent
			t.transplant(y, yn.right)
			yn.right = zn.right
			t.n(yn.right).parent = y
		}
		t.transplant(z, y)
		yn.left = zn.left
		t.n(yn.left).parent = y
		yn.red = zn.red
	}
	if !removedRed {
		t.deleteFixup(x, xp)
	}
	_ = t.nodes.Free(z)
}

// deleteFixup restores the black height after removing a black node. x may
// be Nil, so its parent p is tracked separately.
func (t *Tree[T]) deleteFixup(x, p Node) {
	for x != t.root && !t.isRed(x) {
		if x == t.n(p).left {
			w := t.n(p).right
			if t.isRed(w) {
				t.n(w).red, t.n(p).red = false, true
				t.rotateLeft(p)
				w = t.n(p).right
			}
			if !t.isRed(t.n(w).left) && !t.isRed(t.n(w).right) {
				t.n(w).red = true
				x, p = p, t.n(p).parent
				continue
			}
			if !t.isRed(t.n(w).right) {
				t.n(t.n(w).left).red = false
				t.n(w).red = true
				t.rotateRight(w)
				w = t.n(p).right
			}
			t.n(w).red = t.n(p).red
			t.n(p).red = false
			t.n(t.n(w).right).red = false
			t.rotateLeft(p)
			x = t.root
		} else {
			w := t.n(p).left
			if t.isRed(w) {
				t.n(w).red, t.n(p).red = false, true
				t.rotateRight(p)
				w = t.n(p).left
			}
			if !t.isRed(t.n(w).left) && !t.isRed(t.n(w).right) {
				t.n(w).red = true
				x, p = p, t.n(p).parent
				continue
			}
			if !t.isRed(t.n(w).left) {
				t.n(t.n(w).right).red = false
				t.n(w).red = true
				t.rotateLeft(w)
				w = t.n(p).left
			}
			t.n(w).red = t.n(p).red
			t.n(p).red = false
			t.n(t.n(w).left).red = false
			t.rotateRight(p)
			x = t.root
		}
	}
	if x != Nil {
		t.n(x).red = false
	}
}

// Next returns the in-order successor of x.
func (t *Tree[T]) Next(x Node) Node {
	n := t.nodes.At(x)
	if n == nil {
		return Nil
	}
	if n.right != Nil {
		return t.minimum(n.right)
	}
	for p := n.parent; p != Nil; p = t.n(p).parent {
		if t.n(p).left == x {
			return p
		}
		x = p
	}
	return Nil
}

// Prev returns the in-order predecessor of x.
func (t *Tree[T]) Prev(x Node) Node {
	n := t.nodes.At(x)
	if n == nil {
		return Nil
	}
	if n.left != Nil {
		return t.maximum(n.left)
	}
	for p := n.parent; p != Nil; p = t.n(p).parent {
		if t.n(p).right == x {
			return p
		}
		x = p
	}
	return Nil
}

// All returns an iterator over the elements in order. The tree must not be
// modified during iteration.
func (t *Tree[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for x := t.min; x != Nil; x = t.Next(x) {
			if !yield(t.n(x).value) {
				return
			}
		}
	}
}

func (t *Tree[T]) n(x Node) *node[T] {
	return t.nodes.At(x)
}

func (t *Tree[T]) isRed(x Node) bool {
	return x != Nil && t.n(x).red
}

func (t *Tree[T]) minimum(x Node) Node {
	if x == Nil {
		return Nil
	}
	for l := t.n(x).left; l != Nil; l = t.n(x).left {
		x = l
	}
	return x
}

func (t *Tree[T]) maximum(x Node) Node {
	if x == Nil {
		return Nil
	}
	for r := t.n(x).right; r != Nil; r = t.n(x).right {
		x = r
	}
	return x
}

func (t *Tree[T]) replaceChild(parent, old, repl Node) {
	switch {
	case parent == Nil:
		t.root = repl
	case t.n(parent).left == old:
		t.n(parent).left = repl
	default:
		t.n(parent).right = repl
	}
}

func (t *Tree[T]) transplant(u, v Node) {
	p := t.n(u).parent
	t.replaceChild(p, u, v)
	if v != Nil {
		t.n(v).parent = p
	}
}

func (t *Tree[T]) rotateLeft(x Node) {
	xn := t.n(x)
	y := xn.right
	yn := t.n(y)
	xn.right = yn.left
	if yn.left != Nil {
		t.n(yn.left).parent = x
	}
	yn.parent = xn.parent
	t.replaceChild(xn.parent, x, y)
	yn.left = x
	xn.parent = y
}

func (t *Tree[T]) rotateRight(x Node) {
	xn := t.n(x)
	y := xn.left
	yn := t.n(y)
	xn.left = yn.right
	if yn.right != Nil {
		t.n(yn.right).parent = x
	}
	yn.parent = xn.parent
	t.replaceChild(xn.parent, x, y)
	yn.right = x
	xn.parent = y
}
