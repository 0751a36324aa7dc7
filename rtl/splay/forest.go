// Package splay provides splay-tree link primitives and a splay-based
// generic table.
//
// A Forest owns the storage for nodes of any number of independent trees.
// A tree is identified by its root Node; operations that restructure a tree
// return its new root. The primitives never compare values, so callers
// decide placement (the prefix table builds its levels this way).
//
// Table layers ordered lookup, insertion order and ordinal access on top of
// a single tree.
//
// NOT thread-safe.
package splay

import "github.com/joshuapare/rtlkit/internal/arena"

// Node addresses a node in a Forest.
type Node = arena.Ref

// Nil is the absent node.
const Nil Node = arena.Nil

type link[T any] struct {
	value               T
	parent, left, right Node
}

// Forest is node storage shared by a set of splay trees.
type Forest[T any] struct {
	nodes *arena.Arena[link[T]]
}

// NewForest creates an empty forest with room for capHint nodes.
func NewForest[T any](capHint int) *Forest[T] {
	return &Forest[T]{nodes: arena.New[link[T]](capHint)}
}

// NewNode allocates an unlinked node holding v. It is the root of a
// one-node tree.
func (f *Forest[T]) NewNode(v T) Node {
	return f.nodes.Alloc(link[T]{value: v})
}

// Free releases x. It must already be unlinked from its tree.
func (f *Forest[T]) Free(x Node) error {
	l := f.nodes.At(x)
	if l == nil {
		return ErrBadNode
	}
	if l.parent != Nil || l.left != Nil || l.right != Nil {
		return ErrSlotTaken
	}
	return f.nodes.Free(x)
}

// Value returns a pointer to x's payload, or nil if x is not live. The
// pointer is invalidated by the next NewNode.
func (f *Forest[T]) Value(x Node) *T {
	l := f.nodes.At(x)
	if l == nil {
		return nil
	}
	return &l.value
}

// Valid reports whether x addresses a live node.
func (f *Forest[T]) Valid(x Node) bool {
	return f.nodes.Valid(x)
}

// Len returns the number of live nodes across all trees.
func (f *Forest[T]) Len() int {
	return f.nodes.Live()
}

// Reset frees every node of every tree.
func (f *Forest[T]) Reset() {
	f.nodes.Reset()
}

// Parent returns x's parent, or Nil for a root.
func (f *Forest[T]) Parent(x Node) Node {
	if l := f.nodes.At(x); l != nil {
		return l.parent
	}
	return Nil
}

// Left returns x's left child.
func (f *Forest[T]) Left(x Node) Node {
	if l := f.nodes.At(x); l != nil {
		return l.left
	}
	return Nil
}

// Right returns x's right child.
func (f *Forest[T]) Right(x Node) Node {
	if l := f.nodes.At(x); l != nil {
		return l.right
	}
	return Nil
}

// IsRoot reports whether x has no parent.
func (f *Forest[T]) IsRoot(x Node) bool {
	return f.Parent(x) == Nil
}

// InsertAsLeftChild links child, which must be an unparented root, as the
// left child of parent.
func (f *Forest[T]) InsertAsLeftChild(parent, child Node) error {
	return f.attach(parent, child, true)
}

// InsertAsRightChild links child as the right child of parent.
func (f *Forest[T]) InsertAsRightChild(parent, child Node) error {
	return f.attach(parent, child, false)
}

func (f *Forest[T]) attach(parent, child Node, left bool) error {
	p, c := f.nodes.At(parent), f.nodes.At(child)
	if p == nil || c == nil || parent == child {
		return ErrBadNode
	}
	if c.parent != Nil {
		return ErrSlotTaken
	}
	slot := &p.right
	if left {
		slot = &p.left
	}
	if *slot != Nil {
		return ErrSlotTaken
	}
	*slot = child
	c.parent = parent
	return nil
}

// rotate moves x above its parent.
func (f *Forest[T]) rotate(x Node) {
	xl := f.nodes.At(x)
	p := xl.parent
	pl := f.nodes.At(p)
	g := pl.parent

	if pl.left == x {
		pl.left = xl.right
		if xl.right != Nil {
			f.nodes.At(xl.right).parent = p
		}
		xl.right = p
	} else {
		pl.right = xl.left
		if xl.left != Nil {
			f.nodes.At(xl.left).parent = p
		}
		xl.left = p
	}
	pl.parent = x
	xl.parent = g
	if g != Nil {
		gl := f.nodes.At(g)
		if gl.left == p {
			gl.left = x
		} else {
			gl.right = x
		}
	}
}

// Splay rotates x to the root of its tree and returns it.
func (f *Forest[T]) Splay(x Node) Node {
	if !f.nodes.Valid(x) {
		return Nil
	}
	for {
		p := f.Parent(x)
		if p == Nil {
			return x
		}
		g := f.Parent(p)
		switch {
		case g == Nil:
			f.rotate(x)
		case (f.Left(g) == p) == (f.Left(p) == x):
			f.rotate(p)
			f.rotate(x)
		default:
			f.rotate(x)
			f.rotate(x)
		}
	}
}

// Delete unlinks x from its tree and returns the tree's new root, which is
// Nil if x was the only node. The node itself is not freed.
func (f *Forest[T]) Delete(x Node) Node {
	if !f.nodes.Valid(x) {
		return Nil
	}
	f.Splay(x)
	xl := f.nodes.At(x)
	left, right := xl.left, xl.right
	xl.left, xl.right = Nil, Nil

	if left == Nil {
		if right != Nil {
			f.nodes.At(right).parent = Nil
		}
		return right
	}
	f.nodes.At(left).parent = Nil
	if right == Nil {
		return left
	}

	m := f.maximum(left)
	f.Splay(m)
	f.nodes.At(m).right = right
	f.nodes.At(right).parent = m
	return m
}

// DeleteNoSplay unlinks x without restructuring the rest of the tree, updating
// *root if the root changes.
func (f *Forest[T]) DeleteNoSplay(x Node, root *Node) {
	xl := f.nodes.At(x)
	if xl == nil {
		return
	}
	switch {
	case xl.left == Nil:
		f.transplant(x, xl.right, root)
	case xl.right == Nil:
		f.transplant(x, xl.left, root)
	default:
		y := f.minimum(xl.right)
		yl := f.nodes.At(y)
		if yl.parent != x {
			f.transplant(y, yl.right, root)
			yl.right = xl.right
			f.nodes.At(yl.right).parent = y
		}
		f.transplant(x, y, root)
		yl.left = xl.left
		f.nodes.At(yl.left).parent = y
	}
	xl.parent, xl.left, xl.right = Nil, Nil, Nil
}

func (f *Forest[T]) transplant(u, v Node, root *Node) {
	ul := f.nodes.At(u)
	if ul.parent == Nil {
		*root = v
	} else if pl := f.nodes.At(ul.parent); pl.left == u {
		pl.left = v
	} else {
		pl.right = v
	}
	if v != Nil {
		f.nodes.At(v).parent = ul.parent
	}
}

func (f *Forest[T]) minimum(x Node) Node {
	for x != Nil {
		l := f.nodes.At(x).left
		if l == Nil {
			return x
		}
		x = l
	}
	return Nil
}

func (f *Forest[T]) maximum(x Node) Node {
	for x != Nil {
		r := f.nodes.At(x).right
		if r == Nil {
			return x
		}
		x = r
	}
	return Nil
}

// Minimum returns the leftmost node of the tree rooted at root.
func (f *Forest[T]) Minimum(root Node) Node {
	if !f.nodes.Valid(root) {
		return Nil
	}
	return f.minimum(root)
}

// Maximum returns the rightmost node of the tree rooted at root.
func (f *Forest[T]) Maximum(root Node) Node {
	if !f.nodes.Valid(root) {
		return Nil
	}
	return f.maximum(root)
}

// SubtreeSuccessor returns the smallest node in x's right subtree.
func (f *Forest[T]) SubtreeSuccessor(x Node) Node {
	return f.minimum(f.Right(x))
}

// SubtreePredecessor returns the largest node in x's left subtree.
func (f *Forest[T]) SubtreePredecessor(x Node) Node {
	return f.maximum(f.Left(x))
}

// RealSuccessor returns the in-order successor of x in its whole tree.
func (f *Forest[T]) RealSuccessor(x Node) Node {
	if s := f.SubtreeSuccessor(x); s != Nil {
		return s
	}
	p := f.Parent(x)
	for p != Nil && f.Right(p) == x {
		x = p
		p = f.Parent(p)
	}
	return p
}

// RealPredecessor returns the in-order predecessor of x in its whole tree.
func (f *Forest[T]) RealPredecessor(x Node) Node {
	if s := f.SubtreePredecessor(x); s != Nil {
		return s
	}
	p := f.Parent(x)
	for p != Nil && f.Left(p) == x {
		x = p
		p = f.Parent(p)
	}
	return p
}
