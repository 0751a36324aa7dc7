// Package prefix implements a prefix table: a set of names queried for the
// longest stored prefix of a given name.
//
// The table is a tree of splay trees. Each level holds groups ordered by
// case-folded prefix, and no prefix in a level is a prefix of another. A
// group keeps the entries whose prefixes fold to the same string (the
// case-alternate chain) and a child level holding every longer prefix that
// extends it. A lookup walks down one group per level and splays each
// matched group to the root of its level.
//
// Entries are owned by the caller. The table only allocates its internal
// group nodes.
//
// NOT thread-safe.
package prefix

import (
	"iter"
	"strings"

	"golang.org/x/text/cases"

	"github.com/joshuapare/rtlkit/rtl/splay"
)

// Entry is a caller-owned table entry.
type Entry[V any] struct {
	Value V

	prefix string
	table  *Table[V]
	group  splay.Node
	next   *Entry[V] // case-alternate chain
}

// Prefix returns the prefix e was inserted under, or "" if e is not linked.
func (e *Entry[V]) Prefix() string {
	return e.prefix
}

// Linked reports whether e is currently in a table.
func (e *Entry[V]) Linked() bool {
	return e.table != nil
}

type group[V any] struct {
	key   string // folded prefix
	head  *Entry[V]
	child splay.Node // root of the level of longer prefixes
	owner splay.Node // group whose child level holds this one; Nil at top
}

// Table is a prefix table.
type Table[V any] struct {
	fold   func(string) string
	forest *splay.Forest[group[V]]
	root   splay.Node
	count  int

	enumNext    *Entry[V]
	enumStarted bool
}

type config struct {
	fold     func(string) string
	capacity int
}

// Option configures a Table.
type Option func(*config)

// WithFolder sets the function mapping names to their case-insensitive form.
// It must preserve prefix relationships. The default is Unicode case folding.
func WithFolder(fold func(string) string) Option {
	return func(c *config) { c.fold = fold }
}

// WithCapacity reserves storage for n distinct folded prefixes.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// New creates an empty prefix table.
func New[V any](opts ...Option) *Table[V] {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.fold == nil {
		cfg.fold = cases.Fold().String
	}
	return &Table[V]{
		fold:   cfg.fold,
		forest: splay.NewForest[group[V]](cfg.capacity),
	}
}

// Len returns the number of linked entries.
func (t *Table[V]) Len() int {
	return t.count
}

func (t *Table[V]) g(x splay.Node) *group[V] {
	return t.forest.Value(x)
}

func (t *Table[V]) levelRoot(owner splay.Node) splay.Node {
	if owner == splay.Nil {
		return t.root
	}
	return t.g(owner).child
}

func (t *Table[V]) setLevelRoot(owner, root splay.Node) {
	if owner == splay.Nil {
		t.root = root
		return
	}
	t.g(owner).child = root
}

// floor returns the group with the greatest key <= key in the level.
func (t *Table[V]) floor(root splay.Node, key string) splay.Node {
	best := splay.Nil
	for x := root; x != splay.Nil; {
		if t.g(x).key <= key {
			best = x
			x = t.forest.Right(x)
		} else {
			x = t.forest.Left(x)
		}
	}
	return best
}

// ceiling returns the group with the smallest key >= key in the level.
func (t *Table[V]) ceiling(root splay.Node, key string) splay.Node {
	best := splay.Nil
	for x := root; x != splay.Nil; {
		if t.g(x).key >= key {
			best = x
			x = t.forest.Left(x)
		} else {
			x = t.forest.Right(x)
		}
	}
	return best
}

// insertNode links the unlinked group x into owner's level.
func (t *Table[V]) insertNode(owner, x splay.Node) {
	t.g(x).owner = owner
	root := t.levelRoot(owner)
	if root == splay.Nil {
		t.setLevelRoot(owner, x)
		return
	}
	key := t.g(x).key
	for p := root; ; {
		if key < t.g(p).key {
			if l := t.forest.Left(p); l != splay.Nil {
				p = l
				continue
			}
			_ = t.forest.InsertAsLeftChild(p, x)
		} else {
			if r := t.forest.Right(p); r != splay.Nil {
				p = r
				continue
			}
			_ = t.forest.InsertAsRightChild(p, x)
		}
		break
	}
	t.setLevelRoot(owner, t.forest.Splay(x))
}

func (t *Table[V]) removeNode(owner, x splay.Node) {
	t.setLevelRoot(owner, t.forest.Delete(x))
}

// Insert links e under prefix. It fails if e is already linked or if a
// byte-identical prefix is present; the table is unchanged on failure.
func (t *Table[V]) Insert(prefix string, e *Entry[V]) bool {
	if e == nil || e.table != nil {
		return false
	}
	folded := t.fold(prefix)

	owner := splay.Nil
	for {
		f := t.floor(t.levelRoot(owner), folded)
		if f == splay.Nil {
			break
		}
		key := t.g(f).key
		if key == folded {
			last := t.g(f).head
			for a := last; a != nil; a = a.next {
				if a.prefix == prefix {
					return false
				}
				last = a
			}
			last.next = e
			t.link(e, prefix, f)
			t.setLevelRoot(owner, t.forest.Splay(f))
			return true
		}
		if !strings.HasPrefix(folded, key) {
			break
		}
		owner = f
	}

	x := t.forest.NewNode(group[V]{key: folded, head: e})
	// Longer prefixes already in this level move under the new group.
	for {
		c := t.ceiling(t.levelRoot(owner), folded)
		if c == splay.Nil || !strings.HasPrefix(t.g(c).key, folded) {
			break
		}
		t.removeNode(owner, c)
		t.insertNode(x, c)
	}
	t.insertNode(owner, x)
	t.link(e, prefix, x)
	return true
}

func (t *Table[V]) link(e *Entry[V], prefix string, x splay.Node) {
	e.prefix = prefix
	e.table = t
	e.group = x
	e.next = nil
	t.count++
}

// Remove unlinks e. It reports false if e is not in this table.
func (t *Table[V]) Remove(e *Entry[V]) bool {
	if e == nil || e.table != t {
		return false
	}
	if t.enumNext == e {
		t.enumNext = t.successor(e)
	}

	x := e.group
	g := t.g(x)
	if g.head == e {
		g.head = e.next
	} else {
		for a := g.head; a != nil; a = a.next {
			if a.next == e {
				a.next = e.next
				break
			}
		}
	}

	if g.head == nil {
		owner, child := g.owner, g.child
		g.child = splay.Nil
		t.removeNode(owner, x)
		// The emptied group's longer prefixes rejoin the parent level.
		for child != splay.Nil {
			c := child
			child = t.forest.Delete(c)
			t.insertNode(owner, c)
		}
		_ = t.forest.Free(x)
	}

	*e = Entry[V]{Value: e.Value}
	t.count--
	return true
}

// FindLongestPrefix returns the entry with the longest prefix of name. A
// case-insensitive search matches on folded names and returns the first
// case-alternate of the matched prefix; a case-sensitive search only
// accepts alternates that are byte-wise prefixes of name.
func (t *Table[V]) FindLongestPrefix(name string, caseInsensitive bool) (*Entry[V], bool) {
	folded := t.fold(name)
	var best *Entry[V]

	owner := splay.Nil
	for {
		f := t.floor(t.levelRoot(owner), folded)
		if f == splay.Nil || !strings.HasPrefix(folded, t.g(f).key) {
			break
		}
		t.setLevelRoot(owner, t.forest.Splay(f))

		g := t.g(f)
		if caseInsensitive {
			best = g.head
		} else {
			for a := g.head; a != nil; a = a.next {
				if strings.HasPrefix(name, a.prefix) {
					best = a
					break
				}
			}
		}
		if len(g.key) == len(folded) {
			break
		}
		owner = f
	}
	return best, best != nil
}

// Next enumerates every entry, one per call, in folded-prefix order with
// case-alternates in insertion order. Pass restart to begin again. Entries
// inserted during an enumeration may or may not be returned; removing the
// entry that would be returned next is safe.
func (t *Table[V]) Next(restart bool) (*Entry[V], bool) {
	if restart || !t.enumStarted {
		t.enumStarted = true
		t.enumNext = t.first()
	}
	e := t.enumNext
	if e == nil {
		return nil, false
	}
	t.enumNext = t.successor(e)
	return e, true
}

// All returns an iterator over every entry in the order Next uses. The
// table must not be modified during iteration.
func (t *Table[V]) All() iter.Seq[*Entry[V]] {
	return func(yield func(*Entry[V]) bool) {
		for e := t.first(); e != nil; e = t.successor(e) {
			if !yield(e) {
				return
			}
		}
	}
}

func (t *Table[V]) first() *Entry[V] {
	m := t.forest.Minimum(t.root)
	if m == splay.Nil {
		return nil
	}
	return t.g(m).head
}

func (t *Table[V]) successor(e *Entry[V]) *Entry[V] {
	if e.next != nil {
		return e.next
	}
	x := t.nextGroup(e.group)
	if x == splay.Nil {
		return nil
	}
	return t.g(x).head
}

// nextGroup returns the group after x in a depth-first walk, which is the
// order of folded keys.
func (t *Table[V]) nextGroup(x splay.Node) splay.Node {
	if child := t.g(x).child; child != splay.Nil {
		return t.forest.Minimum(child)
	}
	for x != splay.Nil {
		if s := t.forest.RealSuccessor(x); s != splay.Nil {
			return s
		}
		x = t.g(x).owner
	}
	return splay.Nil
}
