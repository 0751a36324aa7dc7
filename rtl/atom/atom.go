// Package atom implements an atom table: a reference-counted registry that
// maps case-insensitive names to 16-bit atoms.
//
// Atoms below MinStringAtom are integer atoms. They are written "#n" and
// are never stored: adding, deleting or pinning one always succeeds. String
// atoms are handed out from MinStringAtom upward, and each Add of an
// existing name takes another reference. Delete drops one reference and
// frees the atom at zero. A pinned atom is never freed by Delete.
//
// Names live in a dynamic hash table keyed by the signature of their case
// folding; atom numbers are allocated from a bitmap.
//
// A Table is safe for concurrent use.
package atom

import (
	"fmt"
	"iter"
	"math/bits"
	"strconv"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/joshuapare/rtlkit/pkg/logger"
	"github.com/joshuapare/rtlkit/rtl/bitmap"
	"github.com/joshuapare/rtlkit/rtl/hashtable"
	"github.com/joshuapare/rtlkit/rtl/signature"
)

// Atom identifies a name in a Table. The zero Atom is never valid.
type Atom uint16

const (
	// MinStringAtom is the first string atom. Smaller non-zero atoms are
	// integer atoms.
	MinStringAtom Atom = 0xC000

	// MaxNameLen bounds a name's length in UTF-16 code units.
	MaxNameLen = 255

	// DefaultBuckets is the initial bucket count of a new table.
	DefaultBuckets = 37

	maxStringAtoms = 1<<16 - int(MinStringAtom)
)

// IsInteger reports whether a is an integer atom.
func (a Atom) IsInteger() bool {
	return a != 0 && a < MinStringAtom
}

// Info describes an atom.
type Info struct {
	Name     string
	RefCount int
	Pinned   bool
}

type entry struct {
	atom   Atom
	name   string
	folded string
	refs   int
	pinned bool
	handle hashtable.Handle
}

// Table is an atom table.
type Table struct {
	mu      sync.Mutex
	names   *hashtable.Table[*entry]
	slots   *bitmap.Bitmap64
	entries []*entry // indexed by atom - MinStringAtom
}

type config struct {
	buckets int
}

// Option configures a Table.
type Option func(*config)

// WithBuckets sets the initial bucket count, rounded up to a power of two.
func WithBuckets(n int) Option {
	return func(c *config) { c.buckets = n }
}

// New creates an empty atom table.
func New(opts ...Option) (*Table, error) {
	cfg := config{buckets: DefaultBuckets}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.buckets <= 0 {
		return nil, fmt.Errorf("%w: %d buckets", ErrInvalidParameter, cfg.buckets)
	}
	shift := uint(bits.Len(uint(cfg.buckets - 1)))
	names, err := hashtable.New[*entry](min(shift, hashtable.MaxShift-1), 0)
	if err != nil {
		return nil, err
	}
	slots, err := bitmap.New[uint64](maxStringAtoms)
	if err != nil {
		return nil, err
	}
	return &Table{names: names, slots: slots}, nil
}

// integerAtom parses "#n". It reports ok = false for names that are not
// integer atom syntax, and an error for "#n" outside the integer range.
func integerAtom(name string) (Atom, bool, error) {
	digits, found := strings.CutPrefix(name, "#")
	if !found || digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(digits, 10, 16)
	if err != nil || n == 0 || Atom(n) >= MinStringAtom {
		return 0, true, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return Atom(n), true, nil
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if n := len(utf16.Encode([]rune(name))); n > MaxNameLen {
		return fmt.Errorf("%w: %d code units (max %d)", ErrInvalidName, n, MaxNameLen)
	}
	return nil
}

func (t *Table) find(name string) *entry {
	folded := signature.Fold(name)
	var ctx hashtable.LookupContext
	for _, e, ok := t.names.LookupFirst(signature.FNV1a64Unicode(name), &ctx); ok; _, e, ok = t.names.NextMatch(&ctx) {
		if e.folded == folded {
			return e
		}
	}
	return nil
}

func (t *Table) byAtom(a Atom) *entry {
	if a < MinStringAtom {
		return nil
	}
	i := int(a - MinStringAtom)
	if i >= len(t.entries) {
		return nil
	}
	return t.entries[i]
}

// Add returns the atom for name, creating it with one reference or taking
// another reference on an existing one. Names match case-insensitively;
// the first spelling added is kept.
func (t *Table) Add(name string) (Atom, error) {
	if a, ok, err := integerAtom(name); ok {
		return a, err
	}
	if err := checkName(name); err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.find(name); e != nil {
		e.refs++
		return e.atom, nil
	}

	i, ok := t.slots.FindClearAndSet(1, 0)
	if !ok {
		logger.Debug("atom table full", "atoms", t.names.Len())
		return 0, ErrTableFull
	}
	e := &entry{
		atom:   MinStringAtom + Atom(i),
		name:   name,
		folded: signature.Fold(name),
		refs:   1,
	}
	h, err := t.names.Insert(e, signature.FNV1a64Unicode(name))
	if err != nil {
		_ = t.slots.Clear(i)
		return 0, err
	}
	e.handle = h
	if i == len(t.entries) {
		t.entries = append(t.entries, e)
	} else {
		t.entries[i] = e
	}
	return e.atom, nil
}

// Lookup returns the atom for name without taking a reference.
func (t *Table) Lookup(name string) (Atom, error) {
	if a, ok, err := integerAtom(name); ok {
		return a, err
	}
	if err := checkName(name); err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.find(name); e != nil {
		return e.atom, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Delete drops one reference to a and frees it when none remain. Deleting
// a pinned atom changes nothing and returns ErrPinned.
func (t *Table) Delete(a Atom) error {
	if a.IsInteger() {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.byAtom(a)
	if e == nil {
		return fmt.Errorf("%w: %#04x", ErrInvalidAtom, uint16(a))
	}
	if e.pinned {
		return fmt.Errorf("%w: %q", ErrPinned, e.name)
	}
	e.refs--
	if e.refs > 0 {
		return nil
	}
	return t.free(e)
}

func (t *Table) free(e *entry) error {
	if _, err := t.names.Remove(e.handle); err != nil {
		return err
	}
	i := int(e.atom - MinStringAtom)
	t.entries[i] = nil
	return t.slots.Clear(i)
}

// Pin makes a permanent. Pinned atoms ignore Delete and survive Empty
// unless it is told to include them.
func (t *Table) Pin(a Atom) error {
	if a.IsInteger() {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.byAtom(a)
	if e == nil {
		return fmt.Errorf("%w: %#04x", ErrInvalidAtom, uint16(a))
	}
	e.pinned = true
	return nil
}

// Query describes a. Integer atoms report their "#n" name, one reference,
// and pinned.
func (t *Table) Query(a Atom) (Info, error) {
	if a.IsInteger() {
		return Info{Name: "#" + strconv.Itoa(int(a)), RefCount: 1, Pinned: true}, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.byAtom(a)
	if e == nil {
		return Info{}, fmt.Errorf("%w: %#04x", ErrInvalidAtom, uint16(a))
	}
	return Info{Name: e.name, RefCount: e.refs, Pinned: e.pinned}, nil
}

// Empty frees every string atom regardless of its references, skipping
// pinned atoms unless includePinned is set. It returns how many atoms were
// freed.
func (t *Table) Empty(includePinned bool) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if includePinned {
		return t.drain()
	}

	en, err := t.names.BeginWeak()
	if err != nil {
		return 0, err
	}
	defer en.End()
	freed, kept := 0, 0
	for _, e, ok := en.Next(); ok; _, e, ok = en.Next() {
		if e.pinned {
			kept++
			continue
		}
		if err := t.free(e); err != nil {
			return freed, err
		}
		freed++
	}
	logger.Debug("atom table emptied", "freed", freed, "kept", kept)
	return freed, nil
}

// drain frees every atom through a destructive enumeration.
func (t *Table) drain() (int, error) {
	en, err := t.names.BeginDestructive()
	if err != nil {
		return 0, err
	}
	defer en.End()
	freed := 0
	for _, _, ok := en.Next(); ok; _, _, ok = en.Next() {
		freed++
	}
	t.slots.ClearAll()
	clear(t.entries)
	t.entries = t.entries[:0]
	logger.Debug("atom table emptied", "freed", freed, "kept", 0)
	return freed, nil
}

// Len returns the number of string atoms.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.names.Len()
}

// All returns an iterator over the string atoms in ascending order. The
// table is locked for the duration of the iteration, so the loop body must
// not call back into it.
func (t *Table) All() iter.Seq2[Atom, Info] {
	return func(yield func(Atom, Info) bool) {
		t.mu.Lock()
		defer t.mu.Unlock()
		for _, e := range t.entries {
			if e == nil {
				continue
			}
			if !yield(e.atom, Info{Name: e.name, RefCount: e.refs, Pinned: e.pinned}) {
				return
			}
		}
	}
}

// Destroy releases the table. Later calls fail with an error wrapping
// hashtable.ErrDestroyed or report the atom as invalid.
func (t *Table) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.names.Destroy()
	t.slots.ClearAll()
	t.entries = nil
}
