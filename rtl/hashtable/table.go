package hashtable

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/rtlkit/internal/arena"
	"github.com/joshuapare/rtlkit/pkg/logger"
)

// Flags alter automatic resizing.
type Flags uint32

const (
	// FlagNoAutoExpand disables the split performed by Insert.
	FlagNoAutoExpand Flags = 1 << iota

	// FlagNoAutoContract disables the merge performed by Remove.
	FlagNoAutoContract
)

const (
	// MaxShift bounds the table at 2^MaxShift buckets.
	MaxShift = 30

	// DefaultMaxLoad is the average chain length above which Insert expands.
	DefaultMaxLoad = 4.0

	// DefaultMinLoad is the average chain length below which Remove contracts.
	DefaultMinLoad = 1.0
)

// Handle addresses an inserted entry. The zero Handle is never valid.
type Handle uint64

type entry[V any] struct {
	value      V
	sig        uint64
	prev, next arena.Ref
	bucket     uint32
	sentinel   bool // weak enumerator placeholder, invisible to lookups
}

// Table is a dynamic hash table.
type Table[V any] struct {
	entries *arena.Arena[entry[V]]
	heads   []arena.Ref

	shift       uint
	pivot       int
	initialSize int

	flags            Flags
	maxLoad, minLoad float64
	count            int

	weak, strong, destructive int
	destroyed                 bool
}

type config struct {
	maxLoad, minLoad float64
	capacity         int
}

// Option configures a Table.
type Option func(*config)

// WithLoadFactors sets the average chain lengths that trigger automatic
// expansion and contraction. minLoad may be zero to never contract
// automatically.
func WithLoadFactors(maxLoad, minLoad float64) Option {
	return func(c *config) {
		c.maxLoad = maxLoad
		c.minLoad = minLoad
	}
}

// WithCapacity reserves entry storage for n entries.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// New creates a table with 2^shift buckets. The table never contracts
// below that size.
func New[V any](shift uint, flags Flags, opts ...Option) (*Table[V], error) {
	if shift >= MaxShift {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrBadShift, shift, MaxShift-1)
	}
	cfg := config{maxLoad: DefaultMaxLoad, minLoad: DefaultMinLoad}
	for _, o := range opts {
		o(&cfg)
	}
	// Written as negations so NaN fails both checks.
	if !(cfg.minLoad >= 0) || !(cfg.maxLoad > cfg.minLoad) {
		return nil, fmt.Errorf("%w: max %.2f, min %.2f", ErrBadLoadFactors, cfg.maxLoad, cfg.minLoad)
	}

	size := 1 << shift
	return &Table[V]{
		entries:     arena.New[entry[V]](cfg.capacity),
		heads:       make([]arena.Ref, size),
		shift:       shift,
		initialSize: size,
		flags:       flags,
		maxLoad:     cfg.maxLoad,
		minLoad:     cfg.minLoad,
	}, nil
}

// Destroy tears the table down and returns how many entries were still
// linked. Every later call fails with ErrDestroyed or reports not-found.
func (t *Table[V]) Destroy() int {
	if t.destroyed {
		return 0
	}
	n := t.count
	t.entries.Reset()
	t.heads = nil
	t.count = 0
	t.weak, t.strong, t.destructive = 0, 0, 0
	t.destroyed = true
	logger.Debug("hashtable destroyed", "entries", n)
	return n
}

// Len returns the number of entries.
func (t *Table[V]) Len() int {
	return t.count
}

type op int

const (
	opInsert op = iota
	opRemove
	opResize
	opBeginWeak
	opBeginExclusive // strong or destructive
)

// guard is the single admission check for every mutating entry point.
func (t *Table[V]) guard(o op) error {
	if t.destroyed {
		return ErrDestroyed
	}
	busy := false
	switch o {
	case opInsert, opRemove:
		busy = t.strong > 0
	case opResize, opBeginExclusive:
		busy = t.strong > 0 || t.destructive > 0
	}
	if busy {
		logger.Debug("hashtable busy", "op", o.String(), "strong", t.strong, "destructive", t.destructive)
		return ErrBusy
	}
	return nil
}

func (o op) String() string {
	switch o {
	case opInsert:
		return "insert"
	case opRemove:
		return "remove"
	case opResize:
		return "resize"
	case opBeginWeak:
		return "begin-weak"
	default:
		return "begin-exclusive"
	}
}

// autoResize reports whether Insert and Remove may resize on their own.
func (t *Table[V]) autoResize() bool {
	return t.strong == 0 && t.destructive == 0
}

func (t *Table[V]) size() int {
	return len(t.heads)
}

func (t *Table[V]) mask() uint64 {
	return uint64(1)<<t.shift - 1
}

func (t *Table[V]) bucketOf(sig uint64) int {
	b := int(sig & t.mask())
	if b < t.pivot {
		b = int(sig & (t.mask()<<1 | 1))
	}
	return b
}

func (t *Table[V]) at(r arena.Ref) *entry[V] {
	return t.entries.At(r)
}

func (t *Table[V]) linkHead(b int, r arena.Ref) {
	e := t.at(r)
	e.bucket = uint32(b)
	e.prev = arena.Nil
	e.next = t.heads[b]
	if e.next != arena.Nil {
		t.at(e.next).prev = r
	}
	t.heads[b] = r
}

func (t *Table[V]) linkAfter(p, r arena.Ref) {
	pe, e := t.at(p), t.at(r)
	e.bucket = pe.bucket
	e.prev = p
	e.next = pe.next
	if e.next != arena.Nil {
		t.at(e.next).prev = r
	}
	pe.next = r
}

func (t *Table[V]) unlink(r arena.Ref) {
	e := t.at(r)
	if e.prev != arena.Nil {
		t.at(e.prev).next = e.next
	} else {
		t.heads[e.bucket] = e.next
	}
	if e.next != arena.Nil {
		t.at(e.next).prev = e.prev
	}
	e.prev, e.next = arena.Nil, arena.Nil
}

// Insert adds v under sig and returns its handle. Duplicate signatures are
// allowed. When the load factor is exceeded, one bucket is split.
func (t *Table[V]) Insert(v V, sig uint64) (Handle, error) {
	if err := t.guard(opInsert); err != nil {
		return 0, err
	}
	r := t.entries.Alloc(entry[V]{value: v, sig: sig})
	t.linkHead(t.bucketOf(sig), r)
	t.count++

	if t.flags&FlagNoAutoExpand == 0 && t.autoResize() &&
		float64(t.count) > t.maxLoad*float64(t.size()) {
		t.expand()
	}
	return Handle(r), nil
}

// Remove unlinks the entry addressed by h. It reports false for a stale
// handle. When the load factor drops low enough, one bucket pair is merged.
func (t *Table[V]) Remove(h Handle) (bool, error) {
	if err := t.guard(opRemove); err != nil {
		return false, err
	}
	r := arena.Ref(h)
	e := t.at(r)
	if e == nil || e.sentinel {
		return false, nil
	}
	t.unlink(r)
	_ = t.entries.Free(r)
	t.count--

	if t.flags&FlagNoAutoContract == 0 && t.autoResize() &&
		float64(t.count) < t.minLoad*float64(t.size()) {
		t.contract()
	}
	return true, nil
}

// Value returns the value of the entry addressed by h.
func (t *Table[V]) Value(h Handle) (V, bool) {
	if e := t.at(arena.Ref(h)); e != nil && !e.sentinel {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Signature returns the signature of the entry addressed by h.
func (t *Table[V]) Signature(h Handle) (uint64, bool) {
	if e := t.at(arena.Ref(h)); e != nil && !e.sentinel {
		return e.sig, true
	}
	return 0, false
}

// matchFrom returns the first entry with sig at or after r in its chain.
func (t *Table[V]) matchFrom(r arena.Ref, sig uint64) arena.Ref {
	for r != arena.Nil {
		e := t.at(r)
		if !e.sentinel && e.sig == sig {
			return r
		}
		r = e.next
	}
	return arena.Nil
}

// Lookup returns the first entry with signature sig.
func (t *Table[V]) Lookup(sig uint64) (Handle, V, bool) {
	var ctx LookupContext
	return t.LookupFirst(sig, &ctx)
}

// LookupContext carries the position of a multi-match lookup between
// LookupFirst and NextMatch. It is invalidated by any mutation of the table.
type LookupContext struct {
	sig  uint64
	last arena.Ref
}

// LookupFirst returns the first entry with signature sig and primes ctx for
// NextMatch.
func (t *Table[V]) LookupFirst(sig uint64, ctx *LookupContext) (Handle, V, bool) {
	*ctx = LookupContext{sig: sig}
	var zero V
	if t.destroyed {
		return 0, zero, false
	}
	r := t.matchFrom(t.heads[t.bucketOf(sig)], sig)
	return t.matched(r, ctx)
}

// NextMatch returns the next entry with the signature ctx was primed with.
func (t *Table[V]) NextMatch(ctx *LookupContext) (Handle, V, bool) {
	var zero V
	e := t.at(ctx.last)
	if e == nil {
		return 0, zero, false
	}
	return t.matched(t.matchFrom(e.next, ctx.sig), ctx)
}

func (t *Table[V]) matched(r arena.Ref, ctx *LookupContext) (Handle, V, bool) {
	ctx.last = r
	if r == arena.Nil {
		var zero V
		return 0, zero, false
	}
	return Handle(r), t.at(r).value, true
}

// Expand splits one bucket. It reports false if the table is at its
// maximum size.
func (t *Table[V]) Expand() (bool, error) {
	if err := t.guard(opResize); err != nil {
		return false, err
	}
	return t.expand(), nil
}

// Contract merges the last bucket into its split partner. It reports false
// if the table is at its initial size.
func (t *Table[V]) Contract() (bool, error) {
	if err := t.guard(opResize); err != nil {
		return false, err
	}
	return t.contract(), nil
}

func (t *Table[V]) expand() bool {
	if t.size() >= 1<<MaxShift {
		return false
	}
	half := 1 << t.shift
	src, dst := t.pivot, t.pivot+half
	t.heads = append(t.heads, arena.Nil)

	wide := t.mask()<<1 | 1
	for r := t.heads[src]; r != arena.Nil; {
		e := t.at(r)
		next := e.next
		if !e.sentinel && int(e.sig&wide) == dst {
			t.unlink(r)
			t.linkHead(dst, r)
		}
		r = next
	}

	t.pivot++
	if t.pivot == half {
		t.pivot = 0
		t.shift++
	}
	if logger.Enabled(slog.LevelDebug) {
		logger.Debug("hashtable expand", "split", src, "into", dst, "size", t.size(), "entries", t.count)
	}
	return true
}

func (t *Table[V]) contract() bool {
	if t.size() <= t.initialSize {
		return false
	}
	if t.pivot == 0 {
		t.shift--
		t.pivot = 1 << t.shift
	}
	t.pivot--
	dst := t.pivot
	src := dst + 1<<t.shift

	moved := t.heads[src]
	for r := moved; r != arena.Nil; r = t.at(r).next {
		t.at(r).bucket = uint32(dst)
	}
	if moved != arena.Nil {
		tail := arena.Nil
		for r := t.heads[dst]; r != arena.Nil; r = t.at(r).next {
			tail = r
		}
		if tail == arena.Nil {
			t.heads[dst] = moved
		} else {
			t.at(tail).next = moved
			t.at(moved).prev = tail
		}
	}
	t.heads = t.heads[:src]

	if logger.Enabled(slog.LevelDebug) {
		logger.Debug("hashtable contract", "merged", src, "into", dst, "size", t.size(), "entries", t.count)
	}
	return true
}

// Stats describes the table's addressing state.
type Stats struct {
	Shift             uint
	Pivot             int
	DivisorMask       uint64
	TableSize         int
	Entries           int
	NonEmptyBuckets   int
	LongestChain      int
	ActiveEnumerators int
}

// Stats returns a snapshot of table metrics. It walks every bucket.
func (t *Table[V]) Stats() Stats {
	st := Stats{
		Shift:             t.shift,
		Pivot:             t.pivot,
		DivisorMask:       t.mask(),
		TableSize:         t.size(),
		Entries:           t.count,
		ActiveEnumerators: t.weak + t.strong + t.destructive,
	}
	for _, head := range t.heads {
		n := 0
		for r := head; r != arena.Nil; r = t.at(r).next {
			if !t.at(r).sentinel {
				n++
			}
		}
		if n > 0 {
			st.NonEmptyBuckets++
		}
		st.LongestChain = max(st.LongestChain, n)
	}
	return st
}
