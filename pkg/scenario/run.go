package scenario

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/joshuapare/rtlkit/pkg/logger"
	"github.com/joshuapare/rtlkit/rtl"
	"github.com/joshuapare/rtlkit/rtl/avl"
	"github.com/joshuapare/rtlkit/rtl/bitmap"
	"github.com/joshuapare/rtlkit/rtl/hashtable"
	"github.com/joshuapare/rtlkit/rtl/prefix"
	"github.com/joshuapare/rtlkit/rtl/signature"
	"github.com/joshuapare/rtlkit/rtl/splay"
)

// Report is the outcome of running a scenario.
type Report struct {
	Name   string        `json:"name" yaml:"name"`
	Table  *TableReport  `json:"table,omitempty" yaml:"table,omitempty"`
	Hash   *HashReport   `json:"hash,omitempty" yaml:"hash,omitempty"`
	Bitmap *BitmapReport `json:"bitmap,omitempty" yaml:"bitmap,omitempty"`
	Prefix *PrefixReport `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// TableReport summarizes an ordered table workload.
type TableReport struct {
	Kind       string `json:"kind" yaml:"kind"`
	Inserted   int    `json:"inserted" yaml:"inserted"`
	Duplicates int    `json:"duplicates" yaml:"duplicates"`
	Deleted    int    `json:"deleted" yaml:"deleted"`
	Missing    int    `json:"missing" yaml:"missing"`
	Len        int    `json:"len" yaml:"len"`
	First      int    `json:"first" yaml:"first"`
	Last       int    `json:"last" yaml:"last"`
	Nth        []int  `json:"nth,omitempty" yaml:"nth,omitempty"`
}

// HashReport summarizes a hash table workload.
type HashReport struct {
	Inserted   int             `json:"inserted" yaml:"inserted"`
	Removed    int             `json:"removed" yaml:"removed"`
	Found      int             `json:"found" yaml:"found"`
	Missing    int             `json:"missing" yaml:"missing"`
	Enumerated int             `json:"enumerated" yaml:"enumerated"`
	Stats      hashtable.Stats `json:"stats" yaml:"stats"`
}

// Claim is one FindAndSetRun request and its outcome.
type Claim struct {
	Length int  `json:"length" yaml:"length"`
	Start  int  `json:"start" yaml:"start"`
	OK     bool `json:"ok" yaml:"ok"`
}

// BitmapReport summarizes a bitmap workload.
type BitmapReport struct {
	Size         int        `json:"size" yaml:"size"`
	Word         int        `json:"word" yaml:"word"`
	Claims       []Claim    `json:"claims" yaml:"claims"`
	Set          int        `json:"set" yaml:"set"`
	LongestClear bitmap.Run `json:"longest_clear" yaml:"longest_clear"`
}

// Match is the outcome of one prefix query.
type Match struct {
	Name   string `json:"name" yaml:"name"`
	Prefix string `json:"prefix" yaml:"prefix"`
	Found  bool   `json:"found" yaml:"found"`
}

// PrefixReport summarizes a prefix table workload.
type PrefixReport struct {
	Entries int     `json:"entries" yaml:"entries"`
	Removed int     `json:"removed" yaml:"removed"`
	Matches []Match `json:"matches" yaml:"matches"`
}

// Run executes every section of s.
func Run(s *Scenario) (*Report, error) {
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))
	rep := &Report{Name: s.Name}

	if s.Table != nil {
		rep.Table = runTable(s.Table, rng)
	}
	if s.Hash != nil {
		hr, err := runHash(s.Hash)
		if err != nil {
			return nil, fmt.Errorf("hash: %w", err)
		}
		rep.Hash = hr
	}
	if s.Bitmap != nil {
		var br *BitmapReport
		var err error
		if s.Bitmap.Word == 32 {
			br, err = runBitmap[uint32](s.Bitmap)
		} else {
			br, err = runBitmap[uint64](s.Bitmap)
		}
		if err != nil {
			return nil, fmt.Errorf("bitmap: %w", err)
		}
		rep.Bitmap = br
	}
	if s.Prefix != nil {
		rep.Prefix = runPrefix(s.Prefix)
	}
	logger.Info("scenario complete", "name", s.Name)
	return rep, nil
}

// orderedTable is the surface shared by the AVL and splay tables.
type orderedTable interface {
	Insert(int) (int, bool)
	Delete(int) bool
	Lookup(int) (int, bool)
	Nth(int) (int, bool)
	Len() int
}

type splayTable struct {
	*splay.Table[int]
}

// Nth on a splay table is by insertion order; report sorted rank instead
// so both kinds are comparable.
func (t splayTable) Nth(i int) (int, bool) {
	var c splay.Cursor[int]
	for v, ok := t.Next(&c); ok; v, ok = t.Next(&c) {
		if i == 0 {
			return v, true
		}
		i--
	}
	return 0, false
}

func runTable(sec *TableSection, rng *rand.Rand) *TableReport {
	var tbl orderedTable
	switch sec.Kind {
	case KindSplay:
		tbl = splayTable{splay.NewTable(rtl.Ordered[int], 0)}
	default:
		tbl = avl.New(rtl.Ordered[int])
	}

	rep := &TableReport{Kind: sec.Kind}
	keys := sec.Insert.Values()
	if sec.Shuffle {
		rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	}
	for _, k := range keys {
		if _, ok := tbl.Insert(k); ok {
			rep.Inserted++
		} else {
			rep.Duplicates++
		}
	}
	for _, k := range sec.Delete.Values() {
		if tbl.Delete(k) {
			rep.Deleted++
		} else {
			rep.Missing++
		}
	}

	rep.Len = tbl.Len()
	if rep.Len > 0 {
		rep.First, _ = tbl.Nth(0)
		rep.Last, _ = tbl.Nth(rep.Len - 1)
	}
	for _, i := range sec.Nth {
		if v, ok := tbl.Nth(i); ok {
			rep.Nth = append(rep.Nth, v)
		}
	}
	return rep
}

func sigFunc(name string) func(int) uint64 {
	switch name {
	case SigFNV:
		return func(k int) uint64 { return signature.FNV1a64([]byte(strconv.Itoa(k))) }
	case SigX65599:
		return func(k int) uint64 { return uint64(signature.X65599(strconv.Itoa(k), false)) }
	default:
		return func(k int) uint64 { return uint64(k) }
	}
}

func runHash(sec *HashSection) (*HashReport, error) {
	var flags hashtable.Flags
	if sec.NoExpand {
		flags |= hashtable.FlagNoAutoExpand
	}
	if sec.NoShrink {
		flags |= hashtable.FlagNoAutoContract
	}
	tbl, err := hashtable.New[int](sec.Shift, flags)
	if err != nil {
		return nil, err
	}
	defer tbl.Destroy()

	sig := sigFunc(sec.Signature)
	rep := &HashReport{}
	handles := make(map[int]hashtable.Handle)
	for _, k := range sec.Insert.Values() {
		h, err := tbl.Insert(k, sig(k))
		if err != nil {
			return nil, err
		}
		handles[k] = h
		rep.Inserted++
	}
	for _, k := range sec.Remove.Values() {
		h, ok := handles[k]
		if !ok {
			continue
		}
		removed, err := tbl.Remove(h)
		if err != nil {
			return nil, err
		}
		if removed {
			rep.Removed++
			delete(handles, k)
		}
	}
	for _, k := range sec.Lookup.Values() {
		if findValue(tbl, sig(k), k) {
			rep.Found++
		} else {
			rep.Missing++
		}
	}

	if sec.Enumerate != "" {
		var en *hashtable.Enumerator[int]
		switch sec.Enumerate {
		case EnumStrong:
			en, err = tbl.BeginStrong()
		case EnumDestructive:
			en, err = tbl.BeginDestructive()
		default:
			en, err = tbl.BeginWeak()
		}
		if err != nil {
			return nil, err
		}
		for _, _, ok := en.Next(); ok; _, _, ok = en.Next() {
			rep.Enumerated++
		}
		en.End()
	}
	rep.Stats = tbl.Stats()
	return rep, nil
}

// findValue reports whether an entry with signature sig holds v. Hashed
// signatures may collide, so every match is checked.
func findValue(tbl *hashtable.Table[int], sig uint64, v int) bool {
	var ctx hashtable.LookupContext
	for _, got, ok := tbl.LookupFirst(sig, &ctx); ok; _, got, ok = tbl.NextMatch(&ctx) {
		if got == v {
			return true
		}
	}
	return false
}

func runBitmap[W bitmap.Word](sec *BitmapSection) (*BitmapReport, error) {
	var (
		b       *bitmap.Bitmap[W]
		release = func() error { return nil }
		err     error
	)
	if sec.Mapped {
		b, release, err = bitmap.NewMapped[W](sec.Size)
	} else {
		b, err = bitmap.New[W](sec.Size)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = release() }()

	rep := &BitmapReport{Size: sec.Size, Word: sec.Word}
	for _, n := range sec.Claims {
		start, ok := b.FindAndSetRun(n)
		rep.Claims = append(rep.Claims, Claim{Length: n, Start: start, OK: ok})
	}
	for _, i := range sec.Release {
		c := rep.Claims[i]
		if !c.OK {
			continue
		}
		if err := b.ClearRange(c.Start, c.Length); err != nil {
			return nil, err
		}
	}
	rep.Set = b.NumberOfSet()
	rep.LongestClear = b.LongestClearRun()
	return rep, nil
}

func runPrefix(sec *PrefixSection) *PrefixReport {
	tbl := prefix.New[string]()
	entries := make(map[string]*prefix.Entry[string], len(sec.Prefixes))
	for _, p := range sec.Prefixes {
		e := &prefix.Entry[string]{Value: p}
		if tbl.Insert(p, e) {
			entries[p] = e
		}
	}

	rep := &PrefixReport{}
	for _, p := range sec.Remove {
		if e, ok := entries[p]; ok && tbl.Remove(e) {
			rep.Removed++
		}
	}
	rep.Entries = tbl.Len()
	for _, q := range sec.Queries {
		m := Match{Name: q.Name}
		if e, ok := tbl.FindLongestPrefix(q.Name, q.CaseInsensitive); ok {
			m.Prefix, m.Found = e.Value, true
		}
		rep.Matches = append(rep.Matches, m)
	}
	return rep
}
