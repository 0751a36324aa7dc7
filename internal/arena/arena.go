// Package arena provides the index-addressed node storage used by the rtl
// containers.
//
// Containers link their nodes through Refs instead of pointers. A Ref packs
// the slot index with the slot's generation, so a Ref that outlives its node
// is detected instead of silently aliasing whatever reused the slot.
//
// Pointers returned by At are only valid until the next Alloc: growing the
// backing slice moves every slot.
//
// NOT thread-safe. The owning container serializes access.
package arena

import (
	"log/slog"

	"github.com/joshuapare/rtlkit/pkg/logger"
)

// Ref addresses a slot: low 32 bits are index+1, high 32 bits the generation.
type Ref uint64

// Nil is the zero Ref. It never addresses a slot.
const Nil Ref = 0

// defaultCapacity is the slot capacity reserved when no hint is given.
const defaultCapacity = 16

func makeRef(idx, gen uint32) Ref {
	return Ref(uint64(gen)<<32 | uint64(idx+1))
}

func (r Ref) index() int {
	return int(uint32(r)) - 1
}

func (r Ref) generation() uint32 {
	return uint32(r >> 32)
}

type slot[T any] struct {
	val  T
	gen  uint32
	live bool
}

// Stats reports arena metrics.
type Stats struct {
	Live     int // Slots currently allocated
	Capacity int // Slots backed by memory
	Allocs   int // Total Alloc calls
	Frees    int // Total successful Free calls
	Grows    int // Times the backing slice was reallocated
}

// Arena is a slab of T slots with LIFO slot reuse.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	stats Stats
}

// New creates an arena with room for capHint slots before the first growth.
func New[T any](capHint int) *Arena[T] {
	if capHint <= 0 {
		capHint = defaultCapacity
	}
	return &Arena[T]{
		slots: make([]slot[T], 0, capHint),
	}
}

// Alloc stores v in a free slot and returns its Ref.
func (a *Arena[T]) Alloc(v T) Ref {
	a.stats.Allocs++
	a.stats.Live++

	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.val = v
		s.live = true
		return makeRef(idx, s.gen)
	}

	if len(a.slots) == cap(a.slots) {
		a.stats.Grows++
		if logger.Enabled(slog.LevelDebug) {
			logger.Debug("arena grow", "from", cap(a.slots), "live", a.stats.Live-1)
		}
	}
	idx := uint32(len(a.slots))
	a.slots = append(a.slots, slot[T]{val: v, live: true})
	return makeRef(idx, 0)
}

// Free releases the slot addressed by r. The slot's value is zeroed so the
// arena does not keep caller payloads reachable.
func (a *Arena[T]) Free(r Ref) error {
	idx := r.index()
	if r == Nil || idx < 0 || idx >= len(a.slots) {
		return ErrBadRef
	}
	s := &a.slots[idx]
	if s.gen != r.generation() {
		return ErrBadRef
	}
	if !s.live {
		return ErrDoubleFree
	}

	var zero T
	s.val = zero
	s.live = false
	s.gen++
	a.free = append(a.free, uint32(idx))

	a.stats.Frees++
	a.stats.Live--
	return nil
}

// At returns a pointer to the value addressed by r, or nil if r is not live.
func (a *Arena[T]) At(r Ref) *T {
	idx := r.index()
	if r == Nil || idx < 0 || idx >= len(a.slots) {
		return nil
	}
	s := &a.slots[idx]
	if !s.live || s.gen != r.generation() {
		return nil
	}
	return &s.val
}

// Valid reports whether r addresses a live slot.
func (a *Arena[T]) Valid(r Ref) bool {
	return a.At(r) != nil
}

// Live returns the number of allocated slots.
func (a *Arena[T]) Live() int {
	return a.stats.Live
}

// Reset frees every slot at once. Generations keep counting so Refs handed
// out before the reset stay invalid.
func (a *Arena[T]) Reset() {
	var zero T
	a.free = a.free[:0]
	for i := len(a.slots) - 1; i >= 0; i-- {
		s := &a.slots[i]
		if s.live {
			s.live = false
			s.gen++
			s.val = zero
		}
		a.free = append(a.free, uint32(i))
	}
	a.stats.Frees += a.stats.Live
	a.stats.Live = 0
}

// Stats returns a snapshot of the arena counters.
func (a *Arena[T]) Stats() Stats {
	st := a.stats
	st.Capacity = cap(a.slots)
	return st
}
