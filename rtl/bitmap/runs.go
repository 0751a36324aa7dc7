package bitmap

import (
	"cmp"
	"slices"
)

// Run is a maximal range of equal bits.
type Run struct {
	Start  int
	Length int
}

// find searches for n consecutive value bits, first in [hint, size) and
// then wrapping to the runs that start before hint.
func (b *Bitmap[W]) find(n, hint int, value bool) (int, bool) {
	if n <= 0 || n > b.size {
		return 0, false
	}
	if hint < 0 || hint >= b.size {
		hint = 0
	}
	if s := b.findRun(n, hint, b.size, value); s >= 0 {
		return s, true
	}
	if hint > 0 {
		if s := b.findRun(n, 0, min(hint+n-1, b.size), value); s >= 0 {
			return s, true
		}
	}
	return 0, false
}

// FindClear returns the start of the first run of n clear bits at or after
// hint, wrapping to the beginning if none is found before the end.
func (b *Bitmap[W]) FindClear(n, hint int) (int, bool) {
	return b.find(n, hint, false)
}

// FindSet returns the start of the first run of n set bits, searching like
// FindClear.
func (b *Bitmap[W]) FindSet(n, hint int) (int, bool) {
	return b.find(n, hint, true)
}

// FindClearAndSet finds n clear bits like FindClear and sets them.
func (b *Bitmap[W]) FindClearAndSet(n, hint int) (int, bool) {
	s, ok := b.find(n, hint, false)
	if ok {
		b.fill(s, s+n, true)
	}
	return s, ok
}

// FindSetAndClear finds n set bits like FindSet and clears them.
func (b *Bitmap[W]) FindSetAndClear(n, hint int) (int, bool) {
	s, ok := b.find(n, hint, true)
	if ok {
		b.fill(s, s+n, false)
	}
	return s, ok
}

// FindAndSetRun claims the lowest run of n clear bits.
func (b *Bitmap[W]) FindAndSetRun(n int) (int, bool) {
	return b.FindClearAndSet(n, 0)
}

// clearRuns calls yield for each clear run in ascending order until it
// returns false.
func (b *Bitmap[W]) clearRuns(yield func(Run) bool) {
	for i := 0; i < b.size; {
		s := b.nextBit(i, b.size, false)
		if s < 0 {
			return
		}
		e := b.runEnd(s, b.size, false)
		if !yield(Run{Start: s, Length: e - s}) {
			return
		}
		i = e
	}
}

// FirstClearRun returns the lowest clear run. Length is zero if every bit
// is set.
func (b *Bitmap[W]) FirstClearRun() Run {
	var first Run
	b.clearRuns(func(r Run) bool {
		first = r
		return false
	})
	return first
}

// LongestClearRun returns the longest clear run, the lowest one on ties.
// Length is zero if every bit is set.
func (b *Bitmap[W]) LongestClearRun() Run {
	var best Run
	b.clearRuns(func(r Run) bool {
		if r.Length > best.Length {
			best = r
		}
		return true
	})
	return best
}

// FindClearRuns returns up to limit clear runs. With longest unset they are
// the lowest runs in ascending order; with longest set they are the longest
// runs, longest first.
func (b *Bitmap[W]) FindClearRuns(limit int, longest bool) []Run {
	if limit <= 0 {
		return nil
	}
	runs := make([]Run, 0, limit)
	byLength := func(x, y Run) int {
		if c := cmp.Compare(y.Length, x.Length); c != 0 {
			return c
		}
		return cmp.Compare(x.Start, y.Start)
	}
	b.clearRuns(func(r Run) bool {
		if !longest {
			runs = append(runs, r)
			return len(runs) < limit
		}
		if len(runs) < limit {
			runs = append(runs, r)
			slices.SortFunc(runs, byLength)
		} else if r.Length > runs[len(runs)-1].Length {
			runs[len(runs)-1] = r
			slices.SortFunc(runs, byLength)
		}
		return true
	})
	return runs
}

// NextForwardRunClear returns the first clear run starting at or after from.
// Length is zero if there is none.
func (b *Bitmap[W]) NextForwardRunClear(from int) (Run, error) {
	if err := b.check(from); err != nil {
		return Run{}, err
	}
	s := b.nextBit(from, b.size, false)
	if s < 0 {
		return Run{}, nil
	}
	return Run{Start: s, Length: b.runEnd(s, b.size, false) - s}, nil
}

// LastBackwardRunClear returns the clear run containing, or lying closest
// below, from. The run is truncated at from. Length is zero if there is none.
func (b *Bitmap[W]) LastBackwardRunClear(from int) (Run, error) {
	if err := b.check(from); err != nil {
		return Run{}, err
	}
	e := b.prevBit(from, false)
	if e < 0 {
		return Run{}, nil
	}
	s := b.prevBit(e, true) + 1
	return Run{Start: s, Length: e - s + 1}, nil
}
