package hashtable

import (
	"github.com/joshuapare/rtlkit/internal/arena"
)

// State is the lifecycle state of an Enumerator.
type State int

const (
	StateIdle State = iota
	StateWeak
	StateStrong
	StateDestructive
	StateEnded
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateWeak:
		return "Weak"
	case StateStrong:
		return "Strong"
	case StateDestructive:
		return "Destructive"
	case StateEnded:
		return "Ended"
	default:
		return "State(?)"
	}
}

// Enumerator walks a table bucket by bucket. Obtain one with BeginWeak,
// BeginStrong or BeginDestructive, and always release it with End: an
// exhausted enumerator keeps its pin until then.
type Enumerator[V any] struct {
	t     *Table[V]
	kind  State
	state State

	bucket int
	// Weak: the placeholder node. Strong: the last entry returned in the
	// current bucket, or Nil at the start of a bucket.
	cur arena.Ref
}

// BeginWeak starts an enumeration that tolerates any mutation of the table.
func (t *Table[V]) BeginWeak() (*Enumerator[V], error) {
	if err := t.guard(opBeginWeak); err != nil {
		return nil, err
	}
	s := t.entries.Alloc(entry[V]{sentinel: true})
	t.linkHead(0, s)
	t.weak++
	return &Enumerator[V]{t: t, kind: StateWeak, state: StateWeak, cur: s}, nil
}

// BeginStrong starts an enumeration that pins the table until End.
func (t *Table[V]) BeginStrong() (*Enumerator[V], error) {
	if err := t.guard(opBeginExclusive); err != nil {
		return nil, err
	}
	t.strong++
	return &Enumerator[V]{t: t, kind: StateStrong, state: StateStrong}, nil
}

// BeginDestructive starts an enumeration that removes each entry it returns.
func (t *Table[V]) BeginDestructive() (*Enumerator[V], error) {
	if err := t.guard(opBeginExclusive); err != nil {
		return nil, err
	}
	t.destructive++
	return &Enumerator[V]{t: t, kind: StateDestructive, state: StateDestructive}, nil
}

// State returns the enumerator's current state.
func (en *Enumerator[V]) State() State {
	return en.state
}

// Next returns the next entry. For a destructive enumerator the entry has
// already been removed and the returned handle is stale.
func (en *Enumerator[V]) Next() (Handle, V, bool) {
	var zero V
	if en.t.destroyed && en.state != StateIdle {
		en.state = StateEnded
	}
	switch en.state {
	case StateWeak:
		return en.nextWeak()
	case StateStrong:
		return en.nextStrong()
	case StateDestructive:
		return en.nextDestructive()
	}
	return 0, zero, false
}

func (en *Enumerator[V]) nextWeak() (Handle, V, bool) {
	t := en.t
	s := en.cur
	for {
		r := t.at(s).next
		for r != arena.Nil && t.at(r).sentinel {
			r = t.at(r).next
		}
		if r != arena.Nil {
			t.unlink(s)
			t.linkAfter(r, s)
			return Handle(r), t.at(r).value, true
		}

		b := int(t.at(s).bucket) + 1
		t.unlink(s)
		if b >= t.size() {
			_ = t.entries.Free(s)
			en.cur = arena.Nil
			en.state = StateEnded
			var zero V
			return 0, zero, false
		}
		t.linkHead(b, s)
	}
}

func (en *Enumerator[V]) nextStrong() (Handle, V, bool) {
	t := en.t
	for en.bucket < t.size() {
		var r arena.Ref
		if en.cur == arena.Nil {
			r = t.heads[en.bucket]
		} else {
			r = t.at(en.cur).next
		}
		// Weak placeholders may move under a strong enumeration, so the
		// cursor only ever rests on real entries.
		for r != arena.Nil && t.at(r).sentinel {
			r = t.at(r).next
		}
		if r != arena.Nil {
			en.cur = r
			return Handle(r), t.at(r).value, true
		}
		en.bucket++
		en.cur = arena.Nil
	}
	en.state = StateEnded
	var zero V
	return 0, zero, false
}

func (en *Enumerator[V]) nextDestructive() (Handle, V, bool) {
	t := en.t
	for en.bucket < t.size() {
		r := t.heads[en.bucket]
		for r != arena.Nil && t.at(r).sentinel {
			r = t.at(r).next
		}
		if r != arena.Nil {
			v := t.at(r).value
			t.unlink(r)
			_ = t.entries.Free(r)
			t.count--
			return Handle(r), v, true
		}
		en.bucket++
	}
	en.state = StateEnded
	var zero V
	return 0, zero, false
}

// End releases the enumerator and returns it to StateIdle. It is safe to
// call more than once.
func (en *Enumerator[V]) End() {
	if en.state == StateIdle {
		return
	}
	t := en.t
	if !t.destroyed {
		switch en.kind {
		case StateWeak:
			if en.cur != arena.Nil {
				t.unlink(en.cur)
				_ = t.entries.Free(en.cur)
			}
			t.weak--
		case StateStrong:
			t.strong--
		case StateDestructive:
			t.destructive--
		}
	}
	en.state = StateIdle
	en.cur = arena.Nil
}
