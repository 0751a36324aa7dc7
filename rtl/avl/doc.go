// Package avl implements an ordered table kept balanced with AVL rotations.
//
// # Overview
//
// Table[T] stores elements ordered by a caller-supplied rtl.Comparator.
// Equal elements are rejected on insert: the table holds at most one element
// per comparator key, and Insert hands back the existing element instead.
//
// Besides the usual find/insert/delete, the table supports:
//
//   - LookupFull + InsertFull: a lookup that returns the insertion point so a
//     find-or-insert costs a single descent
//   - Nth: ordinal access by sorted rank in O(log n) via subtree sizes
//   - Enumerate: a restartable sorted enumeration kept inside the table
//   - Next: external sorted cursors that survive deletions
//   - NextInserted: enumeration in insertion order through an auxiliary list
//   - EnumerateLikeADirectory: sorted scan filtered by a match callback
//
// # Usage Example
//
//	t := avl.New(rtl.Ordered[int])
//	t.Insert(42)
//	if v, ok := t.Lookup(42); ok {
//	    fmt.Println(v)
//	}
//
// Find-or-insert with a single descent:
//
//	v, hint := t.LookupFull(key)
//	if hint.Result != rtl.FoundNode {
//	    v, _, _ = t.InsertFull(build(key), hint)
//	}
//
// # Thread Safety
//
// Table instances are not thread-safe. Callers must synchronize access
// externally. Hints are only meaningful while the caller holds that
// synchronization between LookupFull and InsertFull.
package avl
