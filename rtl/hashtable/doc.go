// Package hashtable implements a dynamic hash table keyed by 64-bit
// signatures and grown by linear hashing.
//
// # Addressing
//
// The table has 2^shift + pivot buckets. A signature addresses bucket
// sig & (2^shift - 1); buckets below the pivot have already been split, so
// for them one more signature bit is used. Expand splits the bucket at the
// pivot into itself and bucket pivot + 2^shift, then advances the pivot.
// When the pivot reaches 2^shift it wraps to zero and the shift grows.
// Contract undoes one split. A single resize step only touches one bucket
// chain, so no insert or remove ever pays for a full rehash.
//
// Insert and Remove resize automatically when the average chain length
// leaves the configured load factors, unless disabled by flags.
//
// # Entries
//
// Signatures need not be unique. Lookup returns the first entry with a
// signature; a LookupContext walks the rest. Callers disambiguate by value.
// Insert hands back a Handle that later addresses the entry for Remove,
// Value and Signature. Handles of removed entries are detected as stale.
//
// # Enumeration
//
// Three enumerator kinds trade safety against freedom to mutate:
//
//   - Weak: the table may be mutated and resized freely. A placeholder in
//     the bucket chain marks the position. Entries moved by a concurrent
//     resize may be skipped or returned twice.
//   - Strong: the table is pinned. Insert, Remove, Expand and Contract fail
//     with ErrBusy until End. Every entry is returned exactly once.
//   - Destructive: each Next removes the entry it returns. Inserts and
//     removes are allowed, resizing is not. When Next reports exhaustion no
//     entry present at Begin remains.
//
// At most one strong or destructive enumerator may be active at a time.
//
// # Thread Safety
//
// The table has no internal locking. Callers serialize every call,
// including enumerator calls, externally.
package hashtable
