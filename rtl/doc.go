// Package rtl holds the vocabulary shared by the rtlkit containers.
//
// # Overview
//
// rtlkit reimplements the generic containers of the NT runtime library as
// plain Go packages:
//
//   - avl: AVL-balanced ordered table (RtlInsertElementGenericTableAvl family)
//   - splay: splay links and the splay-based generic table
//   - prefix: nested splay-tree prefix table (RtlInsertUnicodePrefix family)
//   - hashtable: linear-hashing dynamic hash table (RtlCreateHashTable family)
//   - bitmap: fixed-size bit vectors (RtlInitializeBitMap family)
//   - rbtree: red-black tree with caller-chosen insertion slots (RtlRbInsertNodeEx)
//   - atom: reference-counted atom table built on hashtable (RtlCreateAtomTable family)
//   - signature: string hashes used to derive hash table signatures
//
// # Ownership
//
// Each container exclusively owns its link structures, addressed through
// arena indices rather than pointers. Caller payloads are stored by value
// (usually a pointer) and are never freed or copied by the container.
//
// # Thread Safety
//
// Apart from the atom table, no container embeds a lock. Callers must
// serialize mutating calls externally, for example with a sync.Mutex or
// sync.RWMutex held across the call. The hash table additionally guards
// against mutation during strong and destructive enumerations.
//
// # Error Conventions
//
// Absent keys and duplicate inserts are reported through bool results.
// Errors are reserved for busy tables, invalid handles and out-of-range
// indices; each package exports sentinel errors for errors.Is.
package rtl
