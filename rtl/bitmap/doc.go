// Package bitmap implements fixed-size bit vectors with word-at-a-time run
// searches.
//
// Bitmap[W] stores bits in words of type W, either 32 or 64 bits wide.
// Bitmap32 and Bitmap64 name the two variants. The bit count is fixed at
// construction and every index is bounds-checked: an index or range
// outside the bitmap returns an error wrapping ErrOutOfRange.
//
// Searches scan one word at a time using population counts and
// trailing/leading zero counts, so finding a run costs O(size/wordsize)
// rather than O(size).
//
// # Usage Example
//
//	b, _ := bitmap.New[uint64](4096)
//	start, ok := b.FindClearAndSet(16, 0) // claim 16 contiguous bits
//	if ok {
//	    defer b.ClearRange(start, 16)
//	}
//
// # Thread Safety
//
// Bitmap instances are not thread-safe. FindClearAndSet and FindAndSetRun
// only claim a run atomically when callers serialize them externally. The
// exception is AtomicSetRange and AtomicClearRange, which update whole words
// atomically and may run concurrently with each other.
package bitmap
