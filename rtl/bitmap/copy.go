package bitmap

import (
	"sync/atomic"
	"unsafe"
)

// CopyTo copies every bit of b into dst starting at bit target. dst may
// share words with b; overlapping ranges are copied as if through a
// temporary.
func (b *Bitmap[W]) CopyTo(dst *Bitmap[W], target int) error {
	if _, err := dst.checkRange(target, b.size); err != nil {
		return err
	}
	if target > 0 && len(b.words) > 0 && unsafe.SliceData(dst.words) == unsafe.SliceData(b.words) {
		// Walk down so no source word is overwritten before it is read.
		for end := b.size; end > 0; {
			k := min(b.wb, end)
			dst.put(target+end-k, k, b.get(end-k, k))
			end -= k
		}
		return nil
	}
	for i := 0; i < b.size; {
		k := min(b.wb, b.size-i)
		dst.put(target+i, k, b.get(i, k))
		i += k
	}
	return nil
}

// AtomicSetRange sets n bits starting at start with atomic word updates.
// Goroutines may call AtomicSetRange and AtomicClearRange on the same
// bitmap concurrently; every other method still needs external locking.
func (b *Bitmap[W]) AtomicSetRange(start, n int) error {
	end, err := b.checkRange(start, n)
	if err != nil {
		return err
	}
	b.atomicFill(start, end, true)
	return nil
}

// AtomicClearRange clears n bits starting at start, like AtomicSetRange.
func (b *Bitmap[W]) AtomicClearRange(start, n int) error {
	end, err := b.checkRange(start, n)
	if err != nil {
		return err
	}
	b.atomicFill(start, end, false)
	return nil
}

func (b *Bitmap[W]) atomicFill(start, end int, value bool) {
	for i := start; i < end; {
		wi, off := i/b.wb, i%b.wb
		span := min(b.wb-off, end-i)
		m := lowMask(span) << off
		p := unsafe.Pointer(&b.words[wi])
		switch {
		case b.wb == 32 && value:
			atomic.OrUint32((*uint32)(p), uint32(m))
		case b.wb == 32:
			atomic.AndUint32((*uint32)(p), ^uint32(m))
		case value:
			atomic.OrUint64((*uint64)(p), m)
		default:
			atomic.AndUint64((*uint64)(p), ^m)
		}
		i += span
	}
}
