package bitmap

import (
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/joshuapare/rtlkit/internal/buf"
	"github.com/joshuapare/rtlkit/internal/mmfile"
)

// Bitmap is a fixed-size bit vector backed by words of type W. Bits past
// the size in the last word are always clear.
type Bitmap[W Word] struct {
	words []W
	size  int
	wb    int // bits per word
}

type (
	Bitmap32 = Bitmap[uint32]
	Bitmap64 = Bitmap[uint64]
)

func wordsFor[W Word](n int) int {
	wb := wordBits[W]()
	return (n + wb - 1) / wb
}

// New allocates a cleared bitmap of n bits.
func New[W Word](n int) (*Bitmap[W], error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d bits", ErrBadSize, n)
	}
	return &Bitmap[W]{
		words: make([]W, wordsFor[W](n)),
		size:  n,
		wb:    wordBits[W](),
	}, nil
}

// NewFromWords wraps a caller-owned buffer as an n-bit bitmap. Existing
// bits are kept, except that bits past n are cleared.
func NewFromWords[W Word](words []W, n int) (*Bitmap[W], error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d bits", ErrBadSize, n)
	}
	if need := wordsFor[W](n); len(words) < need {
		return nil, fmt.Errorf("%w: %d words for %d bits, need %d", ErrShortBuffer, len(words), n, need)
	}
	b := &Bitmap[W]{words: words, size: n, wb: wordBits[W]()}
	b.clearTail()
	return b, nil
}

// NewMapped allocates a cleared n-bit bitmap in memory mapped directly from
// the OS, outside the Go heap. The caller must call release once the bitmap
// is no longer used.
func NewMapped[W Word](n int) (b *Bitmap[W], release func() error, err error) {
	if n < 0 {
		return nil, nil, fmt.Errorf("%w: %d bits", ErrBadSize, n)
	}
	count := wordsFor[W](n)
	var zero W
	nbytes, ok := buf.MulOverflowSafe(count, int(unsafe.Sizeof(zero)))
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d bits", ErrBadSize, n)
	}
	data, release, err := mmfile.Anon(nbytes)
	if err != nil {
		return nil, nil, err
	}
	var words []W
	if count > 0 {
		words = unsafe.Slice((*W)(unsafe.Pointer(unsafe.SliceData(data))), count)
	}
	return &Bitmap[W]{words: words, size: n, wb: wordBits[W]()}, release, nil
}

// Size returns the number of bits.
func (b *Bitmap[W]) Size() int {
	return b.size
}

// Words returns the backing words. Bits past Size are clear.
func (b *Bitmap[W]) Words() []W {
	return b.words
}

func (b *Bitmap[W]) clearTail() {
	if r := b.size % b.wb; r != 0 {
		i := b.size / b.wb
		b.words[i] &= W(lowMask(r))
	}
	for i := wordsFor[W](b.size); i < len(b.words); i++ {
		b.words[i] = 0
	}
}

func (b *Bitmap[W]) check(i int) error {
	if err := buf.CheckIndex(b.size, i); err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}
	return nil
}

func (b *Bitmap[W]) checkRange(start, n int) (int, error) {
	end, err := buf.CheckRange(b.size, start, n)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}
	return end, nil
}

// Set sets bit i.
func (b *Bitmap[W]) Set(i int) error {
	if err := b.check(i); err != nil {
		return err
	}
	b.words[i/b.wb] |= W(1) << (i % b.wb)
	return nil
}

// Clear clears bit i.
func (b *Bitmap[W]) Clear(i int) error {
	if err := b.check(i); err != nil {
		return err
	}
	b.words[i/b.wb] &^= W(1) << (i % b.wb)
	return nil
}

// Test reports whether bit i is set.
func (b *Bitmap[W]) Test(i int) (bool, error) {
	if err := b.check(i); err != nil {
		return false, err
	}
	return b.words[i/b.wb]&(W(1)<<(i%b.wb)) != 0, nil
}

// SetAll sets every bit.
func (b *Bitmap[W]) SetAll() {
	b.fill(0, b.size, true)
}

// ClearAll clears every bit.
func (b *Bitmap[W]) ClearAll() {
	clear(b.words)
}

// SetRange sets n bits starting at start.
func (b *Bitmap[W]) SetRange(start, n int) error {
	end, err := b.checkRange(start, n)
	if err != nil {
		return err
	}
	b.fill(start, end, true)
	return nil
}

// ClearRange clears n bits starting at start.
func (b *Bitmap[W]) ClearRange(start, n int) error {
	end, err := b.checkRange(start, n)
	if err != nil {
		return err
	}
	b.fill(start, end, false)
	return nil
}

// AreClear reports whether all n bits starting at start are clear.
func (b *Bitmap[W]) AreClear(start, n int) (bool, error) {
	end, err := b.checkRange(start, n)
	if err != nil {
		return false, err
	}
	return b.nextBit(start, end, true) < 0, nil
}

// AreSet reports whether all n bits starting at start are set.
func (b *Bitmap[W]) AreSet(start, n int) (bool, error) {
	end, err := b.checkRange(start, n)
	if err != nil {
		return false, err
	}
	return b.nextBit(start, end, false) < 0, nil
}

// CountSet returns the number of set bits among n bits starting at start.
func (b *Bitmap[W]) CountSet(start, n int) (int, error) {
	end, err := b.checkRange(start, n)
	if err != nil {
		return 0, err
	}
	return b.countSet(start, end), nil
}

// CountClear returns the number of clear bits among n bits starting at start.
func (b *Bitmap[W]) CountClear(start, n int) (int, error) {
	end, err := b.checkRange(start, n)
	if err != nil {
		return 0, err
	}
	return n - b.countSet(start, end), nil
}

// NumberOfSet returns the number of set bits.
func (b *Bitmap[W]) NumberOfSet() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(uint64(w))
	}
	return n
}

// NumberOfClear returns the number of clear bits.
func (b *Bitmap[W]) NumberOfClear() int {
	return b.size - b.NumberOfSet()
}

// Extract copies n bits starting at start into the first n bits of dst.
func (b *Bitmap[W]) Extract(dst *Bitmap[W], start, n int) error {
	end, err := b.checkRange(start, n)
	if err != nil {
		return err
	}
	if _, err := dst.checkRange(0, n); err != nil {
		return err
	}
	for i, j := start, 0; i < end; {
		k := min(b.wb, end-i)
		dst.put(j, k, b.get(i, k))
		i += k
		j += k
	}
	return nil
}

// fill sets or clears [start, end).
func (b *Bitmap[W]) fill(start, end int, value bool) {
	for i := start; i < end; {
		wi, off := i/b.wb, i%b.wb
		span := min(b.wb-off, end-i)
		m := W(lowMask(span) << off)
		if value {
			b.words[wi] |= m
		} else {
			b.words[wi] &^= m
		}
		i += span
	}
}

func (b *Bitmap[W]) countSet(start, end int) int {
	n := 0
	for i := start; i < end; {
		wi, off := i/b.wb, i%b.wb
		span := min(b.wb-off, end-i)
		n += bits.OnesCount64(uint64(b.words[wi]) >> off & lowMask(span))
		i += span
	}
	return n
}

// get returns k <= wordsize bits starting at i, low bit first.
func (b *Bitmap[W]) get(i, k int) uint64 {
	wi, off := i/b.wb, i%b.wb
	v := uint64(b.words[wi]) >> off
	if got := b.wb - off; got < k {
		v |= uint64(b.words[wi+1]) << got
	}
	return v & lowMask(k)
}

// put stores the k low bits of v starting at i.
func (b *Bitmap[W]) put(i, k int, v uint64) {
	for k > 0 {
		wi, off := i/b.wb, i%b.wb
		span := min(b.wb-off, k)
		m := lowMask(span)
		b.words[wi] = b.words[wi]&^W(m<<off) | W((v&m)<<off)
		v >>= span
		i += span
		k -= span
	}
}

// word returns word wi widened, inverted when searching for clear bits.
func (b *Bitmap[W]) word(wi int, value bool) uint64 {
	w := uint64(b.words[wi])
	if !value {
		w = ^w & lowMask(b.wb)
	}
	return w
}

// nextBit returns the first index in [from, to) whose bit equals value,
// or -1.
func (b *Bitmap[W]) nextBit(from, to int, value bool) int {
	for i := from; i < to; {
		wi, off := i/b.wb, i%b.wb
		if w := b.word(wi, value) >> off; w != 0 {
			if j := i + bits.TrailingZeros64(w); j < to {
				return j
			}
			return -1
		}
		i = (wi + 1) * b.wb
	}
	return -1
}

// prevBit returns the last index in [0, from] whose bit equals value, or -1.
func (b *Bitmap[W]) prevBit(from int, value bool) int {
	for i := from; i >= 0; {
		wi, off := i/b.wb, i%b.wb
		if w := b.word(wi, value) & lowMask(off+1); w != 0 {
			return wi*b.wb + 63 - bits.LeadingZeros64(w)
		}
		i = wi*b.wb - 1
	}
	return -1
}

// runEnd returns the end of the run of value bits starting at from,
// capped at to.
func (b *Bitmap[W]) runEnd(from, to int, value bool) int {
	if j := b.nextBit(from, to, !value); j >= 0 {
		return j
	}
	return to
}

// findRun returns the first start in [from, to) of n consecutive value bits
// lying entirely below to, or -1.
func (b *Bitmap[W]) findRun(n, from, to int, value bool) int {
	for i := from; i+n <= to; {
		s := b.nextBit(i, to, value)
		if s < 0 || s+n > to {
			return -1
		}
		e := b.runEnd(s, s+n, value)
		if e-s >= n {
			return s
		}
		i = e
	}
	return -1
}
