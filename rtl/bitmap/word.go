package bitmap

import "math/bits"

// Word is the backing word type of a Bitmap.
type Word interface {
	~uint32 | ~uint64
}

// wordBits returns the width of W in bits.
func wordBits[W Word]() int {
	return bits.Len64(uint64(^W(0)))
}

// lowMask returns a mask of the n low bits. n may be 64.
func lowMask(n int) uint64 {
	return uint64(1)<<n - 1
}

// MostSignificantBit returns the index of the highest set bit of x, or -1
// if x is zero.
func MostSignificantBit(x uint64) int {
	if x == 0 {
		return -1
	}
	return 63 - bits.LeadingZeros64(x)
}

// LeastSignificantBit returns the index of the lowest set bit of x, or -1
// if x is zero.
func LeastSignificantBit(x uint64) int {
	if x == 0 {
		return -1
	}
	return bits.TrailingZeros64(x)
}
