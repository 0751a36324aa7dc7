// Package buf contains overflow-safe index arithmetic shared by the rtl containers.
package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two counts, returning ok = false when either is
// negative or the product would overflow int. Used to size word buffers.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a != 0 && b > math.MaxInt/a {
		return 0, false
	}
	return a * b, true
}

// CheckIndex validates that i addresses one of size elements.
func CheckIndex(size, i int) error {
	if i < 0 || i >= size {
		return fmt.Errorf("index %d outside [0, %d)", i, size)
	}
	return nil
}

// CheckRange validates that length elements starting at start fit in size.
// Returns the exclusive end of the range if valid, or an error describing
// the specific failure (negative input, overflow or out of bounds).
//
// This is the recommended way to validate a run before touching it:
//
//	end, err := buf.CheckRange(b.Size(), start, n)
//	if err != nil {
//	    return fmt.Errorf("%w: %w", ErrOutOfRange, err)
//	}
func CheckRange(size, start, length int) (int, error) {
	if start < 0 {
		return 0, fmt.Errorf("negative start: %d", start)
	}
	if length < 0 {
		return 0, fmt.Errorf("negative length: %d", length)
	}

	end, ok := AddOverflowSafe(start, length)
	if !ok {
		return 0, fmt.Errorf("overflow: start=%d + length=%d", start, length)
	}

	if end > size {
		return 0, fmt.Errorf("bounds: end=%d > size=%d", end, size)
	}

	return end, nil
}
