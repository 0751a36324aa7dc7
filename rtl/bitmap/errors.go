package bitmap

import "errors"

var (
	// ErrOutOfRange indicates a bit index or range outside the bitmap.
	ErrOutOfRange = errors.New("bitmap: index out of range")

	// ErrBadSize indicates a negative bit count.
	ErrBadSize = errors.New("bitmap: invalid size")

	// ErrShortBuffer indicates a caller buffer too small for the bit count.
	ErrShortBuffer = errors.New("bitmap: buffer too small")
)
