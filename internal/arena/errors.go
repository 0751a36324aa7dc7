package arena

import "errors"

var (
	// ErrBadRef indicates a nil, out-of-range or stale slot reference.
	ErrBadRef = errors.New("arena: bad slot reference")

	// ErrDoubleFree indicates an attempt to free a slot that is already free.
	ErrDoubleFree = errors.New("arena: slot already free")
)
