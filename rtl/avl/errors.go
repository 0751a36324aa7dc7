package avl

import "errors"

// ErrBadHint indicates that an InsertFull hint does not address a live node,
// or that the slot it names is no longer empty.
var ErrBadHint = errors.New("avl: stale or invalid insertion hint")
