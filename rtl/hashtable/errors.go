package hashtable

import "errors"

var (
	// ErrBusy indicates an operation refused because an active strong or
	// destructive enumerator pins the table. Retry after End.
	ErrBusy = errors.New("hashtable: table busy with enumeration")

	// ErrDestroyed indicates use of a table after Destroy.
	ErrDestroyed = errors.New("hashtable: table destroyed")

	// ErrBadShift indicates an initial shift outside the supported range.
	ErrBadShift = errors.New("hashtable: initial shift out of range")

	// ErrBadLoadFactors indicates load factors that are not positive or
	// leave no gap between contraction and expansion.
	ErrBadLoadFactors = errors.New("hashtable: invalid load factors")
)
