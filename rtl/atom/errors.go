package atom

import "errors"

var (
	// ErrInvalidName indicates an empty or overlong name, or integer atom
	// syntax ("#n") outside the integer atom range.
	ErrInvalidName = errors.New("atom: invalid name")

	// ErrInvalidAtom indicates an atom that is zero or not in the table.
	ErrInvalidAtom = errors.New("atom: invalid atom")

	// ErrNotFound indicates a Lookup of a name that is not in the table.
	ErrNotFound = errors.New("atom: name not found")

	// ErrPinned indicates a Delete of a pinned atom. The atom is unchanged.
	ErrPinned = errors.New("atom: atom is pinned")

	// ErrTableFull indicates that every string atom is in use.
	ErrTableFull = errors.New("atom: table full")

	// ErrInvalidParameter indicates a bad table option.
	ErrInvalidParameter = errors.New("atom: invalid parameter")
)
