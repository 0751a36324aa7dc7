package rtl

import (
	"cmp"

	"golang.org/x/exp/constraints"
)

// Comparator orders two elements: negative if a sorts before b, zero if they
// are equal, positive if a sorts after b. It must define a strict weak order;
// a non-transitive comparator is a caller defect and leaves containers in an
// unspecified (but memory-safe) order.
type Comparator[T any] func(a, b T) int

// Ordered is the Comparator for types with a natural order. NaN sorts
// before every other float and equal to itself.
func Ordered[T constraints.Ordered](a, b T) int {
	return cmp.Compare(a, b)
}

// Reverse returns a Comparator that inverts c.
func Reverse[T any](c Comparator[T]) Comparator[T] {
	return func(a, b T) int { return c(b, a) }
}

// SearchResult describes where a full lookup ended. Together with the node
// or parent it reached, it lets a caller insert without a second descent.
type SearchResult int

const (
	// EmptyTree means the table has no elements; the new element becomes the root.
	EmptyTree SearchResult = iota

	// FoundNode means an equal element exists.
	FoundNode

	// InsertAsLeft means the element belongs in the empty left slot of the parent.
	InsertAsLeft

	// InsertAsRight means the element belongs in the empty right slot of the parent.
	InsertAsRight
)

// String implements fmt.Stringer.
func (r SearchResult) String() string {
	switch r {
	case EmptyTree:
		return "EmptyTree"
	case FoundNode:
		return "FoundNode"
	case InsertAsLeft:
		return "InsertAsLeft"
	case InsertAsRight:
		return "InsertAsRight"
	default:
		return "SearchResult(?)"
	}
}

// MatchResult is returned by match callbacks during directory-style scans.
type MatchResult int

const (
	// Match returns the element to the caller.
	Match MatchResult = iota

	// NoMatch skips the element and continues the scan.
	NoMatch

	// Stop ends the scan without returning the element.
	Stop
)
