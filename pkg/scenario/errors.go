package scenario

import "errors"

var (
	// ErrInvalid indicates a scenario that parsed but describes an
	// impossible workload.
	ErrInvalid = errors.New("scenario: invalid")

	// ErrEmpty indicates a scenario with no workload sections.
	ErrEmpty = errors.New("scenario: no workload defined")
)
