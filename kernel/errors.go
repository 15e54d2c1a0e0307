package kernel

import "errors"

var (
	// ErrConsumed is returned when a body already consumed by a boolean
	// operation or Remove is used again.
	ErrConsumed = errors.New("body consumed")
	// ErrUnknownBody is returned for handles the kernel did not create.
	ErrUnknownBody = errors.New("unknown body")
	// ErrInfeasible marks geometry the kernel cannot build, such as a
	// fillet radius larger than the material it rounds.
	ErrInfeasible = errors.New("geometrically infeasible")
	// ErrNoIntersection is returned when a boolean leaves no material.
	ErrNoIntersection = errors.New("boolean operation yields no geometry")
	// ErrUnsupported is returned by kernels that cannot perform an
	// operation on a particular body.
	ErrUnsupported = errors.New("unsupported by kernel")
	// ErrInvalidQuery is returned for malformed topological queries.
	ErrInvalidQuery = errors.New("invalid query")
)
