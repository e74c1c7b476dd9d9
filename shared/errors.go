package shared

import "github.com/pkg/errors"

var (
	// ErrNoBlock is returned when state is requested from a weak reference without a control block.
	ErrNoBlock = errors.New("weak reference has no control block")

	// ErrNoOwner is returned when object asks for a shared pointer to itself while nothing owns it.
	ErrNoOwner = errors.New("object has no owner")
)
