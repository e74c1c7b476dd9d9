package deque

import "github.com/pkg/errors"

var (
	// ErrOutOfRange is returned when index does not point to an element.
	ErrOutOfRange = errors.New("index out of range")

	// ErrEmpty is returned when element is requested from an empty deque.
	ErrEmpty = errors.New("deque is empty")

	// ErrInvalidIterator is returned when iterator does not point to a valid position in the deque.
	ErrInvalidIterator = errors.New("invalid iterator")
)
