package list

import "github.com/pkg/errors"

var (
	// ErrEmpty is returned when element is requested from an empty list.
	ErrEmpty = errors.New("list is empty")

	// ErrInvalidIterator is returned when iterator does not belong to the list or does not point to an element.
	ErrInvalidIterator = errors.New("invalid iterator")
)
