package hashmap

import "github.com/pkg/errors"

var (
	// ErrKeyNotFound is returned when value is requested for key not present in the map.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidIterator is returned when iterator does not point to an entry of the map.
	ErrInvalidIterator = errors.New("invalid iterator")

	// ErrInvalidLoadFactor is returned when max load factor is not positive.
	ErrInvalidLoadFactor = errors.New("invalid max load factor")
)
