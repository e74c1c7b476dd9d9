package alloc

import "github.com/pkg/errors"

var (
	// ErrOutOfMemory is returned when memory can't be allocated.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrConstruction is returned when value can't be constructed.
	ErrConstruction = errors.New("construction failed")
)
