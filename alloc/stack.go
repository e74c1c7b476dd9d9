package alloc

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

// StackStorage is a fixed-size buffer handing out memory by bumping an offset. Memory is never reused,
// Free is a no-op, so storage is meant for scoped use with bounded lifetime.
//
// The buffer is not scanned by the garbage collector, so only pointer-free values are placed in it.
// Values of types containing pointers get memory from the Go heap, charged against the buffer in the same
// way, so capacity and exhaustion do not depend on the element type.
type StackStorage struct {
	data  []byte
	shift uintptr
}

var _ Arena = &StackStorage{}

// NewStackStorage creates storage of size bytes.
func NewStackStorage(size int) *StackStorage {
	return &StackStorage{
		data: make([]byte, size),
	}
}

// NewStack returns allocator taking memory from storage.
func NewStack[T any](storage *StackStorage, opts ...Option) Allocator[T] {
	return New[T](append(opts, WithArena(storage))...)
}

// Alloc allocates memory for n values of typ.
func (s *StackStorage) Alloc(typ reflect.Type, n int) (unsafe.Pointer, error) {
	size := typ.Size() * uintptr(n)
	align := alignment(typ)

	base := uintptr(unsafe.Pointer(unsafe.SliceData(s.data)))
	offset := (align - (base+s.shift)%align) % align
	if s.shift+offset+size > uintptr(len(s.data)) {
		return nil, errors.Wrapf(ErrOutOfMemory, "stack storage: requested %d bytes for %d of %s, %d of %d used",
			size, n, typ, s.shift, len(s.data))
	}

	s.shift += offset + size
	if size == 0 {
		return unsafe.Pointer(unsafe.SliceData(s.data)), nil
	}
	if hasPointers(typ) {
		return reflect.MakeSlice(reflect.SliceOf(typ), n, n).UnsafePointer(), nil
	}
	return unsafe.Pointer(&s.data[s.shift-size]), nil
}

// Free does nothing, memory is released together with the storage.
func (s *StackStorage) Free(unsafe.Pointer, reflect.Type, int) {}

// Used returns number of bytes consumed, including alignment padding.
func (s *StackStorage) Used() int {
	return int(s.shift)
}

// Cap returns size of the buffer.
func (s *StackStorage) Cap() int {
	return len(s.data)
}

// alignment is the element size, so consecutive allocations of one type stay packed, raised to the
// alignment required by the runtime.
func alignment(typ reflect.Type) uintptr {
	align := uintptr(typ.Align())
	if size := typ.Size(); size > align && size%align == 0 {
		return size
	}
	if align == 0 {
		return 1
	}
	return align
}

func hasPointers(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Slice, reflect.String,
		reflect.Interface, reflect.Chan, reflect.Func:
		return true
	case reflect.Array:
		return typ.Len() > 0 && hasPointers(typ.Elem())
	case reflect.Struct:
		for i := range typ.NumField() {
			if hasPointers(typ.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
