package alloc

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

// Arena is the memory source behind an allocator. Memory returned for a type containing pointers must be
// scanned by the garbage collector.
type Arena interface {
	// Alloc returns memory for n values of typ.
	Alloc(typ reflect.Type, n int) (unsafe.Pointer, error)

	// Free returns memory previously obtained from Alloc.
	Free(p unsafe.Pointer, typ reflect.Type, n int)
}

// Observer is notified about every allocator operation. Returning an error from OnAllocate or OnConstruct
// makes the operation fail with that error.
type Observer interface {
	OnAllocate(typ string, size uintptr, n int) error
	OnDeallocate(typ string, size uintptr, n int)
	OnConstruct(typ string) error
	OnDestroy(typ string)
}

// Destroyer is implemented by values which must release something when they leave container storage.
type Destroyer interface {
	Destroy()
}

// Selection decides which allocator a copy-constructed container uses.
type Selection uint8

const (
	// SelectSame makes copies use the allocator of the source.
	SelectSame Selection = iota

	// SelectHeap makes copies use the Go heap.
	SelectHeap
)

// Policy configures allocator propagation.
type Policy struct {
	PropagateOnCopyAssignment bool
	SelectOnCopy              Selection
}

// Option configures allocator.
type Option func(c *config)

type config struct {
	arena    Arena
	observer Observer
	policy   Policy
}

// WithArena makes allocator take memory from arena.
func WithArena(arena Arena) Option {
	return func(c *config) {
		c.arena = arena
	}
}

// WithObserver attaches observer to allocator.
func WithObserver(observer Observer) Option {
	return func(c *config) {
		c.observer = observer
	}
}

// WithPolicy sets propagation policy.
func WithPolicy(policy Policy) Option {
	return func(c *config) {
		c.policy = policy
	}
}

// Allocator allocates, constructs, destroys and deallocates values of type T.
// Zero value allocates from the Go heap.
type Allocator[T any] struct {
	arena    Arena
	observer Observer
	policy   Policy
}

// New creates allocator.
func New[T any](opts ...Option) Allocator[T] {
	var c config
	for _, o := range opts {
		o(&c)
	}
	return Allocator[T]{
		arena:    c.arena,
		observer: c.observer,
		policy:   c.policy,
	}
}

// Heap returns allocator using the Go heap.
func Heap[T any]() Allocator[T] {
	return Allocator[T]{}
}

// Rebind returns allocator for type U sharing arena, observer and policy with a.
func Rebind[U, T any](a Allocator[T]) Allocator[U] {
	return Allocator[U]{
		arena:    a.arena,
		observer: a.observer,
		policy:   a.policy,
	}
}

// Allocate returns raw storage for n values.
func (a Allocator[T]) Allocate(n int) ([]T, error) {
	if n < 0 {
		return nil, errors.Errorf("negative allocation size %d", n)
	}
	if n == 0 {
		return nil, nil
	}

	size := unsafe.Sizeof(*new(T))
	if a.observer != nil {
		if err := a.observer.OnAllocate(typeName[T](), size, n); err != nil {
			return nil, err
		}
	}

	if a.arena == nil || size == 0 {
		return make([]T, n), nil
	}

	p, err := a.arena.Alloc(reflect.TypeFor[T](), n)
	if err != nil {
		if a.observer != nil {
			a.observer.OnDeallocate(typeName[T](), size, n)
		}
		return nil, err
	}
	return unsafe.Slice((*T)(p), n), nil
}

// Deallocate releases storage returned by Allocate. Values must be destroyed before.
func (a Allocator[T]) Deallocate(p []T) {
	if len(p) == 0 {
		return
	}

	size := unsafe.Sizeof(*new(T))
	if a.observer != nil {
		a.observer.OnDeallocate(typeName[T](), size, len(p))
	}
	if a.arena != nil && size != 0 {
		a.arena.Free(unsafe.Pointer(unsafe.SliceData(p)), reflect.TypeFor[T](), len(p))
	}
}

// Construct places copy of v into raw storage p.
func (a Allocator[T]) Construct(p *T, v T) error {
	if a.observer != nil {
		if err := a.observer.OnConstruct(typeName[T]()); err != nil {
			return err
		}
	}
	*p = v
	return nil
}

// Destroy ends lifetime of the value stored in p, leaving raw storage.
func (a Allocator[T]) Destroy(p *T) {
	if d, ok := any(p).(Destroyer); ok {
		d.Destroy()
	}
	var zero T
	*p = zero
	if a.observer != nil {
		a.observer.OnDestroy(typeName[T]())
	}
}

// SelectOnCopy returns allocator to be used by a container copied from the one using a.
func (a Allocator[T]) SelectOnCopy() Allocator[T] {
	if a.policy.SelectOnCopy == SelectHeap {
		return Allocator[T]{
			observer: a.observer,
			policy:   a.policy,
		}
	}
	return a
}

// PropagateOnCopyAssignment tells if copy-assignment replaces allocator of the target.
func (a Allocator[T]) PropagateOnCopyAssignment() bool {
	return a.policy.PropagateOnCopyAssignment
}

// Arena returns the arena, nil for the Go heap.
func (a Allocator[T]) Arena() Arena {
	return a.arena
}

// Equal tells if memory allocated by a may be released by b.
func (a Allocator[T]) Equal(b Allocator[T]) bool {
	return a.arena == b.arena
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
