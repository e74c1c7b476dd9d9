package shared

import (
	"github.com/outofforest/containers/alloc"
)

// Option configures shared pointer construction.
type Option[T any] func(c *config[T])

type config[T any] struct {
	deleter func(*T)
	alloc   alloc.Allocator[T]
}

// WithDeleter sets function called on the object when the last owner releases it.
// It is ignored by Make, where the object lives inside the control block.
func WithDeleter[T any](deleter func(*T)) Option[T] {
	return func(c *config[T]) {
		c.deleter = deleter
	}
}

// WithAllocator sets allocator used for the control block.
func WithAllocator[T any](a alloc.Allocator[T]) Option[T] {
	return func(c *config[T]) {
		c.alloc = a
	}
}

// Shared owns an object together with other Shared pointers to the same control block. Object is destroyed
// when the last Shared is released. Shared is a value, copying it with the assignment operator does not
// create an owner, Clone does.
type Shared[T any] struct {
	object *T
	block  *controlBlock
}

// New takes ownership of obj. If control block cannot be allocated, obj is passed to the deleter and error
// is returned. New(nil) returns empty pointer.
func New[T any](obj *T, opts ...Option[T]) (Shared[T], error) {
	c := newConfig(opts)
	if obj == nil {
		return Shared[T]{}, nil
	}

	blocks := alloc.Rebind[externalBlock[T]](c.alloc)
	storage, err := blocks.Allocate(1)
	if err != nil {
		if c.deleter != nil {
			c.deleter(obj)
		} else {
			destroy(obj)
		}
		return Shared[T]{}, err
	}

	b := &storage[0]
	*b = externalBlock[T]{
		object:  obj,
		deleter: c.deleter,
		blocks:  blocks,
	}
	b.variant = b

	return own(obj, &b.controlBlock), nil
}

// Make creates object by copying v into storage allocated together with the control block.
func Make[T any](v T, opts ...Option[T]) (Shared[T], error) {
	return MakeWith(newConfig(opts).alloc, v)
}

// MakeWith is Make using allocator a for the common block of object and its counters.
func MakeWith[T any](a alloc.Allocator[T], v T) (Shared[T], error) {
	blocks := alloc.Rebind[inlineBlock[T]](a)
	storage, err := blocks.Allocate(1)
	if err != nil {
		return Shared[T]{}, err
	}

	b := &storage[0]
	*b = inlineBlock[T]{
		values: a,
		blocks: blocks,
	}
	if err := a.Construct(&b.object, v); err != nil {
		blocks.Deallocate(storage)
		return Shared[T]{}, err
	}
	b.variant = b

	return own(&b.object, &b.controlBlock), nil
}

// Get returns the object, nil if pointer is empty.
func (s Shared[T]) Get() *T {
	return s.object
}

// Empty tells if pointer owns nothing.
func (s Shared[T]) Empty() bool {
	return s.block == nil
}

// UseCount returns number of Shared pointers owning the object, 0 for empty pointer.
func (s Shared[T]) UseCount() int {
	if s.block == nil {
		return 0
	}
	return s.block.strong
}

// Clone returns new owner of the object.
func (s Shared[T]) Clone() Shared[T] {
	if s.block != nil {
		s.block.strong++
	}
	return s
}

// Move transfers ownership to the returned pointer, leaving s empty.
func (s *Shared[T]) Move() Shared[T] {
	m := *s
	*s = Shared[T]{}
	return m
}

// Assign makes s an owner of the object owned by o, releasing the previous one.
func (s *Shared[T]) Assign(o Shared[T]) {
	tmp := o.Clone()
	s.Release()
	*s = tmp
}

// Release gives up ownership, leaving s empty.
func (s *Shared[T]) Release() {
	if s.block == nil {
		return
	}
	b := s.block
	*s = Shared[T]{}
	b.releaseStrong()
}

// Reset is Release.
func (s *Shared[T]) Reset() {
	s.Release()
}

// Swap exchanges owned objects of s and o.
func (s *Shared[T]) Swap(o *Shared[T]) {
	*s, *o = *o, *s
}

// Weak returns weak reference to the object.
func (s Shared[T]) Weak() Weak[T] {
	if s.block == nil {
		return Weak[T]{}
	}
	s.block.weak++
	return Weak[T](s)
}

func newConfig[T any](opts []Option[T]) config[T] {
	var c config[T]
	for _, o := range opts {
		o(&c)
	}
	return c
}

func own[T any](obj *T, b *controlBlock) Shared[T] {
	b.strong = 1
	s := Shared[T]{object: obj, block: b}
	if sb, ok := any(obj).(selfBinder[T]); ok {
		sb.bindSelf(s)
	}
	return s
}
