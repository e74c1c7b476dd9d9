package shared

import "github.com/pkg/errors"

type selfBinder[T any] interface {
	bindSelf(s Shared[T])
}

// Self is embedded in T to let the object obtain Shared pointers to itself. The reference is set when the
// first Shared pointer to the object is created. Self implements alloc.Destroyer; a T defining its own
// Destroy method must call Self.Destroy from it, otherwise the control block is never released.
//
// A copy of the object is not owned by the pointers of the original, so Self carried by the copy is unbound
// until the copy itself gets its first Shared pointer.
type Self[T any] struct {
	self *Self[T]
	weak Weak[T]
}

// SharedFromThis returns new owner of the object.
func (s *Self[T]) SharedFromThis() (Shared[T], error) {
	if !s.bound() {
		return Shared[T]{}, errors.WithStack(ErrNoOwner)
	}
	sp := s.weak.Lock()
	if sp.Empty() {
		return Shared[T]{}, errors.WithStack(ErrNoOwner)
	}
	return sp, nil
}

// WeakFromThis returns weak reference to the object. It is empty if no Shared pointer has been created yet.
func (s *Self[T]) WeakFromThis() Weak[T] {
	if !s.bound() {
		return Weak[T]{}
	}
	return s.weak.Clone()
}

// Destroy drops the reference.
func (s *Self[T]) Destroy() {
	if s.bound() {
		s.weak.Release()
	}
	*s = Self[T]{}
}

// bound tells if the reference belongs to this instance. Weak copied together with the object belongs to
// the original, it is neither used nor released here.
func (s *Self[T]) bound() bool {
	return s.self == s
}

func (s *Self[T]) bindSelf(sp Shared[T]) {
	if s.bound() {
		if expired, err := s.weak.Expired(); err == nil && !expired {
			return
		}
		s.weak.Release()
	}
	s.self = s
	s.weak = sp.Weak()
}
