package shared

import "github.com/pkg/errors"

// Weak refers to an object owned by Shared pointers without owning it. It keeps the control block alive,
// so it can tell whether the object still exists.
type Weak[T any] struct {
	object *T
	block  *controlBlock
}

// Empty tells if weak reference has no control block.
func (w Weak[T]) Empty() bool {
	return w.block == nil
}

// Clone returns another weak reference to the same object.
func (w Weak[T]) Clone() Weak[T] {
	if w.block != nil {
		w.block.weak++
	}
	return w
}

// Move transfers the reference to the returned value, leaving w empty.
func (w *Weak[T]) Move() Weak[T] {
	m := *w
	*w = Weak[T]{}
	return m
}

// Release drops the reference, leaving w empty.
func (w *Weak[T]) Release() {
	if w.block == nil {
		return
	}
	b := w.block
	*w = Weak[T]{}
	b.releaseWeak()
}

// Expired tells if the object has been destroyed.
func (w Weak[T]) Expired() (bool, error) {
	if w.block == nil {
		return false, errors.WithStack(ErrNoBlock)
	}
	return w.block.strong == 0, nil
}

// UseCount returns number of Shared pointers owning the object.
func (w Weak[T]) UseCount() (int, error) {
	if w.block == nil {
		return 0, errors.WithStack(ErrNoBlock)
	}
	return w.block.strong, nil
}

// Lock returns new owner of the object, or empty pointer if the object is gone.
func (w Weak[T]) Lock() Shared[T] {
	if w.block == nil || w.block.strong == 0 {
		return Shared[T]{}
	}
	w.block.strong++
	return Shared[T](w)
}
