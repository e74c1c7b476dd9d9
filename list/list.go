package list

import (
	"iter"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/outofforest/containers/alloc"
)

// Option configures list.
type Option func(c *config)

type config struct {
	allocOpts []alloc.Option
}

// WithAllocator configures allocator used for nodes.
func WithAllocator(opts ...alloc.Option) Option {
	return func(c *config) {
		c.allocOpts = append(c.allocOpts, opts...)
	}
}

type node[T any] struct {
	prev  *node[T]
	next  *node[T]
	value T
}

// List is a doubly linked list allocating its nodes from an allocator. Nodes never move, so iterators stay
// valid until the element they point to is erased. List is not safe for concurrent use.
type List[T any] struct {
	values alloc.Allocator[T]
	nodes  alloc.Allocator[node[T]]

	begin *node[T]
	end   *node[T]
	size  int
}

// New creates empty list.
func New[T any](opts ...Option) *List[T] {
	c := config{}
	for _, o := range opts {
		o(&c)
	}
	return NewWithAllocator(alloc.New[T](c.allocOpts...))
}

// NewWithAllocator creates empty list using allocator a.
func NewWithAllocator[T any](a alloc.Allocator[T]) *List[T] {
	return &List[T]{
		values: a,
		nodes:  alloc.Rebind[node[T]](a),
	}
}

// NewSized creates list of n zero values.
func NewSized[T any](n int, opts ...Option) (*List[T], error) {
	var zero T
	return NewFilled(n, zero, opts...)
}

// NewFilled creates list of n copies of v.
func NewFilled[T any](n int, v T, opts ...Option) (*List[T], error) {
	if n < 0 {
		return nil, errors.Errorf("negative size %d", n)
	}

	l := New[T](opts...)
	for range n {
		if err := l.PushBack(v); err != nil {
			l.Clear()
			return nil, err
		}
	}
	return l, nil
}

// Allocator returns allocator of the list.
func (l *List[T]) Allocator() alloc.Allocator[T] {
	return l.values
}

// Len returns number of elements.
func (l *List[T]) Len() int {
	return l.size
}

// Empty tells if list has no elements.
func (l *List[T]) Empty() bool {
	return l.size == 0
}

// Begin returns iterator to the first element.
func (l *List[T]) Begin() Iterator[T] {
	return Iterator[T]{node: l.begin, list: l}
}

// End returns past-the-end iterator.
func (l *List[T]) End() Iterator[T] {
	return Iterator[T]{list: l}
}

// Last returns iterator to the last element.
func (l *List[T]) Last() Iterator[T] {
	return Iterator[T]{node: l.end, list: l}
}

// Front returns pointer to the first element.
func (l *List[T]) Front() (*T, error) {
	if l.begin == nil {
		return nil, errors.WithStack(ErrEmpty)
	}
	return &l.begin.value, nil
}

// Back returns pointer to the last element.
func (l *List[T]) Back() (*T, error) {
	if l.end == nil {
		return nil, errors.WithStack(ErrEmpty)
	}
	return &l.end.value, nil
}

// Insert places v before pos and returns iterator to it. Past-the-end pos appends.
func (l *List[T]) Insert(pos Iterator[T], v T) (Iterator[T], error) {
	if pos.list != l || (pos.node != nil && !l.linked(pos.node)) {
		return Iterator[T]{}, errors.WithStack(ErrInvalidIterator)
	}

	n, err := l.newNode(v)
	if err != nil {
		return Iterator[T]{}, err
	}

	place := pos.node
	switch {
	case place == nil && l.end == nil:
		l.begin = n
		l.end = n
	case place == nil:
		n.prev = l.end
		l.end.next = n
		l.end = n
	default:
		n.next = place
		n.prev = place.prev
		if place.prev != nil {
			place.prev.next = n
		} else {
			l.begin = n
		}
		place.prev = n
	}
	l.size++

	return Iterator[T]{node: n, list: l}, nil
}

// Erase destroys element at pos and returns iterator to the following one.
func (l *List[T]) Erase(pos Iterator[T]) (Iterator[T], error) {
	if pos.list != l || pos.node == nil || !l.linked(pos.node) {
		return Iterator[T]{}, errors.WithStack(ErrInvalidIterator)
	}

	n := pos.node
	next := n.next
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.begin = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.end = n.prev
	}
	l.freeNode(n)
	l.size--

	return Iterator[T]{node: next, list: l}, nil
}

// PushBack appends v.
func (l *List[T]) PushBack(v T) error {
	_, err := l.Insert(l.End(), v)
	return err
}

// PushFront prepends v.
func (l *List[T]) PushFront(v T) error {
	_, err := l.Insert(l.Begin(), v)
	return err
}

// PopBack destroys the last element.
func (l *List[T]) PopBack() error {
	if l.end == nil {
		return errors.WithStack(ErrEmpty)
	}
	_, err := l.Erase(l.Last())
	return err
}

// PopFront destroys the first element.
func (l *List[T]) PopFront() error {
	if l.begin == nil {
		return errors.WithStack(ErrEmpty)
	}
	_, err := l.Erase(l.Begin())
	return err
}

// Clone returns copy of the list allocated with the select-on-copy allocator. On failure all the nodes
// created so far are released.
func (l *List[T]) Clone() (*List[T], error) {
	c := NewWithAllocator(l.values.SelectOnCopy())
	if err := c.appendFrom(l); err != nil {
		return nil, err
	}
	return c, nil
}

// Assign replaces content with a copy of other. If allocator policy of other says so, its allocator is
// taken first. If copying fails l is left untouched.
func (l *List[T]) Assign(other *List[T]) error {
	if l == other {
		return nil
	}

	a := l.values
	if other.values.PropagateOnCopyAssignment() {
		a = other.values
	}

	tmp := NewWithAllocator(a)
	if err := tmp.appendFrom(other); err != nil {
		return err
	}

	l.Clear()
	l.swap(tmp)
	return nil
}

// Clear destroys all the elements.
func (l *List[T]) Clear() {
	for n := l.begin; n != nil; {
		next := n.next
		l.freeNode(n)
		n = next
	}
	l.begin = nil
	l.end = nil
	l.size = 0
}

// All iterates over elements from front to back.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.begin; n != nil; n = n.next {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Backward iterates over elements from back to front.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.end; n != nil; n = n.prev {
			if !yield(n.value) {
				return
			}
		}
	}
}

func (l *List[T]) appendFrom(other *List[T]) error {
	for n := other.begin; n != nil; n = n.next {
		if err := l.PushBack(n.value); err != nil {
			l.Clear()
			return err
		}
	}
	return nil
}

func (l *List[T]) swap(other *List[T]) {
	l.values, other.values = other.values, l.values
	l.nodes, other.nodes = other.nodes, l.nodes
	l.begin, other.begin = other.begin, l.begin
	l.end, other.end = other.end, l.end
	l.size, other.size = other.size, l.size
}

// newNode allocates node and constructs v inside. If construction fails, raw node is deallocated.
func (l *List[T]) newNode(v T) (*node[T], error) {
	storage, err := l.nodes.Allocate(1)
	if err != nil {
		return nil, err
	}
	n := &storage[0]
	if err := l.values.Construct(&n.value, v); err != nil {
		l.nodes.Deallocate(storage)
		return nil, err
	}
	n.prev = nil
	n.next = nil
	return n, nil
}

// linked tells if n is still in the list. Erased node has both links cleared and is neither begin nor end.
func (l *List[T]) linked(n *node[T]) bool {
	return (n.prev != nil || l.begin == n) && (n.next != nil || l.end == n)
}

func (l *List[T]) freeNode(n *node[T]) {
	l.values.Destroy(&n.value)
	n.prev = nil
	n.next = nil
	l.nodes.Deallocate(unsafe.Slice(n, 1))
}
