package deque

import (
	"iter"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/containers/alloc"
)

// Option configures deque.
type Option func(c *config)

type config struct {
	log       *zap.Logger
	allocOpts []alloc.Option
}

// WithLogger sets logger receiving debug events about storage growth.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithAllocator configures allocator used for elements and chunk table.
func WithAllocator(opts ...alloc.Option) Option {
	return func(c *config) {
		c.allocOpts = append(c.allocOpts, opts...)
	}
}

// Deque is a double-ended sequence stored in fixed-size chunks referenced by a chunk table.
// Growing replaces the table only, so elements never move in memory when pushed at either end.
// Deque is not safe for concurrent use.
type Deque[T any] struct {
	alloc alloc.Allocator[T]
	table alloc.Allocator[[]T]
	log   *zap.Logger

	chunks [][]T
	start  int
	size   int
}

// New creates empty deque.
func New[T any](opts ...Option) *Deque[T] {
	c := config{}
	for _, o := range opts {
		o(&c)
	}
	return NewWithAllocator(alloc.New[T](c.allocOpts...), opts...)
}

// NewWithAllocator creates empty deque using allocator a.
func NewWithAllocator[T any](a alloc.Allocator[T], opts ...Option) *Deque[T] {
	c := config{log: zap.NewNop()}
	for _, o := range opts {
		o(&c)
	}
	return &Deque[T]{
		alloc: a,
		table: alloc.Rebind[[]T](a),
		log:   c.log,
	}
}

// NewSized creates deque holding n zero values.
func NewSized[T any](n int, opts ...Option) (*Deque[T], error) {
	var zero T
	return NewFilled(n, zero, opts...)
}

// NewFilled creates deque holding n copies of v.
func NewFilled[T any](n int, v T, opts ...Option) (*Deque[T], error) {
	if n < 0 {
		return nil, errors.Errorf("negative size %d", n)
	}

	d := New[T](opts...)
	if err := d.fill(n, func(int) T { return v }); err != nil {
		return nil, err
	}
	return d, nil
}

// Allocator returns element allocator.
func (d *Deque[T]) Allocator() alloc.Allocator[T] {
	return d.alloc
}

// Len returns number of elements.
func (d *Deque[T]) Len() int {
	return d.size
}

// Empty tells if deque has no elements.
func (d *Deque[T]) Empty() bool {
	return d.size == 0
}

// ChunkCount returns number of allocated chunks.
func (d *Deque[T]) ChunkCount() int {
	return len(d.chunks)
}

// Index returns pointer to the i-th element. It does not check bounds.
func (d *Deque[T]) Index(i int) *T {
	return d.slot(d.start + i)
}

// At returns pointer to the i-th element.
func (d *Deque[T]) At(i int) (*T, error) {
	if i < 0 || i >= d.size {
		return nil, errors.Wrapf(ErrOutOfRange, "index %d, size %d", i, d.size)
	}
	return d.Index(i), nil
}

// Front returns pointer to the first element.
func (d *Deque[T]) Front() (*T, error) {
	if d.size == 0 {
		return nil, errors.WithStack(ErrEmpty)
	}
	return d.Index(0), nil
}

// Back returns pointer to the last element.
func (d *Deque[T]) Back() (*T, error) {
	if d.size == 0 {
		return nil, errors.WithStack(ErrEmpty)
	}
	return d.Index(d.size - 1), nil
}

// PushBack appends v.
func (d *Deque[T]) PushBack(v T) error {
	if d.start+d.size == len(d.chunks)*chunkSize {
		if err := d.growBack(); err != nil {
			return err
		}
	}
	if err := d.alloc.Construct(d.slot(d.start+d.size), v); err != nil {
		return err
	}
	d.size++
	return nil
}

// PushFront prepends v.
func (d *Deque[T]) PushFront(v T) error {
	if d.start == 0 {
		if err := d.growFront(); err != nil {
			return err
		}
	}
	if err := d.alloc.Construct(d.slot(d.start-1), v); err != nil {
		return err
	}
	d.start--
	d.size++
	return nil
}

// PopBack destroys the last element.
func (d *Deque[T]) PopBack() error {
	if d.size == 0 {
		return errors.WithStack(ErrEmpty)
	}
	d.alloc.Destroy(d.slot(d.start + d.size - 1))
	d.size--
	return nil
}

// PopFront destroys the first element.
func (d *Deque[T]) PopFront() error {
	if d.size == 0 {
		return errors.WithStack(ErrEmpty)
	}
	d.alloc.Destroy(d.slot(d.start))
	d.start++
	d.size--
	return nil
}

// Insert places v before pos. Elements between pos and the nearer end are moved one slot towards that end,
// so values change slots while the storage stays in place.
func (d *Deque[T]) Insert(pos Iterator[T], v T) error {
	if pos.d != d || pos.index < d.start || pos.index > d.start+d.size {
		return errors.WithStack(ErrInvalidIterator)
	}

	i := pos.index - d.start
	if i < d.size-i {
		if err := d.PushFront(v); err != nil {
			return err
		}
		d.rotateFrontTo(i)
		return nil
	}

	if err := d.PushBack(v); err != nil {
		return err
	}
	d.rotateBackTo(i)
	return nil
}

// Erase destroys the element at pos. Elements between pos and the nearer end are moved one slot towards
// the gap.
func (d *Deque[T]) Erase(pos Iterator[T]) error {
	if pos.d != d || pos.index < d.start || pos.index >= d.start+d.size {
		return errors.WithStack(ErrInvalidIterator)
	}

	i := pos.index - d.start
	if i < d.size-1-i {
		d.rotateToFront(i)
		return d.PopFront()
	}
	d.rotateToBack(i)
	return d.PopBack()
}

// Clone returns deep copy of the deque, allocated with the select-on-copy allocator of the source.
// On failure nothing allocated by the copy is left behind.
func (d *Deque[T]) Clone() (*Deque[T], error) {
	c := &Deque[T]{
		alloc: d.alloc.SelectOnCopy(),
		log:   d.log,
	}
	c.table = alloc.Rebind[[]T](c.alloc)
	if err := c.fill(d.size, func(i int) T { return *d.Index(i) }); err != nil {
		return nil, err
	}
	return c, nil
}

// Assign replaces content with a copy of other. If copying fails d is left untouched.
func (d *Deque[T]) Assign(other *Deque[T]) error {
	if d == other {
		return nil
	}

	a := d.alloc
	if other.alloc.PropagateOnCopyAssignment() {
		a = other.alloc
	}

	tmp := &Deque[T]{
		alloc: a,
		table: alloc.Rebind[[]T](a),
		log:   d.log,
	}
	if err := tmp.fill(other.size, func(i int) T { return *other.Index(i) }); err != nil {
		return err
	}

	d.Clear()
	d.swap(tmp)
	return nil
}

// Clear destroys all the elements in order and releases the storage.
func (d *Deque[T]) Clear() {
	for i := range d.size {
		d.alloc.Destroy(d.Index(i))
	}
	d.release(d.chunks)
	d.table.Deallocate(d.chunks)
	d.chunks = nil
	d.start = 0
	d.size = 0
}

// All iterates over elements from front to back.
func (d *Deque[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range d.size {
			if !yield(i, *d.Index(i)) {
				return
			}
		}
	}
}

// Backward iterates over elements from back to front.
func (d *Deque[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := d.size - 1; i >= 0; i-- {
			if !yield(i, *d.Index(i)) {
				return
			}
		}
	}
}

func (d *Deque[T]) swap(other *Deque[T]) {
	d.alloc, other.alloc = other.alloc, d.alloc
	d.table, other.table = other.table, d.table
	d.chunks, other.chunks = other.chunks, d.chunks
	d.start, other.start = other.start, d.start
	d.size, other.size = other.size, d.size
}

// rotateBackTo moves the last element to position i.
func (d *Deque[T]) rotateBackTo(i int) {
	last := d.size - 1
	v := *d.Index(last)
	for j := last; j > i; j-- {
		*d.Index(j) = *d.Index(j - 1)
	}
	*d.Index(i) = v
}

// rotateFrontTo moves the first element to position i.
func (d *Deque[T]) rotateFrontTo(i int) {
	v := *d.Index(0)
	for j := 0; j < i; j++ {
		*d.Index(j) = *d.Index(j + 1)
	}
	*d.Index(i) = v
}

// rotateToBack moves element at position i to the back.
func (d *Deque[T]) rotateToBack(i int) {
	last := d.size - 1
	v := *d.Index(i)
	for j := i; j < last; j++ {
		*d.Index(j) = *d.Index(j + 1)
	}
	*d.Index(last) = v
}

// rotateToFront moves element at position i to the front.
func (d *Deque[T]) rotateToFront(i int) {
	v := *d.Index(i)
	for j := i; j > 0; j-- {
		*d.Index(j) = *d.Index(j - 1)
	}
	*d.Index(0) = v
}
