package deque

// Iterators address elements by position in the flattened chunk space, so they are random access.
// Pushing to the front may shift that space and invalidates all iterators.

// Begin returns iterator to the first element.
func (d *Deque[T]) Begin() Iterator[T] {
	return Iterator[T]{d: d, index: d.start}
}

// End returns iterator past the last element.
func (d *Deque[T]) End() Iterator[T] {
	return Iterator[T]{d: d, index: d.start + d.size}
}

// CBegin returns read-only iterator to the first element.
func (d *Deque[T]) CBegin() ConstIterator[T] {
	return d.Begin().Const()
}

// CEnd returns read-only iterator past the last element.
func (d *Deque[T]) CEnd() ConstIterator[T] {
	return d.End().Const()
}

// RBegin returns reverse iterator to the last element.
func (d *Deque[T]) RBegin() ReverseIterator[T] {
	return ReverseIterator[T]{d: d, index: d.start + d.size - 1}
}

// REnd returns reverse iterator before the first element.
func (d *Deque[T]) REnd() ReverseIterator[T] {
	return ReverseIterator[T]{d: d, index: d.start - 1}
}

// CRBegin returns read-only reverse iterator to the last element.
func (d *Deque[T]) CRBegin() ConstReverseIterator[T] {
	return d.RBegin().Const()
}

// CREnd returns read-only reverse iterator before the first element.
func (d *Deque[T]) CREnd() ConstReverseIterator[T] {
	return d.REnd().Const()
}

// Iterator points to an element of the deque.
type Iterator[T any] struct {
	d     *Deque[T]
	index int
}

// Next returns iterator to the following element.
func (it Iterator[T]) Next() Iterator[T] {
	return it.Add(1)
}

// Prev returns iterator to the preceding element.
func (it Iterator[T]) Prev() Iterator[T] {
	return it.Add(-1)
}

// Add returns iterator moved by n elements.
func (it Iterator[T]) Add(n int) Iterator[T] {
	it.index += n
	return it
}

// Sub returns iterator moved back by n elements.
func (it Iterator[T]) Sub(n int) Iterator[T] {
	return it.Add(-n)
}

// Diff returns number of elements between o and it. Both iterators must come from the same deque.
func (it Iterator[T]) Diff(o Iterator[T]) int {
	return it.index - o.index
}

// Equal tells if both iterators point to the same position of the same deque.
func (it Iterator[T]) Equal(o Iterator[T]) bool {
	return it.d == o.d && it.index == o.index
}

// Less tells if it precedes o. Both iterators must come from the same deque.
func (it Iterator[T]) Less(o Iterator[T]) bool {
	return it.index < o.index
}

// Index returns position of the element in the deque.
func (it Iterator[T]) Index() int {
	return it.index - it.d.start
}

// Get returns pointer to the element.
func (it Iterator[T]) Get() *T {
	return it.d.slot(it.index)
}

// Const converts iterator to the read-only one.
func (it Iterator[T]) Const() ConstIterator[T] {
	return ConstIterator[T]{d: it.d, index: it.index}
}

// Reverse converts iterator to the reverse one pointing to the same element.
func (it Iterator[T]) Reverse() ReverseIterator[T] {
	return ReverseIterator[T]{d: it.d, index: it.index}
}

// ConstIterator points to an element of the deque without allowing to modify it.
type ConstIterator[T any] struct {
	d     *Deque[T]
	index int
}

// Next returns iterator to the following element.
func (it ConstIterator[T]) Next() ConstIterator[T] {
	return it.Add(1)
}

// Prev returns iterator to the preceding element.
func (it ConstIterator[T]) Prev() ConstIterator[T] {
	return it.Add(-1)
}

// Add returns iterator moved by n elements.
func (it ConstIterator[T]) Add(n int) ConstIterator[T] {
	it.index += n
	return it
}

// Sub returns iterator moved back by n elements.
func (it ConstIterator[T]) Sub(n int) ConstIterator[T] {
	return it.Add(-n)
}

// Diff returns number of elements between o and it. Both iterators must come from the same deque.
func (it ConstIterator[T]) Diff(o ConstIterator[T]) int {
	return it.index - o.index
}

// Equal tells if both iterators point to the same position of the same deque.
func (it ConstIterator[T]) Equal(o ConstIterator[T]) bool {
	return it.d == o.d && it.index == o.index
}

// Less tells if it precedes o. Both iterators must come from the same deque.
func (it ConstIterator[T]) Less(o ConstIterator[T]) bool {
	return it.index < o.index
}

// Index returns position of the element in the deque.
func (it ConstIterator[T]) Index() int {
	return it.index - it.d.start
}

// Value returns the element.
func (it ConstIterator[T]) Value() T {
	return *it.d.slot(it.index)
}

// ReverseIterator walks the deque from back to front.
type ReverseIterator[T any] struct {
	d     *Deque[T]
	index int
}

// Next returns iterator to the preceding element of the deque.
func (it ReverseIterator[T]) Next() ReverseIterator[T] {
	return it.Add(1)
}

// Prev returns iterator to the following element of the deque.
func (it ReverseIterator[T]) Prev() ReverseIterator[T] {
	return it.Add(-1)
}

// Add returns iterator moved by n elements towards the front.
func (it ReverseIterator[T]) Add(n int) ReverseIterator[T] {
	it.index -= n
	return it
}

// Sub returns iterator moved by n elements towards the back.
func (it ReverseIterator[T]) Sub(n int) ReverseIterator[T] {
	return it.Add(-n)
}

// Diff returns number of reverse steps from o to it. Both iterators must come from the same deque.
func (it ReverseIterator[T]) Diff(o ReverseIterator[T]) int {
	return o.index - it.index
}

// Equal tells if both iterators point to the same position of the same deque.
func (it ReverseIterator[T]) Equal(o ReverseIterator[T]) bool {
	return it.d == o.d && it.index == o.index
}

// Less tells if it is visited before o. Both iterators must come from the same deque.
func (it ReverseIterator[T]) Less(o ReverseIterator[T]) bool {
	return it.index > o.index
}

// Index returns position of the element in the deque.
func (it ReverseIterator[T]) Index() int {
	return it.index - it.d.start
}

// Get returns pointer to the element.
func (it ReverseIterator[T]) Get() *T {
	return it.d.slot(it.index)
}

// Const converts iterator to the read-only one.
func (it ReverseIterator[T]) Const() ConstReverseIterator[T] {
	return ConstReverseIterator[T]{d: it.d, index: it.index}
}

// Base converts iterator to the forward one pointing to the same element.
func (it ReverseIterator[T]) Base() Iterator[T] {
	return Iterator[T]{d: it.d, index: it.index}
}

// ConstReverseIterator walks the deque from back to front without allowing to modify elements.
type ConstReverseIterator[T any] struct {
	d     *Deque[T]
	index int
}

// Next returns iterator to the preceding element of the deque.
func (it ConstReverseIterator[T]) Next() ConstReverseIterator[T] {
	return it.Add(1)
}

// Prev returns iterator to the following element of the deque.
func (it ConstReverseIterator[T]) Prev() ConstReverseIterator[T] {
	return it.Add(-1)
}

// Add returns iterator moved by n elements towards the front.
func (it ConstReverseIterator[T]) Add(n int) ConstReverseIterator[T] {
	it.index -= n
	return it
}

// Sub returns iterator moved by n elements towards the back.
func (it ConstReverseIterator[T]) Sub(n int) ConstReverseIterator[T] {
	return it.Add(-n)
}

// Diff returns number of reverse steps from o to it. Both iterators must come from the same deque.
func (it ConstReverseIterator[T]) Diff(o ConstReverseIterator[T]) int {
	return o.index - it.index
}

// Equal tells if both iterators point to the same position of the same deque.
func (it ConstReverseIterator[T]) Equal(o ConstReverseIterator[T]) bool {
	return it.d == o.d && it.index == o.index
}

// Less tells if it is visited before o. Both iterators must come from the same deque.
func (it ConstReverseIterator[T]) Less(o ConstReverseIterator[T]) bool {
	return it.index > o.index
}

// Index returns position of the element in the deque.
func (it ConstReverseIterator[T]) Index() int {
	return it.index - it.d.start
}

// Value returns the element.
func (it ConstReverseIterator[T]) Value() T {
	return *it.d.slot(it.index)
}
