package list

// Iterator points to an element of the list. Past-the-end position is a nil node together with the list,
// so stepping forward from it wraps to the first element and stepping back reaches the last one.
type Iterator[T any] struct {
	node *node[T]
	list *List[T]
}

// Next returns iterator to the following element.
func (it Iterator[T]) Next() Iterator[T] {
	if it.node == nil {
		it.node = it.list.begin
		return it
	}
	it.node = it.node.next
	return it
}

// Prev returns iterator to the preceding element.
func (it Iterator[T]) Prev() Iterator[T] {
	if it.node == nil {
		it.node = it.list.end
		return it
	}
	it.node = it.node.prev
	return it
}

// Valid tells if iterator points to an element.
func (it Iterator[T]) Valid() bool {
	return it.node != nil
}

// Equal tells if both iterators point to the same position.
func (it Iterator[T]) Equal(o Iterator[T]) bool {
	return it.node == o.node
}

// Get returns pointer to the element.
func (it Iterator[T]) Get() *T {
	return &it.node.value
}

// Const converts iterator to the read-only one.
func (it Iterator[T]) Const() ConstIterator[T] {
	return ConstIterator[T](it)
}

// ConstIterator points to an element of the list without allowing to modify it.
type ConstIterator[T any] struct {
	node *node[T]
	list *List[T]
}

// Next returns iterator to the following element.
func (it ConstIterator[T]) Next() ConstIterator[T] {
	return Iterator[T](it).Next().Const()
}

// Prev returns iterator to the preceding element.
func (it ConstIterator[T]) Prev() ConstIterator[T] {
	return Iterator[T](it).Prev().Const()
}

// Valid tells if iterator points to an element.
func (it ConstIterator[T]) Valid() bool {
	return it.node != nil
}

// Equal tells if both iterators point to the same position.
func (it ConstIterator[T]) Equal(o ConstIterator[T]) bool {
	return it.node == o.node
}

// Value returns the element.
func (it ConstIterator[T]) Value() T {
	return it.node.value
}
