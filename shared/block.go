package shared

import (
	"unsafe"

	"github.com/outofforest/containers/alloc"
)

// controlBlock tracks owners of an object. Object is destroyed when strong drops to zero, block is released
// when both strong and weak are zero. It does not depend on the object type, so pointers of different types
// may share it.
type controlBlock struct {
	strong  int
	weak    int
	freed   bool
	variant blockVariant
}

// blockVariant is implemented by externalBlock and inlineBlock only.
type blockVariant interface {
	destroyObject()
	deallocate()
}

func (b *controlBlock) releaseStrong() {
	b.strong--
	if b.strong > 0 {
		return
	}

	// Destroying the object may release weak references to this block, the extra one keeps the block alive
	// until the deleter returns.
	b.weak++
	b.variant.destroyObject()
	b.releaseWeak()
}

func (b *controlBlock) releaseWeak() {
	b.weak--
	if b.weak == 0 && b.strong == 0 {
		b.useDeallocator()
	}
}

func (b *controlBlock) useDeallocator() {
	if b.freed {
		panic("control block released twice")
	}
	b.freed = true
	b.variant.deallocate()
}

// externalBlock points to an object allocated separately and destroys it with a deleter.
type externalBlock[T any] struct {
	controlBlock

	object  *T
	deleter func(*T)
	blocks  alloc.Allocator[externalBlock[T]]
}

func (b *externalBlock[T]) destroyObject() {
	obj := b.object
	b.object = nil
	if b.deleter != nil {
		b.deleter(obj)
		return
	}
	destroy(obj)
}

func (b *externalBlock[T]) deallocate() {
	b.deleter = nil
	b.variant = nil
	b.blocks.Deallocate(unsafe.Slice(b, 1))
}

// inlineBlock stores the object inside, both share one allocation.
type inlineBlock[T any] struct {
	controlBlock

	values alloc.Allocator[T]
	blocks alloc.Allocator[inlineBlock[T]]
	object T
}

func (b *inlineBlock[T]) destroyObject() {
	b.values.Destroy(&b.object)
}

func (b *inlineBlock[T]) deallocate() {
	b.variant = nil
	b.blocks.Deallocate(unsafe.Slice(b, 1))
}

// destroy is the default deleter. Memory is left for the garbage collector.
func destroy[T any](obj *T) {
	if d, ok := any(obj).(alloc.Destroyer); ok {
		d.Destroy()
	}
}
