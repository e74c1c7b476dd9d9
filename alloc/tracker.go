package alloc

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var _ Observer = &Tracker{}

// Tracker counts allocator traffic and injects failures. It is used to verify that containers release
// everything they acquire, also when an operation fails halfway.
type Tracker struct {
	log *zap.Logger

	allocations   int
	deallocations int
	liveBytes     int64
	constructions int
	destructions  int

	failAllocationAt   int
	failConstructionAt int
}

// NewTracker creates tracker.
func NewTracker(log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{log: log}
}

// FailAllocationAt makes the k-th allocation from now fail with ErrOutOfMemory. Zero disables it.
func (t *Tracker) FailAllocationAt(k int) {
	t.failAllocationAt = k
}

// FailConstructionAt makes the k-th construction from now fail with ErrConstruction. Zero disables it.
func (t *Tracker) FailConstructionAt(k int) {
	t.failConstructionAt = k
}

// OnAllocate implements Observer.
func (t *Tracker) OnAllocate(typ string, size uintptr, n int) error {
	if t.failAllocationAt > 0 {
		t.failAllocationAt--
		if t.failAllocationAt == 0 {
			t.log.Debug("Allocation failure injected", zap.String("type", typ), zap.Int("count", n))
			return errors.Wrapf(ErrOutOfMemory, "injected failure allocating %d of %s", n, typ)
		}
	}

	t.allocations++
	t.liveBytes += int64(size) * int64(n)
	t.log.Debug("Allocated", zap.String("type", typ), zap.Int("count", n), zap.Uintptr("size", size))
	return nil
}

// OnDeallocate implements Observer.
func (t *Tracker) OnDeallocate(typ string, size uintptr, n int) {
	t.deallocations++
	t.liveBytes -= int64(size) * int64(n)
	t.log.Debug("Deallocated", zap.String("type", typ), zap.Int("count", n), zap.Uintptr("size", size))
}

// OnConstruct implements Observer.
func (t *Tracker) OnConstruct(typ string) error {
	if t.failConstructionAt > 0 {
		t.failConstructionAt--
		if t.failConstructionAt == 0 {
			t.log.Debug("Construction failure injected", zap.String("type", typ))
			return errors.Wrapf(ErrConstruction, "injected failure constructing %s", typ)
		}
	}

	t.constructions++
	t.log.Debug("Constructed", zap.String("type", typ))
	return nil
}

// OnDestroy implements Observer.
func (t *Tracker) OnDestroy(typ string) {
	t.destructions++
	t.log.Debug("Destroyed", zap.String("type", typ))
}

// LiveAllocations returns number of allocations not deallocated yet.
func (t *Tracker) LiveAllocations() int {
	return t.allocations - t.deallocations
}

// LiveBytes returns number of bytes allocated and not deallocated yet.
func (t *Tracker) LiveBytes() int64 {
	return t.liveBytes
}

// LiveObjects returns number of constructed values not destroyed yet.
func (t *Tracker) LiveObjects() int {
	return t.constructions - t.destructions
}

// Constructions returns number of successful constructions.
func (t *Tracker) Constructions() int {
	return t.constructions
}

// Destructions returns number of destructions.
func (t *Tracker) Destructions() int {
	return t.destructions
}

// Check reports every kind of resource still held.
func (t *Tracker) Check() error {
	var err error
	if n := t.LiveAllocations(); n != 0 {
		err = multierr.Append(err, errors.Errorf("%d allocations not released", n))
	}
	if t.liveBytes != 0 {
		err = multierr.Append(err, errors.Errorf("%d bytes not released", t.liveBytes))
	}
	if n := t.LiveObjects(); n != 0 {
		err = multierr.Append(err, errors.Errorf("%d objects not destroyed", n))
	}
	return err
}
