package hashmap

import (
	"iter"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/outofforest/containers/alloc"
)

func newTracked[K comparable, V any](t *testing.T) (*Map[K, V], *alloc.Tracker) {
	tracker := alloc.NewTracker(zaptest.NewLogger(t))
	m, err := New[K, V](WithAllocator(alloc.WithObserver(tracker)), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return m, tracker
}

func TestDuplicateInsertKeepsSize(t *testing.T) {
	requireT := require.New(t)

	m, tracker := newTracked[string, int](t)
	it, inserted, err := m.Emplace("alpha", 1)
	requireT.NoError(err)
	requireT.True(inserted)
	requireT.Equal(Entry[string, int]{Key: "alpha", Value: 1}, *it.Get())
	requireT.Equal(3, m.BucketCount())

	dup, inserted, err := m.Emplace("alpha", 2)
	requireT.NoError(err)
	requireT.False(inserted)
	requireT.True(dup.Equal(it))
	requireT.Equal(1, dup.Get().Value)
	requireT.Equal(1, m.Len())

	_, inserted, err = m.Insert(Entry[string, int]{Key: "bravo", Value: 2})
	requireT.NoError(err)
	requireT.True(inserted)
	requireT.Equal(2, m.Len())

	m.Clear()
	requireT.True(m.Empty())
	requireT.Equal(0, m.BucketCount())
	requireT.NoError(tracker.Check())
}

func TestFindAfterErase(t *testing.T) {
	requireT := require.New(t)

	m, err := New[string, int]()
	requireT.NoError(err)
	requireT.False(m.Find("alpha").Valid())

	for i, k := range keys {
		_, _, err := m.Emplace(k, i)
		requireT.NoError(err)
	}
	requireT.True(m.Contains("kilo"))
	requireT.NoError(m.Erase(m.Find("kilo")))
	requireT.False(m.Find("kilo").Valid())
	requireT.True(m.Find("kilo").Equal(m.End()))
	requireT.Equal(len(keys)-1, m.Len())

	for i, k := range keys {
		if k == "kilo" {
			continue
		}
		v, err := m.At(k)
		requireT.NoError(err)
		requireT.Equal(i, *v)
	}
}

func TestInsertOneToHundred(t *testing.T) {
	requireT := require.New(t)

	m, err := New[int, int]()
	requireT.NoError(err)
	requireT.Equal(DefaultMaxLoadFactor, m.MaxLoadFactor())

	bucketCount := m.BucketCount()
	for k := 1; k <= 100; k++ {
		_, inserted, err := m.Emplace(k, k)
		requireT.NoError(err)
		requireT.True(inserted)
		requireT.GreaterOrEqual(m.BucketCount(), bucketCount)
		bucketCount = m.BucketCount()
	}

	requireT.Equal(100, m.Len())
	for k := 1; k <= 100; k++ {
		it := m.Find(k)
		requireT.True(it.Valid())
		requireT.Equal(k, it.Get().Value)
	}
	requireT.False(m.Find(101).Valid())
}

func TestRehashPreservesEntries(t *testing.T) {
	requireT := require.New(t)

	m, err := New[int, int](WithLogger(zaptest.NewLogger(t)))
	requireT.NoError(err)

	first, _, err := m.Emplace(0, 0)
	requireT.NoError(err)
	entry := first.Get()

	rehashes := 0
	for k := 1; k < 200; k++ {
		before := m.BucketCount()
		_, _, err := m.Emplace(k, k*k)
		requireT.NoError(err)
		if m.BucketCount() == before {
			continue
		}

		rehashes++
		requireT.Equal(int(2*float64(k+1)*m.MaxLoadFactor())+1, m.BucketCount())
		requireT.Equal(k+1, m.Len())
		for i := range k + 1 {
			v, err := m.At(i)
			requireT.NoError(err)
			requireT.Equal(i*i, *v)
		}
	}

	requireT.Equal(6, rehashes)
	requireT.Same(entry, first.Get())
	requireT.Same(entry, m.Find(0).Get())
	requireT.LessOrEqual(m.LoadFactor(), 1.0)
}

func TestAtAndIndex(t *testing.T) {
	requireT := require.New(t)

	m, err := New[string, int]()
	requireT.NoError(err)
	_, err = m.At("alpha")
	requireT.ErrorIs(err, ErrKeyNotFound)

	v, err := m.Index("alpha")
	requireT.NoError(err)
	requireT.Equal(0, *v)
	*v = 5

	v2, err := m.At("alpha")
	requireT.NoError(err)
	requireT.Same(v, v2)
	requireT.Equal(5, *v2)

	v3, err := m.Index("alpha")
	requireT.NoError(err)
	requireT.Same(v, v3)
	requireT.Equal(1, m.Len())
}

func TestMaxLoadFactor(t *testing.T) {
	requireT := require.New(t)

	_, err := New[int, int](WithMaxLoadFactor(-1))
	requireT.ErrorIs(err, ErrInvalidLoadFactor)

	m, err := New[int, int]()
	requireT.NoError(err)
	requireT.Equal(0.0, m.LoadFactor())
	for k := range 10 {
		_, _, err := m.Emplace(k, k)
		requireT.NoError(err)
	}
	requireT.Equal(21, m.BucketCount())

	requireT.ErrorIs(m.SetMaxLoadFactor(0), ErrInvalidLoadFactor)
	requireT.Equal(DefaultMaxLoadFactor, m.MaxLoadFactor())

	requireT.NoError(m.SetMaxLoadFactor(4))
	requireT.Equal(81, m.BucketCount())

	requireT.NoError(m.SetMaxLoadFactor(0.5))
	requireT.Equal(81, m.BucketCount())
	requireT.InDelta(10.0/81.0, m.LoadFactor(), 1e-9)

	for k := range 10 {
		requireT.True(m.Contains(k))
	}
}

func TestReserve(t *testing.T) {
	requireT := require.New(t)

	m, err := New[int, int]()
	requireT.NoError(err)
	requireT.NoError(m.Reserve(16))
	requireT.Equal(16, m.BucketCount())

	for k := range 10 {
		_, _, err := m.Emplace(k, k)
		requireT.NoError(err)
	}
	requireT.Equal(16, m.BucketCount())

	requireT.NoError(m.Reserve(8))
	requireT.Equal(16, m.BucketCount())
	requireT.NoError(m.Reserve(64))
	requireT.Equal(64, m.BucketCount())
	for k := range 10 {
		requireT.True(m.Contains(k))
	}
}

func TestEraseRangeAndKey(t *testing.T) {
	requireT := require.New(t)

	m, tracker := newTracked[int, string](t)
	for k := range 10 {
		_, _, err := m.Emplace(k, keys[k])
		requireT.NoError(err)
	}

	requireT.NoError(m.EraseRange(m.Begin(), m.Find(5)))
	requireT.Equal([]string{"foxtrot", "golf", "hotel", "india", "juliett"}, slices.Collect(values(m)))

	erased, err := m.EraseKey(7)
	requireT.NoError(err)
	requireT.True(erased)
	erased, err = m.EraseKey(7)
	requireT.NoError(err)
	requireT.False(erased)
	requireT.Equal(4, m.Len())

	requireT.ErrorIs(m.Erase(m.End()), ErrInvalidIterator)

	other, err := New[int, string]()
	requireT.NoError(err)
	it, _, err := other.Emplace(8, "hotel")
	requireT.NoError(err)
	requireT.ErrorIs(m.Erase(it), ErrInvalidIterator)
	requireT.Equal(4, m.Len())

	requireT.NoError(m.EraseRange(m.Begin(), m.End()))
	requireT.True(m.Empty())
	requireT.Greater(m.BucketCount(), 0)

	m.Clear()
	requireT.NoError(tracker.Check())
}

func TestInsertionOrder(t *testing.T) {
	requireT := require.New(t)

	m, err := New[string, int]()
	requireT.NoError(err)
	for i, k := range keys {
		_, _, err := m.Emplace(k, i)
		requireT.NoError(err)
	}

	var got []string
	for k := range m.All() {
		got = append(got, k)
	}
	requireT.Equal(keys, got)

	got = got[:0]
	for it := m.Begin(); it.Valid(); it = it.Next() {
		got = append(got, it.Get().Key)
	}
	requireT.Equal(keys, got)
}

func TestInsertAll(t *testing.T) {
	requireT := require.New(t)

	m, err := New[string, int]()
	requireT.NoError(err)
	requireT.NoError(m.InsertAll(maps.All(map[string]int{"alpha": 1, "bravo": 2, "charlie": 3})))
	requireT.Equal(map[string]int{"alpha": 1, "bravo": 2, "charlie": 3}, maps.Collect(m.All()))

	tracker := alloc.NewTracker(nil)
	m, err = New[string, int](WithAllocator(alloc.WithObserver(tracker)))
	requireT.NoError(err)
	tracker.FailAllocationAt(4)
	err = m.InsertAll(func(yield func(string, int) bool) {
		for i, k := range keys {
			if !yield(k, i) {
				return
			}
		}
	})
	requireT.ErrorIs(err, alloc.ErrOutOfMemory)
	requireT.Equal(1, m.Len())
	m.Clear()
	requireT.NoError(tracker.Check())
}

func TestCustomHashing(t *testing.T) {
	requireT := require.New(t)

	m, err := NewWith[string, int](
		func(k string) uint64 { return StringHash(strings.ToLower(k)) },
		strings.EqualFold,
	)
	requireT.NoError(err)

	_, inserted, err := m.Emplace("Alpha", 1)
	requireT.NoError(err)
	requireT.True(inserted)
	it, inserted, err := m.Emplace("ALPHA", 2)
	requireT.NoError(err)
	requireT.False(inserted)
	requireT.Equal("Alpha", it.Get().Key)
	requireT.True(m.Contains("alpha"))
	requireT.Equal(StringHash("alpha"), StringHash("alpha"))
}

func TestInsertRollsBack(t *testing.T) {
	requireT := require.New(t)

	m, tracker := newTracked[int, int](t)

	// entry, bucket table
	tracker.FailAllocationAt(2)
	_, _, err := m.Emplace(0, 0)
	requireT.ErrorIs(err, alloc.ErrOutOfMemory)
	requireT.Equal(0, m.Len())
	requireT.Equal(0, m.BucketCount())
	requireT.NoError(tracker.Check())

	for k := range 3 {
		_, _, err := m.Emplace(k, k)
		requireT.NoError(err)
	}
	requireT.Equal(3, m.BucketCount())
	live := tracker.LiveAllocations()

	// entry, bucket link, bucket table of the rehash
	for _, k := range []int{3, 2, 1} {
		tracker.FailAllocationAt(k)
		_, _, err := m.Emplace(3, 3)
		requireT.ErrorIs(err, alloc.ErrOutOfMemory)
		requireT.Equal(3, m.Len())
		requireT.Equal(3, m.BucketCount())
		requireT.False(m.Contains(3))
		requireT.Equal(live, tracker.LiveAllocations())
	}
	for k := range 3 {
		requireT.True(m.Contains(k))
	}

	_, _, err = m.Emplace(3, 3)
	requireT.NoError(err)
	requireT.Equal(9, m.BucketCount())

	tracker.FailAllocationAt(1)
	requireT.ErrorIs(m.SetMaxLoadFactor(10), alloc.ErrOutOfMemory)
	requireT.Equal(DefaultMaxLoadFactor, m.MaxLoadFactor())
	requireT.Equal(9, m.BucketCount())

	m.Clear()
	requireT.NoError(tracker.Check())
}

func TestCloneAndAssign(t *testing.T) {
	requireT := require.New(t)

	src, tracker := newTracked[string, int](t)
	for i, k := range keys {
		_, _, err := src.Emplace(k, i)
		requireT.NoError(err)
	}

	c, err := src.Clone()
	requireT.NoError(err)
	requireT.Equal(src.Len(), c.Len())
	requireT.Equal(src.BucketCount(), c.BucketCount())
	requireT.NotSame(src.Find("alpha").Get(), c.Find("alpha").Get())

	*c.Find("alpha").Get() = Entry[string, int]{Key: "alpha", Value: 100}
	v, err := src.At("alpha")
	requireT.NoError(err)
	requireT.Equal(0, *v)

	requireT.NoError(c.Erase(c.Find("bravo")))
	requireT.True(src.Contains("bravo"))

	dst, err := NewWithAllocator(src.Allocator(), ComparableHash[string](), Equal[string])
	requireT.NoError(err)
	_, _, err = dst.Emplace("zulu", 1000)
	requireT.NoError(err)

	tracker.FailAllocationAt(5)
	requireT.ErrorIs(dst.Assign(src), alloc.ErrOutOfMemory)
	requireT.Equal(map[string]int{"zulu": 1000}, maps.Collect(dst.All()))

	tracker.FailAllocationAt(len(keys) + 1)
	requireT.ErrorIs(dst.Assign(src), alloc.ErrOutOfMemory)
	requireT.Equal(map[string]int{"zulu": 1000}, maps.Collect(dst.All()))

	requireT.NoError(dst.Assign(src))
	requireT.Equal(maps.Collect(src.All()), maps.Collect(dst.All()))
	requireT.NoError(dst.Assign(dst))
	for _, k := range keys {
		requireT.True(dst.Contains(k))
	}

	src.Clear()
	c.Clear()
	dst.Clear()
	requireT.NoError(tracker.Check())
}

func TestStackAllocator(t *testing.T) {
	requireT := require.New(t)

	storage := alloc.NewStackStorage(1 << 17)
	m, err := New[int, int](WithAllocator(alloc.WithArena(storage)))
	requireT.NoError(err)
	for k := 1; k <= 100; k++ {
		_, _, err := m.Emplace(k, -k)
		requireT.NoError(err)
	}
	for k := 1; k <= 100; k++ {
		v, err := m.At(k)
		requireT.NoError(err)
		requireT.Equal(-k, *v)
	}

	small := alloc.NewStackStorage(2048)
	m, err = New[int, int](WithAllocator(alloc.WithArena(small)))
	requireT.NoError(err)
	var inserted []int
	for k := range 1000 {
		if _, _, err = m.Emplace(k, k); err != nil {
			break
		}
		inserted = append(inserted, k)
	}
	requireT.ErrorIs(err, alloc.ErrOutOfMemory)
	requireT.NotEmpty(inserted)
	requireT.Equal(len(inserted), m.Len())
	for _, k := range inserted {
		requireT.True(m.Contains(k))
	}
}

type msgSend struct {
	Sender    string
	Recipient string
	Amount    uint64
}

func send(m *Map[string, uint64], msg msgSend) error {
	senderBalance, err := m.At(msg.Sender)
	if err != nil {
		return err
	}
	if *senderBalance < msg.Amount {
		return nil
	}
	recipientBalance, err := m.Index(msg.Recipient)
	if err != nil {
		return err
	}

	*senderBalance -= msg.Amount
	*recipientBalance += msg.Amount
	return nil
}

func TestTransfers(t *testing.T) {
	requireT := require.New(t)

	m, err := NewWith[string, uint64](StringHash, Equal[string])
	requireT.NoError(err)
	for _, k := range keys[:5] {
		_, _, err := m.Emplace(k, 100)
		requireT.NoError(err)
	}

	for i := range 1000 {
		requireT.NoError(send(m, msgSend{
			Sender:    keys[i%5],
			Recipient: keys[(i*7)%len(keys)],
			Amount:    uint64(i % 13),
		}))
	}

	_, err = m.At("nobody")
	requireT.ErrorIs(err, ErrKeyNotFound)
	requireT.ErrorIs(send(m, msgSend{Sender: "nobody", Recipient: "alpha", Amount: 1}), ErrKeyNotFound)

	var total uint64
	for _, v := range m.All() {
		total += v
	}
	requireT.Equal(uint64(500), total)
	requireT.LessOrEqual(m.Len(), len(keys))
}

func values[K, V any](m *Map[K, V]) iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.All() {
			if !yield(v) {
				return
			}
		}
	}
}
