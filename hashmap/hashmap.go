package hashmap

import (
	"iter"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/containers/alloc"
	"github.com/outofforest/containers/list"
)

// DefaultMaxLoadFactor is the max load factor used if none is configured.
const DefaultMaxLoadFactor = 1.0

// Option configures map.
type Option func(c *config)

type config struct {
	log           *zap.Logger
	allocOpts     []alloc.Option
	maxLoadFactor float64
}

// WithLogger sets logger receiving debug events about rehashing.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithAllocator configures allocator used for entries, buckets and bucket links.
func WithAllocator(opts ...alloc.Option) Option {
	return func(c *config) {
		c.allocOpts = append(c.allocOpts, opts...)
	}
}

// WithMaxLoadFactor sets max load factor.
func WithMaxLoadFactor(x float64) Option {
	return func(c *config) {
		c.maxLoadFactor = x
	}
}

type bucket[K, V any] = list.List[Iterator[K, V]]

// Map is a hash map with separate chaining. Entries live in a single list in insertion order, buckets hold
// iterators to them. Map is not safe for concurrent use.
type Map[K, V any] struct {
	log           *zap.Logger
	hash          HashingFunc[K]
	equal         EqualFunc[K]
	maxLoadFactor float64

	entries *list.List[Entry[K, V]]
	links   alloc.Allocator[Iterator[K, V]]
	table   alloc.Allocator[bucket[K, V]]
	buckets []bucket[K, V]
}

// New creates map for comparable keys using ComparableHash and ==.
func New[K comparable, V any](opts ...Option) (*Map[K, V], error) {
	return NewWith[K, V](ComparableHash[K](), Equal[K], opts...)
}

// NewWith creates map using custom hashing and equality functions.
func NewWith[K, V any](hash HashingFunc[K], equal EqualFunc[K], opts ...Option) (*Map[K, V], error) {
	c := newConfig(opts)
	return NewWithAllocator(alloc.New[Entry[K, V]](c.allocOpts...), hash, equal, opts...)
}

// NewWithAllocator creates map using allocator a.
func NewWithAllocator[K, V any](
	a alloc.Allocator[Entry[K, V]],
	hash HashingFunc[K],
	equal EqualFunc[K],
	opts ...Option,
) (*Map[K, V], error) {
	c := newConfig(opts)
	if !(c.maxLoadFactor > 0) {
		return nil, errors.Wrapf(ErrInvalidLoadFactor, "%v", c.maxLoadFactor)
	}
	m := newMap(a, hash, equal, c.maxLoadFactor)
	m.log = c.log
	return m, nil
}

func newConfig(opts []Option) config {
	c := config{
		log:           zap.NewNop(),
		maxLoadFactor: DefaultMaxLoadFactor,
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

func newMap[K, V any](
	a alloc.Allocator[Entry[K, V]],
	hash HashingFunc[K],
	equal EqualFunc[K],
	maxLoadFactor float64,
) *Map[K, V] {
	return &Map[K, V]{
		log:           zap.NewNop(),
		hash:          hash,
		equal:         equal,
		maxLoadFactor: maxLoadFactor,
		entries:       list.NewWithAllocator(a),
		links:         alloc.Rebind[Iterator[K, V]](a),
		table:         alloc.Rebind[bucket[K, V]](a),
	}
}

// Allocator returns entry allocator.
func (m *Map[K, V]) Allocator() alloc.Allocator[Entry[K, V]] {
	return m.entries.Allocator()
}

// Len returns number of entries.
func (m *Map[K, V]) Len() int {
	return m.entries.Len()
}

// Empty tells if map has no entries.
func (m *Map[K, V]) Empty() bool {
	return m.entries.Empty()
}

// BucketCount returns number of buckets.
func (m *Map[K, V]) BucketCount() int {
	return len(m.buckets)
}

// LoadFactor returns average number of entries per bucket, 0 if there are no buckets.
func (m *Map[K, V]) LoadFactor() float64 {
	if len(m.buckets) == 0 {
		return 0
	}
	return float64(m.entries.Len()) / float64(len(m.buckets))
}

// MaxLoadFactor returns load factor above which buckets are rebuilt.
func (m *Map[K, V]) MaxLoadFactor() float64 {
	return m.maxLoadFactor
}

// SetMaxLoadFactor sets max load factor and rehashes if it is exceeded already. On failure the previous
// value is restored.
func (m *Map[K, V]) SetMaxLoadFactor(x float64) error {
	if !(x > 0) {
		return errors.Wrapf(ErrInvalidLoadFactor, "%v", x)
	}
	prev := m.maxLoadFactor
	m.maxLoadFactor = x
	if err := m.rehash(false); err != nil {
		m.maxLoadFactor = prev
		return err
	}
	return nil
}

// Reserve makes the map have at least n buckets.
func (m *Map[K, V]) Reserve(n int) error {
	if n <= len(m.buckets) {
		return nil
	}
	return m.rebuild(n)
}

// Begin returns iterator to the first entry in insertion order.
func (m *Map[K, V]) Begin() Iterator[K, V] {
	return m.entries.Begin()
}

// End returns past-the-end iterator.
func (m *Map[K, V]) End() Iterator[K, V] {
	return m.entries.End()
}

// All iterates over entries in insertion order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for e := range m.entries.All() {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Find returns iterator to the entry with key k, End if there is none.
func (m *Map[K, V]) Find(k K) Iterator[K, V] {
	if len(m.buckets) == 0 {
		return m.End()
	}
	for it := range m.bucketOf(k).All() {
		if m.equal(it.Get().Key, k) {
			return it
		}
	}
	return m.End()
}

// Contains tells if there is an entry with key k.
func (m *Map[K, V]) Contains(k K) bool {
	return m.Find(k).Valid()
}

// At returns pointer to the value stored under k.
func (m *Map[K, V]) At(k K) (*V, error) {
	it := m.Find(k)
	if !it.Valid() {
		return nil, errors.Wrapf(ErrKeyNotFound, "key %v", k)
	}
	return &it.Get().Value, nil
}

// Index returns pointer to the value stored under k, inserting zero value first if k is absent.
func (m *Map[K, V]) Index(k K) (*V, error) {
	it := m.Find(k)
	if !it.Valid() {
		var zero V
		var err error
		if it, _, err = m.Emplace(k, zero); err != nil {
			return nil, err
		}
	}
	return &it.Get().Value, nil
}

// Emplace inserts entry unless key k is present already. It returns iterator to the entry stored under k
// and tells if it was inserted. On failure the map is left unmodified.
func (m *Map[K, V]) Emplace(k K, v V) (Iterator[K, V], bool, error) {
	// Entry is appended before the lookup, so comparison always runs against a stored key.
	if err := m.entries.PushBack(Entry[K, V]{Key: k, Value: v}); err != nil {
		return m.End(), false, err
	}
	it := m.entries.Last()

	if existing := m.Find(k); existing.Valid() {
		if _, err := m.entries.Erase(it); err != nil {
			return m.End(), false, err
		}
		return existing, false, nil
	}

	if len(m.buckets) == 0 {
		// Building buckets places the new entry too.
		if err := m.rehash(true); err != nil {
			return m.End(), false, m.dropEntry(it, err)
		}
		return it, true, nil
	}

	b := m.bucketOf(k)
	if err := b.PushBack(it); err != nil {
		return m.End(), false, m.dropEntry(it, err)
	}
	if err := m.rehash(false); err != nil {
		if _, err2 := b.Erase(b.Last()); err2 != nil {
			return m.End(), false, err2
		}
		return m.End(), false, m.dropEntry(it, err)
	}
	return it, true, nil
}

// Insert is Emplace taking the entry.
func (m *Map[K, V]) Insert(e Entry[K, V]) (Iterator[K, V], bool, error) {
	return m.Emplace(e.Key, e.Value)
}

// InsertAll inserts all the pairs from seq. Pairs inserted before a failure stay in the map.
func (m *Map[K, V]) InsertAll(seq iter.Seq2[K, V]) error {
	for k, v := range seq {
		if _, _, err := m.Emplace(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Erase removes entry pointed by it.
func (m *Map[K, V]) Erase(it Iterator[K, V]) error {
	if !it.Valid() || len(m.buckets) == 0 {
		return errors.WithStack(ErrInvalidIterator)
	}

	b := m.bucketOf(it.Get().Key)
	for l := b.Begin(); l.Valid(); l = l.Next() {
		if !l.Get().Equal(it) {
			continue
		}
		if _, err := b.Erase(l); err != nil {
			return err
		}
		_, err := m.entries.Erase(it)
		return err
	}
	return errors.WithStack(ErrInvalidIterator)
}

// EraseRange removes entries from first up to, but not including, last.
func (m *Map[K, V]) EraseRange(first, last Iterator[K, V]) error {
	for it := first; !it.Equal(last); {
		next := it.Next()
		if err := m.Erase(it); err != nil {
			return err
		}
		it = next
	}
	return nil
}

// EraseKey removes entry stored under k and tells if it existed.
func (m *Map[K, V]) EraseKey(k K) (bool, error) {
	it := m.Find(k)
	if !it.Valid() {
		return false, nil
	}
	if err := m.Erase(it); err != nil {
		return false, err
	}
	return true, nil
}

// Clone returns copy of the map. Buckets of the copy point to its own entries.
func (m *Map[K, V]) Clone() (*Map[K, V], error) {
	entries, err := m.entries.Clone()
	if err != nil {
		return nil, err
	}

	c := newMap(entries.Allocator(), m.hash, m.equal, m.maxLoadFactor)
	c.log = m.log
	c.entries = entries
	if len(m.buckets) > 0 {
		if err := c.rebuild(len(m.buckets)); err != nil {
			entries.Clear()
			return nil, err
		}
	}
	return c, nil
}

// Assign replaces content of m with a copy of other. If allocator policy of other says so, its allocator is
// taken first. If copying fails m is left untouched.
func (m *Map[K, V]) Assign(other *Map[K, V]) error {
	if m == other {
		return nil
	}

	a := m.entries.Allocator()
	if other.entries.Allocator().PropagateOnCopyAssignment() {
		a = other.entries.Allocator()
	}

	tmp := newMap(a, other.hash, other.equal, other.maxLoadFactor)
	tmp.log = m.log
	if err := tmp.entries.Assign(other.entries); err != nil {
		return err
	}
	if len(other.buckets) > 0 {
		if err := tmp.rebuild(len(other.buckets)); err != nil {
			tmp.entries.Clear()
			return err
		}
	}

	m.Clear()
	*m, *tmp = *tmp, *m
	return nil
}

// Clear removes all the entries and buckets.
func (m *Map[K, V]) Clear() {
	m.releaseBuckets(m.buckets)
	m.buckets = nil
	m.entries.Clear()
}

func (m *Map[K, V]) bucketOf(k K) *bucket[K, V] {
	return &m.buckets[m.hash(k)%uint64(len(m.buckets))]
}

// rehash rebuilds buckets if there are fewer of them than max load factor allows, or if forced.
func (m *Map[K, V]) rehash(force bool) error {
	n := m.entries.Len()
	if !force && float64(len(m.buckets)) >= m.maxLoadFactor*float64(n) {
		return nil
	}
	return m.rebuild(int(2*float64(n)*m.maxLoadFactor) + 1)
}

// rebuild replaces buckets with count new ones and places every entry. Entries are not touched. On failure
// the existing buckets stay.
func (m *Map[K, V]) rebuild(count int) error {
	buckets, err := m.table.Allocate(count)
	if err != nil {
		return err
	}
	for i := range buckets {
		buckets[i] = *list.NewWithAllocator(m.links)
	}

	for it := m.entries.Begin(); it.Valid(); it = it.Next() {
		if err := buckets[m.hash(it.Get().Key)%uint64(count)].PushBack(it); err != nil {
			m.releaseBuckets(buckets)
			return err
		}
	}

	m.releaseBuckets(m.buckets)
	m.buckets = buckets

	m.log.Debug("Rehashed", zap.Int("buckets", count), zap.Int("entries", m.entries.Len()))
	return nil
}

func (m *Map[K, V]) releaseBuckets(buckets []bucket[K, V]) {
	for i := range buckets {
		buckets[i].Clear()
	}
	m.table.Deallocate(buckets)
}

// dropEntry removes entry appended by a failed insertion and returns cause.
func (m *Map[K, V]) dropEntry(it Iterator[K, V], cause error) error {
	if _, err := m.entries.Erase(it); err != nil {
		return err
	}
	return cause
}
