package hashmap

import (
	"hash/maphash"

	"github.com/cespare/xxhash/v2"

	"github.com/outofforest/containers/list"
)

// Entry is the key-value pair stored in the map.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Iterator points to an entry of the map. Entries are stored in a list, so iterators stay valid until
// the entry is erased, rehashing does not affect them.
type Iterator[K, V any] = list.Iterator[Entry[K, V]]

// HashingFunc is the function returning hash of key.
type HashingFunc[K any] func(key K) uint64

// EqualFunc tells if two keys are equal.
type EqualFunc[K any] func(a, b K) bool

var seed = maphash.MakeSeed()

// ComparableHash returns hashing function for comparable keys, seeded once per process.
func ComparableHash[K comparable]() HashingFunc[K] {
	return func(key K) uint64 {
		return maphash.Comparable(seed, key)
	}
}

// Equal compares keys using ==.
func Equal[K comparable](a, b K) bool {
	return a == b
}

// StringHash hashes string keys using xxhash. Unlike ComparableHash it gives the same results across
// processes.
func StringHash(key string) uint64 {
	return xxhash.Sum64String(key)
}
