// Package containers groups allocator-aware data structures:
//
//   - alloc: allocators over the Go heap or a bump arena, with copy policies and a leak tracker,
//   - deque: chunked double-ended queue keeping element addresses stable,
//   - list: doubly linked list,
//   - shared: reference counted Shared and Weak pointers,
//   - hashmap: separate chaining hash map preserving insertion order.
//
// None of them is safe for concurrent use. Independent instances may be used from different goroutines.
package containers
