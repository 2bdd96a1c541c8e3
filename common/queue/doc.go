// Package queue implements a circular, sentinel-headed doubly linked list of
// owned strings.
//
// Links are int32 indices into a slot slice owned by the Queue instead of raw
// pointers. Slot 0 is the sentinel: the queue is empty iff its next index is 0.
// Unlinked slots are chained into a free list and recycled by later inserts,
// so insert, remove, swap and reverse are O(1) index splices and Sort is an
// O(n log n) merge sort that only rewrites indices.
//
// Every sentinel, node and value buffer is reserved from an Allocator before
// it is built. Insert fails with ErrAllocFailed without side effects when a
// reservation is refused; Tracker counts live reservations so tests can prove
// that nothing leaks and nothing is released twice.
//
// A Queue is not safe for concurrent use. Callers sharing a queue between
// goroutines must serialise access themselves, typically one mutex per queue.
package queue
