package queue

import (
	"fmt"
	"sync"
)

type Kind int

const (
	KindHead Kind = iota
	KindNode
	KindValue
	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindHead:
		return "head"
	case KindNode:
		return "node"
	case KindValue:
		return "value"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Allocator reserves memory for queue structures. Alloc returns false when
// the reservation is refused; Free returns a reservation made by Alloc.
type Allocator interface {
	Alloc(kind Kind, size int) bool
	Free(kind Kind, size int)
}

// Tracker is an Allocator that enforces optional limits and counts live
// reservations. It is safe for concurrent use so several queues may share
// one budget.
type Tracker struct {
	mu       sync.Mutex
	maxNodes int // 0 = unlimited
	maxBytes int // 0 = unlimited
	live     [numKinds]int
	bytes    int
	failNext int
	refused  uint64
	overFree uint64
}

func NewTracker(maxNodes, maxBytes int) *Tracker {
	return &Tracker{maxNodes: maxNodes, maxBytes: maxBytes}
}

func (t *Tracker) Alloc(kind Kind, size int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failNext > 0 {
		t.failNext--
		t.refused++
		return false
	}
	if kind == KindNode && t.maxNodes > 0 && t.live[KindNode] >= t.maxNodes {
		t.refused++
		return false
	}
	if kind == KindValue && t.maxBytes > 0 && t.bytes+size > t.maxBytes {
		t.refused++
		return false
	}
	t.live[kind]++
	if kind == KindValue {
		t.bytes += size
	}
	return true
}

func (t *Tracker) Free(kind Kind, size int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.live[kind] == 0 {
		t.overFree++
		return
	}
	t.live[kind]--
	if kind == KindValue {
		t.bytes -= size
	}
}

// FailNext makes the next n reservations fail regardless of limits.
func (t *Tracker) FailNext(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failNext = n
}

func (t *Tracker) Live(kind Kind) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live[kind]
}

func (t *Tracker) LiveBytes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bytes
}

// Refused returns how many reservations were denied.
func (t *Tracker) Refused() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.refused
}

// OverFreed returns how many Free calls had no matching reservation.
func (t *Tracker) OverFreed() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.overFree
}

func (t *Tracker) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("heads: %v, nodes: %v, values: %v (%v bytes), refused: %v, over-freed: %v",
		t.live[KindHead], t.live[KindNode], t.live[KindValue], t.bytes, t.refused, t.overFree)
}

var defaultTracker = NewTracker(0, 0)

// DefaultTracker is the unlimited allocator used by New.
func DefaultTracker() *Tracker {
	return defaultTracker
}
