package queue

import "fmt"

const (
	nilIdx  int32 = -1
	headIdx int32 = 0
)

type idxLink struct {
	next int32
	prev int32
}

func (l *idxLink) String() string {
	return fmt.Sprintf("prev: %v, next: %v", l.prev, l.next)
}

type slot struct {
	idxLink
	elem *Element
}

// store is the slot arena behind a Queue. Free slots are chained through
// idxLink.next starting at freeHead.
type store struct {
	slots    []slot
	freeHead int32
}

func (s *store) init() {
	s.slots = make([]slot, 1, 8)
	s.slots[headIdx] = slot{idxLink: idxLink{next: headIdx, prev: headIdx}}
	s.freeHead = nilIdx
}

func (s *store) next(i int32) int32 { return s.slots[i].next }
func (s *store) prev(i int32) int32 { return s.slots[i].prev }

func (s *store) value(i int32) []byte {
	return s.slots[i].elem.text()
}

// acquire takes a free slot for e, growing the arena if none is left.
func (s *store) acquire(e *Element) int32 {
	idx := s.freeHead
	if idx == nilIdx {
		s.slots = append(s.slots, slot{})
		idx = int32(len(s.slots) - 1)
	} else {
		s.freeHead = s.slots[idx].next
	}
	s.slots[idx] = slot{idxLink: idxLink{next: nilIdx, prev: nilIdx}, elem: e}
	return idx
}

// recycle pushes an unlinked slot onto the free list.
func (s *store) recycle(idx int32) {
	s.slots[idx] = slot{idxLink: idxLink{next: s.freeHead, prev: nilIdx}}
	s.freeHead = idx
}

// link splices idx in right after at.
func (s *store) link(idx, at int32) {
	next := s.slots[at].next
	s.slots[idx].prev = at
	s.slots[idx].next = next
	s.slots[at].next = idx
	s.slots[next].prev = idx
}

// unlink splices idx out, leaving its own links stale.
func (s *store) unlink(idx int32) {
	prev, next := s.slots[idx].prev, s.slots[idx].next
	s.slots[prev].next = next
	s.slots[next].prev = prev
}
