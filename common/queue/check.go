package queue

import "fmt"

// Check walks q and verifies its structural invariants:
//   - every link reachable from the sentinel satisfies next.prev == link and
//     prev.next == link, and both directions return to the sentinel;
//   - every reachable slot holds a live element owned by q that points back
//     at the slot;
//   - every other slot is on the free list, exactly once.
func (q *Queue) Check() error {
	if !q.valid() {
		return ErrNilQueue
	}
	n := int32(len(q.slots))
	seen := make([]bool, n)
	inRange := func(i int32) bool { return i >= 0 && i < n }

	seen[headIdx] = true
	forward := 0
	for idx := headIdx; ; {
		s := &q.slots[idx]
		if !inRange(s.next) || !inRange(s.prev) {
			return fmt.Errorf("%w: slot %d links out of range (%v)", ErrCorrupted, idx, &s.idxLink)
		}
		if q.slots[s.next].prev != idx {
			return fmt.Errorf("%w: slot %d next.prev is %d", ErrCorrupted, idx, q.slots[s.next].prev)
		}
		if q.slots[s.prev].next != idx {
			return fmt.Errorf("%w: slot %d prev.next is %d", ErrCorrupted, idx, q.slots[s.prev].next)
		}
		idx = s.next
		if idx == headIdx {
			break
		}
		if seen[idx] {
			return fmt.Errorf("%w: slot %d reached twice", ErrCorrupted, idx)
		}
		seen[idx] = true
		forward++
		if err := q.checkElement(idx); err != nil {
			return err
		}
	}

	backward := 0
	for idx := q.prev(headIdx); idx != headIdx; idx = q.prev(idx) {
		backward++
		if backward > forward {
			break
		}
	}
	if backward != forward {
		return fmt.Errorf("%w: %d elements forward, %d backward", ErrCorrupted, forward, backward)
	}

	free := 0
	for idx := q.freeHead; idx != nilIdx; idx = q.slots[idx].next {
		if !inRange(idx) {
			return fmt.Errorf("%w: free slot %d out of range", ErrCorrupted, idx)
		}
		if seen[idx] {
			return fmt.Errorf("%w: free slot %d is also linked", ErrCorrupted, idx)
		}
		if q.slots[idx].elem != nil {
			return fmt.Errorf("%w: free slot %d holds an element", ErrCorrupted, idx)
		}
		seen[idx] = true
		free++
	}
	if total := 1 + forward + free; total != int(n) {
		return fmt.Errorf("%w: %d of %d slots accounted for", ErrCorrupted, total, n)
	}
	return nil
}

func (q *Queue) checkElement(idx int32) error {
	e := q.slots[idx].elem
	switch {
	case e == nil:
		return fmt.Errorf("%w: linked slot %d has no element", ErrCorrupted, idx)
	case e.owner != q:
		return fmt.Errorf("%w: element in slot %d belongs to another queue", ErrCorrupted, idx)
	case e.slot != idx:
		return fmt.Errorf("%w: element in slot %d records slot %d", ErrCorrupted, idx, e.slot)
	case e.released:
		return fmt.Errorf("%w: element in slot %d was released", ErrCorrupted, idx)
	case len(e.value) == 0 || e.value[len(e.value)-1] != 0:
		return fmt.Errorf("%w: element in slot %d is not NUL terminated", ErrCorrupted, idx)
	}
	return nil
}
