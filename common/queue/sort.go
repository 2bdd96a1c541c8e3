package queue

import "bytes"

// Sort orders q by byte-wise comparison of the texts, ascending unless
// descend is set. Equal texts keep their relative order. Only links are
// rewritten; no element is allocated or released.
func (q *Queue) Sort(descend bool) {
	if q.IsEmpty() {
		return
	}
	first := q.next(headIdx)
	if q.next(first) == headIdx {
		return
	}

	// break the ring into a forward chain ending in nilIdx; prev links are
	// stale until the chain is sorted
	q.slots[q.prev(headIdx)].next = nilIdx
	first = q.msort(first, descend)

	q.slots[headIdx].next = first
	prev := headIdx
	for idx := first; idx != nilIdx; idx = q.next(idx) {
		q.slots[idx].prev = prev
		prev = idx
	}
	q.slots[headIdx].prev = prev
	q.slots[prev].next = headIdx
	q.debugCheck("sort")
}

func (q *Queue) msort(head int32, descend bool) int32 {
	if head == nilIdx || q.next(head) == nilIdx {
		return head
	}
	slow, fast := head, q.next(head)
	for fast != nilIdx && q.next(fast) != nilIdx {
		slow = q.next(slow)
		fast = q.next(q.next(fast))
	}
	mid := q.next(slow)
	q.slots[slow].next = nilIdx
	return q.merge(q.msort(head, descend), q.msort(mid, descend), descend)
}

// merge joins two sorted chains. Ties are taken from l1 first.
func (q *Queue) merge(l1, l2 int32, descend bool) int32 {
	head, tail := nilIdx, nilIdx
	for l1 != nilIdx && l2 != nilIdx {
		var pick int32
		if q.ordered(l1, l2, descend) {
			pick, l1 = l1, q.next(l1)
		} else {
			pick, l2 = l2, q.next(l2)
		}
		if tail == nilIdx {
			head = pick
		} else {
			q.slots[tail].next = pick
		}
		tail = pick
	}

	rest := l1
	if rest == nilIdx {
		rest = l2
	}
	if tail == nilIdx {
		return rest
	}
	q.slots[tail].next = rest
	return head
}

// ordered reports whether a may precede b.
func (q *Queue) ordered(a, b int32, descend bool) bool {
	c := bytes.Compare(q.value(a), q.value(b))
	if descend {
		return c >= 0
	}
	return c <= 0
}
