package queue

import (
	"bytes"
	"errors"

	"github.com/Qthai16/go-listqueue/utils"
)

var (
	ErrNilQueue      = errors.New("queue: nil or freed queue")
	ErrEmpty         = errors.New("queue: empty queue")
	ErrAllocFailed   = errors.New("queue: allocation failed")
	ErrNilElement    = errors.New("queue: nil element")
	ErrAttached      = errors.New("queue: element is still attached")
	ErrDoubleRelease = errors.New("queue: element already released")
	ErrCorrupted     = errors.New("queue: corrupted")
)

type Config struct {
	Alloc Allocator // DefaultTracker() when nil
	Debug bool      // run Check after every mutation and log violations
}

// Queue is a circular doubly linked list of owned strings. A nil *Queue and
// a freed Queue are both treated as an absent handle.
type Queue struct {
	Config
	store
}

func New() *Queue {
	return NewConf(Config{})
}

// NewConf returns an empty queue, or nil when the sentinel cannot be
// reserved from conf.Alloc.
func NewConf(conf Config) *Queue {
	if conf.Alloc == nil {
		conf.Alloc = defaultTracker
	}
	if !conf.Alloc.Alloc(KindHead, 0) {
		return nil
	}
	q := &Queue{Config: conf}
	q.init()
	return q
}

func (q *Queue) valid() bool {
	return q != nil && q.slots != nil
}

// Free releases every element and then the sentinel. The handle is unusable
// afterwards; freeing it again is a no-op.
func (q *Queue) Free() {
	if !q.valid() {
		return
	}
	for q.next(headIdx) != headIdx {
		q.detach(q.next(headIdx)).release()
	}
	q.Alloc.Free(KindHead, 0)
	q.slots = nil
	q.freeHead = nilIdx
}

// IsEmpty reports whether q holds no element. An absent queue is empty.
func (q *Queue) IsEmpty() bool {
	return !q.valid() || q.next(headIdx) == headIdx
}

// InsertHead copies s (up to its first NUL byte) into a new first element.
func (q *Queue) InsertHead(s string) error {
	return q.insert(s, false)
}

// InsertTail copies s (up to its first NUL byte) into a new last element.
func (q *Queue) InsertTail(s string) error {
	return q.insert(s, true)
}

func (q *Queue) insert(s string, tail bool) error {
	if !q.valid() {
		return ErrNilQueue
	}
	e, err := newElement(q.Alloc, s)
	if err != nil {
		return err
	}
	at := headIdx
	if tail {
		at = q.prev(headIdx)
	}
	idx := q.acquire(e)
	e.slot, e.owner = idx, q
	q.link(idx, at)
	q.debugCheck("insert")
	return nil
}

// RemoveHead unlinks the first element and hands it to the caller, who must
// Release it. If sp is not empty, up to len(sp)-1 bytes of the text are
// copied into it and sp[len(sp)-1] is always NUL. Returns nil when q is
// absent or empty.
func (q *Queue) RemoveHead(sp []byte) *Element {
	if q.IsEmpty() {
		return nil
	}
	return q.remove(q.next(headIdx), sp)
}

// RemoveTail is RemoveHead for the last element.
func (q *Queue) RemoveTail(sp []byte) *Element {
	if q.IsEmpty() {
		return nil
	}
	return q.remove(q.prev(headIdx), sp)
}

func (q *Queue) remove(idx int32, sp []byte) *Element {
	e := q.detach(idx)
	copyOut(sp, e)
	q.debugCheck("remove")
	return e
}

// detach unlinks idx, recycles its slot and returns its element with no owner.
func (q *Queue) detach(idx int32) *Element {
	e := q.slots[idx].elem
	q.unlink(idx)
	q.recycle(idx)
	e.slot, e.owner = nilIdx, nil
	return e
}

func (q *Queue) delete(idx int32) {
	q.detach(idx).release()
}

// Size counts the elements by walking the list. An absent queue has size 0.
func (q *Queue) Size() int {
	if !q.valid() {
		return 0
	}
	n := 0
	for idx := q.next(headIdx); idx != headIdx; idx = q.next(idx) {
		n++
	}
	return n
}

// DeleteMid deletes the element at zero-based index floor(n/2).
func (q *Queue) DeleteMid() error {
	if !q.valid() {
		return ErrNilQueue
	}
	if q.IsEmpty() {
		return ErrEmpty
	}
	slow, fast := q.next(headIdx), q.next(headIdx)
	for fast != headIdx && q.next(fast) != headIdx {
		slow = q.next(slow)
		fast = q.next(q.next(fast))
	}
	q.delete(slow)
	q.debugCheck("delete mid")
	return nil
}

// DeleteDup deletes every element whose text occurs more than once in a row,
// keeping none of the run. q must already be sorted ascending; on unsorted
// input only adjacent repeats are found.
func (q *Queue) DeleteDup() error {
	if !q.valid() {
		return ErrNilQueue
	}
	cur := q.next(headIdx)
	for cur != headIdx {
		next := q.next(cur)
		if next == headIdx || !bytes.Equal(q.value(cur), q.value(next)) {
			cur = next
			continue
		}
		for next != headIdx && bytes.Equal(q.value(cur), q.value(next)) {
			after := q.next(next)
			q.delete(next)
			next = after
		}
		q.delete(cur)
		cur = next
	}
	q.debugCheck("delete dup")
	return nil
}

// Swap exchanges every two adjacent elements; an odd last element stays.
func (q *Queue) Swap() {
	if q.IsEmpty() {
		return
	}
	for first := q.next(headIdx); first != headIdx && q.next(first) != headIdx; first = q.next(first) {
		second := q.next(first)
		q.unlink(first)
		q.link(first, second)
	}
	q.debugCheck("swap")
}

// Reverse flips the traversal order by exchanging next and prev on every
// link, sentinel included.
func (q *Queue) Reverse() {
	if q.IsEmpty() {
		return
	}
	idx := headIdx
	for {
		s := &q.slots[idx]
		s.next, s.prev = s.prev, s.next
		if idx = s.prev; idx == headIdx {
			break
		}
	}
	q.debugCheck("reverse")
}

// Values returns the texts in traversal order, or nil for an absent queue.
func (q *Queue) Values() []string {
	if !q.valid() {
		return nil
	}
	out := make([]string, 0, len(q.slots)-1)
	for idx := q.next(headIdx); idx != headIdx; idx = q.next(idx) {
		out = append(out, string(q.value(idx)))
	}
	return out
}

func (q *Queue) debugCheck(op string) {
	if !q.Debug {
		return
	}
	if err := q.Check(); err != nil {
		utils.LogErro("[queue] after %v: %v", op, err)
	}
}
