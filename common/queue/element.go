package queue

import (
	"bytes"

	"github.com/Qthai16/go-listqueue/common/pool"
)

var valueBufs = pool.NewBytes(pool.DefaultMaxBufCap)

// Element is one queue entry: an owned NUL-terminated text buffer plus the
// position of its link inside the owning queue.
type Element struct {
	value    []byte // len(text)+1, last byte is NUL
	slot     int32
	owner    *Queue
	alloc    Allocator
	released bool
}

// Value returns the element's text.
func (e *Element) Value() string {
	if e == nil || len(e.value) == 0 {
		return ""
	}
	return string(e.value[:len(e.value)-1])
}

func (e *Element) text() []byte {
	return e.value[:len(e.value)-1]
}

// Attached reports whether e is still linked into a queue.
func (e *Element) Attached() bool {
	return e != nil && e.owner != nil
}

// Release frees the text buffer and then the node of a detached element.
func (e *Element) Release() error {
	if e == nil {
		return ErrNilElement
	}
	if e.owner != nil {
		return ErrAttached
	}
	if e.released {
		return ErrDoubleRelease
	}
	e.release()
	return nil
}

func (e *Element) release() {
	size := len(e.value)
	valueBufs.Put(e.value)
	e.value = nil
	e.alloc.Free(KindValue, size)
	e.alloc.Free(KindNode, 0)
	e.released = true
	e.slot = nilIdx
}

// newElement reserves a node and a strlen(s)+1 byte buffer, then copies s.
// Nothing stays reserved when either step is refused.
func newElement(alloc Allocator, s string) (*Element, error) {
	if !alloc.Alloc(KindNode, 0) {
		return nil, ErrAllocFailed
	}
	n := strlen(s)
	if !alloc.Alloc(KindValue, n+1) {
		alloc.Free(KindNode, 0)
		return nil, ErrAllocFailed
	}
	e := &Element{
		value: valueBufs.Get(n + 1),
		slot:  nilIdx,
		alloc: alloc,
	}
	copy(e.value, s[:n])
	e.value[n] = 0
	return e, nil
}

// strlen is the length of s up to its first NUL byte.
func strlen(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return i
		}
	}
	return len(s)
}

// copyOut copies e's text into sp the way strncpy followed by
// sp[len(sp)-1] = 0 would: at most len(sp)-1 bytes, zero padded.
func copyOut(sp []byte, e *Element) {
	if len(sp) == 0 {
		return
	}
	n := copy(sp[:len(sp)-1], e.text())
	clear(sp[n:])
}

// CString returns the text stored in buf up to its first NUL byte.
func CString(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf)
}
