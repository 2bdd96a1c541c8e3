package queue

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func newTestQueue(t *testing.T) (*Queue, *Tracker) {
	t.Helper()
	tr := NewTracker(0, 0)
	q := NewConf(Config{Alloc: tr, Debug: true})
	if q == nil {
		t.Fatalf("expected a queue, got nil")
	}
	return q, tr
}

func fill(t *testing.T, q *Queue, values ...string) {
	t.Helper()
	for _, v := range values {
		if err := q.InsertTail(v); err != nil {
			t.Fatalf("insert tail %q failed: %v", v, err)
		}
	}
}

func expectValues(t *testing.T, q *Queue, want ...string) {
	t.Helper()
	if err := q.Check(); err != nil {
		t.Fatalf("invariant check failed: %v", err)
	}
	got := q.Values()
	if len(want) == 0 && len(got) == 0 {
		return
	}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if n := q.Size(); n != len(want) {
		t.Fatalf("expected size %d, got %d", len(want), n)
	}
}

func expectNoLeak(t *testing.T, tr *Tracker) {
	t.Helper()
	for _, k := range []Kind{KindHead, KindNode, KindValue} {
		if n := tr.Live(k); n != 0 {
			t.Errorf("expected no live %v reservations, got %d (%v)", k, n, tr)
		}
	}
	if tr.LiveBytes() != 0 || tr.OverFreed() != 0 {
		t.Errorf("expected clean tracker, got %v", tr)
	}
}

func seq(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprint(i + 1)
	}
	return out
}

func TestNewAndFree(t *testing.T) {
	q, tr := newTestQueue(t)
	if !q.IsEmpty() || q.Size() != 0 {
		t.Fatalf("expected new queue to be empty")
	}
	if tr.Live(KindHead) != 1 {
		t.Fatalf("expected one live head, got %v", tr)
	}
	fill(t, q, "a", "b", "c")
	q.Free()
	expectNoLeak(t, tr)

	q.Free()
	if tr.OverFreed() != 0 {
		t.Fatalf("expected second Free to be a no-op, got %v", tr)
	}
}

func TestNewAllocFailure(t *testing.T) {
	tr := NewTracker(0, 0)
	tr.FailNext(1)
	if q := NewConf(Config{Alloc: tr}); q != nil {
		t.Fatalf("expected nil queue when the sentinel cannot be reserved")
	}
	expectNoLeak(t, tr)
}

func TestDefaultAllocator(t *testing.T) {
	q := New()
	if q.Alloc != DefaultTracker() {
		t.Fatalf("expected New to use the default tracker")
	}
	fill(t, q, "x")
	expectValues(t, q, "x")
	q.Free()
}

func TestAbsentHandle(t *testing.T) {
	freed, _ := newTestQueue(t)
	freed.Free()

	for name, q := range map[string]*Queue{"nil": nil, "freed": freed} {
		t.Run(name, func(t *testing.T) {
			if err := q.InsertHead("a"); !errors.Is(err, ErrNilQueue) {
				t.Errorf("InsertHead: expected ErrNilQueue, got %v", err)
			}
			if err := q.InsertTail("a"); !errors.Is(err, ErrNilQueue) {
				t.Errorf("InsertTail: expected ErrNilQueue, got %v", err)
			}
			if e := q.RemoveHead(make([]byte, 4)); e != nil {
				t.Errorf("RemoveHead: expected nil, got %v", e)
			}
			if e := q.RemoveTail(nil); e != nil {
				t.Errorf("RemoveTail: expected nil, got %v", e)
			}
			if n := q.Size(); n != 0 {
				t.Errorf("Size: expected 0, got %d", n)
			}
			if err := q.DeleteMid(); !errors.Is(err, ErrNilQueue) {
				t.Errorf("DeleteMid: expected ErrNilQueue, got %v", err)
			}
			if err := q.DeleteDup(); !errors.Is(err, ErrNilQueue) {
				t.Errorf("DeleteDup: expected ErrNilQueue, got %v", err)
			}
			if err := q.Check(); !errors.Is(err, ErrNilQueue) {
				t.Errorf("Check: expected ErrNilQueue, got %v", err)
			}
			if v := q.Values(); v != nil {
				t.Errorf("Values: expected nil, got %q", v)
			}
			q.Swap()
			q.Reverse()
			q.Sort(false)
			q.Free()
		})
	}
}

func TestInsertOrder(t *testing.T) {
	q, tr := newTestQueue(t)
	defer expectNoLeak(t, tr)
	defer q.Free()

	fill(t, q, "b", "c")
	if err := q.InsertHead("a"); err != nil {
		t.Fatalf("insert head failed: %v", err)
	}
	if err := q.InsertTail("d"); err != nil {
		t.Fatalf("insert tail failed: %v", err)
	}
	expectValues(t, q, "a", "b", "c", "d")
}

func TestInsertStopsAtNul(t *testing.T) {
	q, tr := newTestQueue(t)
	defer expectNoLeak(t, tr)
	defer q.Free()

	fill(t, q, "ab\x00cd", "", "\x00x")
	expectValues(t, q, "ab", "", "")
	if got := tr.LiveBytes(); got != 3+1+1 {
		t.Fatalf("expected 5 bytes reserved for the NUL-terminated copies, got %d", got)
	}
}

func TestInsertAllocFailure(t *testing.T) {
	t.Run("node", func(t *testing.T) {
		q, tr := newTestQueue(t)
		fill(t, q, "keep")
		tr.FailNext(1)
		if err := q.InsertHead("lost"); !errors.Is(err, ErrAllocFailed) {
			t.Fatalf("expected ErrAllocFailed, got %v", err)
		}
		expectValues(t, q, "keep")
		if tr.Live(KindNode) != 1 || tr.Live(KindValue) != 1 {
			t.Fatalf("expected only the kept element reserved, got %v", tr)
		}
		q.Free()
		expectNoLeak(t, tr)
	})

	t.Run("value", func(t *testing.T) {
		tr := NewTracker(0, 8)
		q := NewConf(Config{Alloc: tr, Debug: true})
		fill(t, q, "abc")
		if err := q.InsertTail("abcdef"); !errors.Is(err, ErrAllocFailed) {
			t.Fatalf("expected ErrAllocFailed, got %v", err)
		}
		expectValues(t, q, "abc")
		if tr.Live(KindNode) != 1 {
			t.Fatalf("expected the node of the failed insert to be given back, got %v", tr)
		}
		q.Free()
		expectNoLeak(t, tr)
	})

	t.Run("max nodes", func(t *testing.T) {
		tr := NewTracker(2, 0)
		q := NewConf(Config{Alloc: tr, Debug: true})
		fill(t, q, "a", "b")
		if err := q.InsertHead("c"); !errors.Is(err, ErrAllocFailed) {
			t.Fatalf("expected ErrAllocFailed, got %v", err)
		}
		if e := q.RemoveHead(nil); e == nil || e.Release() != nil {
			t.Fatalf("expected remove and release to succeed")
		}
		if err := q.InsertHead("c"); err != nil {
			t.Fatalf("expected room after a release, got %v", err)
		}
		expectValues(t, q, "c", "b")
		if tr.Refused() != 1 {
			t.Fatalf("expected one refused reservation, got %d", tr.Refused())
		}
		q.Free()
		expectNoLeak(t, tr)
	})
}

func TestRemoveRoundTrip(t *testing.T) {
	q, tr := newTestQueue(t)
	defer expectNoLeak(t, tr)
	defer q.Free()

	for _, s := range []string{"", "x", "hello world", "gerbil"} {
		if err := q.InsertHead(s); err != nil {
			t.Fatalf("insert head failed: %v", err)
		}
		buf := make([]byte, len(s)+8)
		e := q.RemoveHead(buf)
		if e == nil {
			t.Fatalf("expected an element for %q", s)
		}
		if got := CString(buf); got != s {
			t.Errorf("expected %q copied out, got %q", s, got)
		}
		if e.Value() != s || e.Attached() {
			t.Errorf("expected detached element holding %q, got %q attached=%v", s, e.Value(), e.Attached())
		}
		if err := e.Release(); err != nil {
			t.Fatalf("release failed: %v", err)
		}
	}
	expectValues(t, q)
}

func TestRemoveHeadTail(t *testing.T) {
	q, tr := newTestQueue(t)
	defer expectNoLeak(t, tr)
	defer q.Free()

	fill(t, q, "a", "b", "c")
	head := q.RemoveHead(nil)
	tail := q.RemoveTail(nil)
	if head.Value() != "a" || tail.Value() != "c" {
		t.Fatalf("expected a and c, got %q and %q", head.Value(), tail.Value())
	}
	expectValues(t, q, "b")
	head.Release()
	tail.Release()

	last := q.RemoveTail(nil)
	if last == nil || last.Value() != "b" {
		t.Fatalf("expected b, got %v", last)
	}
	last.Release()
	if e := q.RemoveHead(nil); e != nil {
		t.Fatalf("expected nil from empty queue, got %q", e.Value())
	}
	expectValues(t, q)
}

func TestRemoveTruncation(t *testing.T) {
	cases := []struct {
		bufSize int
		want    string
	}{
		{bufSize: 1, want: ""},
		{bufSize: 4, want: "abc"},
		{bufSize: 6, want: "abcde"},
		{bufSize: 7, want: "abcdef"},
		{bufSize: 16, want: "abcdef"},
	}
	q, tr := newTestQueue(t)
	defer expectNoLeak(t, tr)
	defer q.Free()

	for _, c := range cases {
		t.Run(fmt.Sprint(c.bufSize), func(t *testing.T) {
			fill(t, q, "abcdef")
			buf := make([]byte, c.bufSize)
			for i := range buf {
				buf[i] = '#'
			}
			e := q.RemoveTail(buf)
			defer e.Release()
			if buf[len(buf)-1] != 0 {
				t.Fatalf("expected NUL at the last byte, got %q", buf)
			}
			if got := CString(buf); got != c.want {
				t.Fatalf("expected %q, got %q", c.want, got)
			}
			for i := len(c.want); i < len(buf); i++ {
				if buf[i] != 0 {
					t.Fatalf("expected zero padding after the copy, got %q", buf)
				}
			}
			if e.Value() != "abcdef" {
				t.Fatalf("expected the element to keep its full text, got %q", e.Value())
			}
		})
	}

	fill(t, q, "abc")
	e := q.RemoveHead([]byte{})
	if e == nil || e.Value() != "abc" {
		t.Fatalf("expected removal with an empty buffer to succeed")
	}
	e.Release()
}

func TestRelease(t *testing.T) {
	q, tr := newTestQueue(t)
	defer expectNoLeak(t, tr)
	defer q.Free()

	var nilElem *Element
	if err := nilElem.Release(); !errors.Is(err, ErrNilElement) {
		t.Fatalf("expected ErrNilElement, got %v", err)
	}

	fill(t, q, "a", "b")
	attached := q.slots[q.next(headIdx)].elem
	if err := attached.Release(); !errors.Is(err, ErrAttached) {
		t.Fatalf("expected ErrAttached, got %v", err)
	}

	e := q.RemoveHead(nil)
	if err := e.Release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := e.Release(); !errors.Is(err, ErrDoubleRelease) {
		t.Fatalf("expected ErrDoubleRelease, got %v", err)
	}
	if tr.Live(KindNode) != 1 || tr.OverFreed() != 0 {
		t.Fatalf("expected exactly one live node, got %v", tr)
	}
	expectValues(t, q, "b")
}

func TestSizeTracksInsertsAndRemovals(t *testing.T) {
	q, tr := newTestQueue(t)
	defer expectNoLeak(t, tr)
	defer q.Free()

	want := 0
	for i := 0; i < 50; i++ {
		switch i % 5 {
		case 0, 1, 2:
			fill(t, q, fmt.Sprint(i))
			want++
		case 3:
			if e := q.RemoveHead(nil); e != nil {
				e.Release()
				want--
			}
		case 4:
			if err := q.DeleteMid(); err == nil {
				want--
			}
		}
		if got := q.Size(); got != want {
			t.Fatalf("step %d: expected size %d, got %d", i, want, got)
		}
	}
	if err := q.Check(); err != nil {
		t.Fatalf("invariant check failed: %v", err)
	}
}

func TestSlotsAreRecycled(t *testing.T) {
	q, tr := newTestQueue(t)
	defer expectNoLeak(t, tr)
	defer q.Free()

	fill(t, q, seq(8)...)
	arena := len(q.slots)
	for i := 0; i < 100; i++ {
		q.RemoveHead(nil).Release()
		fill(t, q, fmt.Sprint(i))
	}
	if len(q.slots) != arena {
		t.Fatalf("expected the arena to stay at %d slots, got %d", arena, len(q.slots))
	}
	expectValues(t, q, "92", "93", "94", "95", "96", "97", "98", "99")
}

func TestDeleteMid(t *testing.T) {
	for n := 1; n <= 9; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			q, tr := newTestQueue(t)
			defer expectNoLeak(t, tr)
			defer q.Free()

			values := seq(n)
			fill(t, q, values...)
			if err := q.DeleteMid(); err != nil {
				t.Fatalf("delete mid failed: %v", err)
			}
			want := slices.Delete(slices.Clone(values), n/2, n/2+1)
			expectValues(t, q, want...)
		})
	}

	t.Run("six removes the fourth", func(t *testing.T) {
		q, tr := newTestQueue(t)
		defer expectNoLeak(t, tr)
		defer q.Free()
		fill(t, q, "1", "2", "3", "4", "5", "6")
		q.DeleteMid()
		expectValues(t, q, "1", "2", "3", "5", "6")
	})

	t.Run("empty", func(t *testing.T) {
		q, tr := newTestQueue(t)
		defer expectNoLeak(t, tr)
		defer q.Free()
		if err := q.DeleteMid(); !errors.Is(err, ErrEmpty) {
			t.Fatalf("expected ErrEmpty, got %v", err)
		}
	})
}

func TestDeleteDup(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, nil},
		{"single", []string{"a"}, []string{"a"}},
		{"no duplicates", []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"mixed runs", []string{"a", "a", "b", "c", "c", "c"}, []string{"b"}},
		{"all equal", []string{"x", "x", "x", "x"}, nil},
		{"run at end", []string{"a", "b", "b"}, []string{"a"}},
		{"run at start", []string{"a", "a", "b"}, []string{"b"}},
		{"alternating runs", []string{"a", "a", "b", "c", "c", "d", "e", "e"}, []string{"b", "d"}},
		{"case sensitive", []string{"A", "a", "a"}, []string{"A"}},
		{"unsorted keeps distant repeats", []string{"a", "b", "a"}, []string{"a", "b", "a"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q, tr := newTestQueue(t)
			defer expectNoLeak(t, tr)
			defer q.Free()

			fill(t, q, c.in...)
			if err := q.DeleteDup(); err != nil {
				t.Fatalf("delete dup failed: %v", err)
			}
			expectValues(t, q, c.want...)
		})
	}
}

func TestSwap(t *testing.T) {
	cases := []struct {
		in   []string
		want []string
	}{
		{nil, nil},
		{[]string{"1"}, []string{"1"}},
		{[]string{"1", "2"}, []string{"2", "1"}},
		{[]string{"1", "2", "3", "4", "5"}, []string{"2", "1", "4", "3", "5"}},
		{[]string{"1", "2", "3", "4", "5", "6"}, []string{"2", "1", "4", "3", "6", "5"}},
	}
	for _, c := range cases {
		t.Run(fmt.Sprint(len(c.in)), func(t *testing.T) {
			q, tr := newTestQueue(t)
			defer expectNoLeak(t, tr)
			defer q.Free()

			fill(t, q, c.in...)
			q.Swap()
			expectValues(t, q, c.want...)
			q.Swap()
			expectValues(t, q, c.in...)
		})
	}
}

func TestReverse(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 10} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			q, tr := newTestQueue(t)
			defer expectNoLeak(t, tr)
			defer q.Free()

			values := seq(n)
			fill(t, q, values...)
			nodes := tr.Live(KindNode)

			q.Reverse()
			reversed := slices.Clone(values)
			slices.Reverse(reversed)
			expectValues(t, q, reversed...)

			q.Reverse()
			expectValues(t, q, values...)
			if tr.Live(KindNode) != nodes {
				t.Fatalf("expected reverse not to allocate or free, live nodes %d -> %d", nodes, tr.Live(KindNode))
			}
		})
	}
}

func TestReverseThenEdit(t *testing.T) {
	q, tr := newTestQueue(t)
	defer expectNoLeak(t, tr)
	defer q.Free()

	fill(t, q, "a", "b", "c")
	q.Reverse()
	fill(t, q, "z")
	q.InsertHead("y")
	expectValues(t, q, "y", "c", "b", "a", "z")
	if e := q.RemoveTail(nil); e.Value() != "z" {
		t.Fatalf("expected z at the tail, got %q", e.Value())
	} else {
		e.Release()
	}
}

func TestCheckDetectsCorruption(t *testing.T) {
	t.Run("asymmetric link", func(t *testing.T) {
		q, _ := newTestQueue(t)
		fill(t, q, "a", "b", "c")
		second := q.next(q.next(headIdx))
		q.slots[second].prev = headIdx
		if err := q.Check(); !errors.Is(err, ErrCorrupted) {
			t.Fatalf("expected ErrCorrupted, got %v", err)
		}
	})

	t.Run("foreign element", func(t *testing.T) {
		q, _ := newTestQueue(t)
		other, _ := newTestQueue(t)
		fill(t, q, "a")
		q.slots[q.next(headIdx)].elem.owner = other
		if err := q.Check(); !errors.Is(err, ErrCorrupted) {
			t.Fatalf("expected ErrCorrupted, got %v", err)
		}
	})

	t.Run("lost slot", func(t *testing.T) {
		q, _ := newTestQueue(t)
		fill(t, q, "a", "b")
		q.RemoveHead(nil)
		q.freeHead = nilIdx
		if err := q.Check(); !errors.Is(err, ErrCorrupted) {
			t.Fatalf("expected ErrCorrupted, got %v", err)
		}
	})
}
