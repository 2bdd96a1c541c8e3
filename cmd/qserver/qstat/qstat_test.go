package qstat

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
)

func TestCounters(t *testing.T) {
	s := New("ih", "rh")
	s.IncCall("ih")
	s.IncCall("ih")
	s.IncCall("rh")
	s.IncErr("rh")
	s.IncCall("late")

	got := s.Snapshot()
	want := []MethodCount{
		{Method: "ih", Calls: 2},
		{Method: "late", Calls: 1},
		{Method: "rh", Calls: 1, Errors: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d methods, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("method %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestConcurrentIncrements(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.IncCall("sort")
			}
		}()
	}
	wg.Wait()
	if got := s.Snapshot()[0].Calls; got != 1600 {
		t.Fatalf("expected 1600 calls, got %d", got)
	}
}

func TestJSONAndString(t *testing.T) {
	s := New("show", "free")
	s.IncCall("show")

	raw, err := s.JSON()
	if err != nil {
		t.Fatalf("json failed: %v", err)
	}
	var decoded struct {
		Uptime  string        `json:"uptime"`
		Methods []MethodCount `json:"methods"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("expected valid json, got %q: %v", raw, err)
	}
	if len(decoded.Methods) != 2 || decoded.Methods[1].Method != "show" || decoded.Methods[1].Calls != 1 {
		t.Fatalf("unexpected json %q", raw)
	}

	if str := s.String(); str != "show: calls 1, errors 0\n" || strings.Contains(str, "free") {
		t.Fatalf("expected only active methods in String, got %q", str)
	}
}
