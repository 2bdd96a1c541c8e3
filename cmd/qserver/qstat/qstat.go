package qstat

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type (
	MethodStat struct {
		Method string
		Calls  atomic.Int64
		Errors atomic.Int64
	}
	// MethodCount is a point-in-time copy of a MethodStat.
	MethodCount struct {
		Method string `json:"name"`
		Calls  int64  `json:"calls"`
		Errors int64  `json:"errors"`
	}
	Stats struct {
		started time.Time
		methods map[string]*MethodStat
		rwMu    sync.RWMutex
	}
	snapshot struct {
		Uptime  string        `json:"uptime"`
		Methods []MethodCount `json:"methods"`
	}
)

// New returns stats with counters pre-created for methods.
func New(methods ...string) *Stats {
	s := &Stats{
		started: time.Now(),
		methods: make(map[string]*MethodStat, len(methods)),
	}
	for _, m := range methods {
		s.methods[m] = &MethodStat{Method: m}
	}
	return s
}

func (s *Stats) get(method string) *MethodStat {
	s.rwMu.RLock()
	st, ok := s.methods[method]
	s.rwMu.RUnlock()
	if ok {
		return st
	}
	s.rwMu.Lock()
	defer s.rwMu.Unlock()
	if st, ok := s.methods[method]; ok {
		return st
	}
	st = &MethodStat{Method: method}
	s.methods[method] = st
	return st
}

func (s *Stats) IncCall(method string) {
	s.get(method).Calls.Add(1)
}

func (s *Stats) IncErr(method string) {
	s.get(method).Errors.Add(1)
}

// Snapshot returns the counters sorted by method name.
func (s *Stats) Snapshot() []MethodCount {
	s.rwMu.RLock()
	out := make([]MethodCount, 0, len(s.methods))
	for _, st := range s.methods {
		out = append(out, MethodCount{Method: st.Method, Calls: st.Calls.Load(), Errors: st.Errors.Load()})
	}
	s.rwMu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Method < out[j].Method
	})
	return out
}

func (s *Stats) JSON() (string, error) {
	b, err := json.Marshal(snapshot{
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Methods: s.Snapshot(),
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Stats) String() string {
	var sb strings.Builder
	for _, m := range s.Snapshot() {
		if m.Calls == 0 && m.Errors == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%v: calls %v, errors %v\n", m.Method, m.Calls, m.Errors)
	}
	return sb.String()
}
