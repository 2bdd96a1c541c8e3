package registry

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Qthai16/go-listqueue/common/queue"
	"github.com/Qthai16/go-listqueue/utils"
	"github.com/Qthai16/go-listqueue/utils/hashkit"
	"github.com/aviddiviner/go-murmur"
)

var (
	ErrExists       = errors.New("registry: queue already exists")
	ErrNotFound     = errors.New("registry: queue not found")
	ErrRegistryFull = errors.New("registry: too many queues")
	ErrInvalidName  = errors.New("registry: invalid queue name")
	ErrClosed       = errors.New("registry: closed")
)

type HashFn func([]byte) uint32

const (
	DefaultShards        = 16
	MurmurSeed    uint32 = 0x9747b28c
	MaxNameLen           = 256
)

func Murmur32Hash(v []byte) uint32 {
	h := murmur.New32(MurmurSeed)
	h.Write(v)
	return h.Sum32()
}

func JenkinsHash(v []byte) uint32 {
	return hashkit.Jenkins(v)
}

func FNVHash(v []byte) uint32 {
	h := fnv.New32a()
	h.Write(v)
	return h.Sum32()
}

// HashByName resolves "murmur", "jenkins" or "fnv".
func HashByName(name string) (HashFn, error) {
	switch name {
	case "", "murmur":
		return Murmur32Hash, nil
	case "jenkins":
		return JenkinsHash, nil
	case "fnv":
		return FNVHash, nil
	}
	return nil, fmt.Errorf("unknown hash %q", name)
}

type Config struct {
	Shards    uint32
	MaxQueues int // 0 = unlimited
	Hash      HashFn
	Queue     queue.Config
}

// Entry is a named queue guarded by its own mutex.
type Entry struct {
	Name string
	mu   sync.Mutex
	q    *queue.Queue
}

// Do runs fn with exclusive access to the entry's queue.
func (e *Entry) Do(fn func(q *queue.Queue) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.q == nil {
		return ErrNotFound
	}
	return fn(e.q)
}

func (e *Entry) free() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.q.Free()
	e.q = nil
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// Registry maps names to queues, spread over hash-selected shards.
type Registry struct {
	Config
	shards []shard
	count  atomic.Int32
	closed atomic.Bool
}

func New() *Registry {
	return NewConf(Config{})
}

func NewConf(conf Config) *Registry {
	if conf.Shards == 0 {
		conf.Shards = DefaultShards
	}
	if conf.Hash == nil {
		conf.Hash = Murmur32Hash
	}
	r := &Registry{
		Config: conf,
		shards: make([]shard, conf.Shards),
	}
	for i := range r.shards {
		r.shards[i].entries = make(map[string]*Entry)
	}
	return r
}

func (r *Registry) shardFor(name string) *shard {
	return &r.shards[r.Hash([]byte(name))%uint32(len(r.shards))]
}

func validName(name string) bool {
	return len(name) > 0 && len(name) <= MaxNameLen
}

// Create registers a new empty queue under name.
func (r *Registry) Create(name string) (*Entry, error) {
	if !validName(name) {
		return nil, ErrInvalidName
	}
	s := r.shardFor(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.closed.Load() {
		return nil, ErrClosed
	}
	if _, ok := s.entries[name]; ok {
		return nil, ErrExists
	}
	if n := r.count.Add(1); r.MaxQueues > 0 && int(n) > r.MaxQueues {
		r.count.Add(-1)
		return nil, ErrRegistryFull
	}
	q := queue.NewConf(r.Queue)
	if q == nil {
		r.count.Add(-1)
		return nil, queue.ErrAllocFailed
	}
	e := &Entry{Name: name, q: q}
	s.entries[name] = e
	utils.LogDebug("[registry] created queue %q", name)
	return e, nil
}

func (r *Registry) Get(name string) (*Entry, error) {
	if !validName(name) {
		return nil, ErrInvalidName
	}
	s := r.shardFor(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[name]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

// Do looks name up and runs fn with exclusive access to its queue.
func (r *Registry) Do(name string, fn func(q *queue.Queue) error) error {
	e, err := r.Get(name)
	if err != nil {
		return err
	}
	return e.Do(fn)
}

// Drop unregisters name and frees its queue. Calls already waiting in
// Entry.Do observe ErrNotFound.
func (r *Registry) Drop(name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	s := r.shardFor(name)
	s.mu.Lock()
	e, ok := s.entries[name]
	if ok {
		delete(s.entries, name)
	}
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	r.count.Add(-1)
	e.free()
	utils.LogDebug("[registry] dropped queue %q", name)
	return nil
}

func (r *Registry) Len() int {
	return int(r.count.Load())
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.Len())
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		for name := range s.entries {
			names = append(names, name)
		}
		s.mu.RUnlock()
	}
	sort.Strings(names)
	return names
}

// Close frees every queue. Later Create calls fail with ErrClosed.
func (r *Registry) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	dropped := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.Lock()
		for name, e := range s.entries {
			delete(s.entries, name)
			r.count.Add(-1)
			e.free()
			dropped++
		}
		s.mu.Unlock()
	}
	utils.LogInfo("[registry] closed, %v queues freed", dropped)
}
