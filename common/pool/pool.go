package pool

import (
	"sync"
)

type Config[T any] struct {
	Generate func() *T // constructor, new(T) is used if nil
	Reset    func(*T)  // called after get T* from pool
	Cleanup  func(*T)  // called before put T* to pool
}

// Pool is a typed sync.Pool wrapper.
type Pool[T any] struct {
	pool sync.Pool
	Conf Config[T]
}

func New[T any](conf Config[T]) *Pool[T] {
	if conf.Generate == nil {
		conf.Generate = func() *T {
			return new(T)
		}
	}
	return &Pool[T]{
		pool: sync.Pool{
			New: func() interface{} {
				return conf.Generate()
			},
		},
		Conf: conf,
	}
}

func (p *Pool[T]) Get() *T {
	r := p.pool.Get().(*T)
	if p.Conf.Reset != nil {
		p.Conf.Reset(r)
	}
	return r
}

// Put returns *r to the pool and clears the caller's reference.
func (p *Pool[T]) Put(r **T) {
	if r == nil || *r == nil {
		return
	}
	if p.Conf.Cleanup != nil {
		p.Conf.Cleanup(*r)
	}
	p.pool.Put(*r)
	*r = nil
}

// Bytes hands out byte slices of a requested length, reusing released
// backing arrays up to maxCap bytes.
type Bytes struct {
	p      *Pool[[]byte]
	maxCap int
}

const DefaultMaxBufCap = 4096

func NewBytes(maxCap int) *Bytes {
	if maxCap <= 0 {
		maxCap = DefaultMaxBufCap
	}
	return &Bytes{
		p: New(Config[[]byte]{
			Reset: func(b *[]byte) { *b = (*b)[:0] },
		}),
		maxCap: maxCap,
	}
}

// Get returns a zeroed slice of length n.
func (b *Bytes) Get(n int) []byte {
	if n > b.maxCap {
		return make([]byte, n)
	}
	bp := b.p.Get()
	buf := *bp
	if cap(buf) < n {
		return make([]byte, n)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}

// Put recycles buf. The caller must not touch buf afterwards.
func (b *Bytes) Put(buf []byte) {
	if cap(buf) == 0 || cap(buf) > b.maxCap {
		return
	}
	bp := &buf
	b.p.Put(&bp)
}
