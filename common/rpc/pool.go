package rpc

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/Qthai16/go-listqueue/common/pool"
	"github.com/Qthai16/go-listqueue/utils"
	"github.com/apache/thrift/lib/go/thrift"
)

var (
	ErrInvalidParam   = errors.New("rpc: invalid pool param")
	ErrMaxConnReached = errors.New("rpc: max connection reached")
	ErrPoolClosed     = errors.New("rpc: pool is closed")
	ErrNoConnection   = errors.New("rpc: no connection")
)

const (
	DefaultPoolSize  = 64
	defaultAliveIntv = 3 * time.Second
	defaultSlots     = 10
)

// DialFunc opens a client to addr.
type DialFunc func(addr string, conf *thrift.TConfiguration) (*Client, error)

func dial(addr string, conf *thrift.TConfiguration) (*Client, error) {
	c := NewClient(addr, conf)
	if err := c.Open(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

type PoolConfig struct {
	Addr           string
	MaxOpenConn    int32
	AliveCheckIntv time.Duration // minimum wait before redialing a dead server
	ConnConf       *thrift.TConfiguration
	Dial           DialFunc
}

// ClientPool keeps up to MaxOpenConn clients to one server. After a dial
// or transport failure the server is marked dead and Get fails fast until
// AliveCheckIntv has passed.
type ClientPool struct {
	PoolConfig
	conns    chan *Client
	slots    chan struct{}
	numOpen  atomic.Int32
	closed   atomic.Bool
	alive    atomic.Bool
	lastDead atomic.Int64 // unix nano
}

func NewClientPool(conf PoolConfig) (*ClientPool, error) {
	if conf.Addr == "" || conf.MaxOpenConn < 0 {
		utils.LogErro("[pool] invalid pool config: %+v", conf)
		return nil, ErrInvalidParam
	}
	if conf.MaxOpenConn == 0 {
		conf.MaxOpenConn = DefaultPoolSize
	}
	if conf.AliveCheckIntv <= 0 {
		conf.AliveCheckIntv = defaultAliveIntv
	}
	if conf.ConnConf == nil {
		conf.ConnConf = DefaultConf()
	}
	if conf.Dial == nil {
		conf.Dial = dial
	}
	return &ClientPool{
		PoolConfig: conf,
		conns:      make(chan *Client, conf.MaxOpenConn),
		slots:      make(chan struct{}, defaultSlots),
	}, nil
}

func (p *ClientPool) markDead(reason error) {
	if p.alive.CompareAndSwap(true, false) {
		p.lastDead.Store(time.Now().UnixNano())
		utils.LogWarn("[pool][%v] dead: %v", p.Addr, reason)
	}
}

func (p *ClientPool) sinceDead() time.Duration {
	return time.Duration(time.Now().UnixNano() - p.lastDead.Load())
}

func (p *ClientPool) Get() (*Client, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}
	if !p.alive.Load() {
		if p.sinceDead() < p.AliveCheckIntv {
			return nil, ErrNoConnection
		}
		p.alive.CompareAndSwap(false, true)
	}
	p.slots <- struct{}{}
	defer func() {
		<-p.slots
	}()
	select {
	case c, ok := <-p.conns:
		if !ok {
			return nil, ErrPoolClosed
		}
		return c, nil
	default:
	}
	if p.numOpen.Add(1) <= p.MaxOpenConn {
		c, err := p.Dial(p.Addr, p.ConnConf)
		if err != nil {
			p.numOpen.Add(-1)
			p.markDead(err)
			return nil, ErrNoConnection
		}
		return c, nil
	}
	p.numOpen.Add(-1)
	t := pool.BorrowTimer(p.ConnConf.ConnectTimeout)
	defer pool.ReturnTimer(t)
	select {
	case c, ok := <-p.conns:
		if !ok {
			return nil, ErrPoolClosed
		}
		return c, nil
	case <-t.C:
		return nil, ErrMaxConnReached
	}
}

func (p *ClientPool) Put(c *Client) {
	if c == nil {
		return
	}
	if !p.closed.Load() && p.alive.Load() {
		select {
		case p.conns <- c:
			return
		default:
		}
	}
	p.discard(c)
}

func (p *ClientPool) discard(c *Client) {
	c.Close()
	p.numOpen.Add(-1)
}

// PutIfValid returns c to the pool unless err says its connection broke.
// Application and protocol errors leave the connection usable.
func (p *ClientPool) PutIfValid(c *Client, err error) {
	if c == nil {
		return
	}
	var transErr thrift.TTransportException
	if err == nil || !errors.As(err, &transErr) {
		p.Put(c)
		return
	}
	// other idle conns to the same server are likely broken too
	p.markDead(err)
	for drained := false; !drained; {
		select {
		case idle, ok := <-p.conns:
			if !ok {
				drained = true
				break
			}
			p.discard(idle)
		default:
			drained = true
		}
	}
	p.discard(c)
}

// Call runs one request on a pooled client.
func (p *ClientPool) Call(ctx context.Context, method string, req *QueueRequest) (*QueueResponse, error) {
	c, err := p.Get()
	if err != nil {
		return nil, err
	}
	resp, err := c.Call(ctx, method, req)
	p.PutIfValid(c, err)
	return resp, err
}

// Len is the number of idle clients.
func (p *ClientPool) Len() int {
	return len(p.conns)
}

func (p *ClientPool) NumOpen() int {
	return int(p.numOpen.Load())
}

func (p *ClientPool) IsAlive() bool {
	return p.alive.Load()
}

func (p *ClientPool) Destroy() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	close(p.conns)
	for c := range p.conns {
		p.discard(c)
	}
	utils.LogInfo("[pool][%v] pool is destroyed", p.Addr)
}
