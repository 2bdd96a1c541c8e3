package service

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/Qthai16/go-listqueue/utils"
	"github.com/apache/thrift/lib/go/thrift"
)

var ErrServerClosed = errors.New("service: server closed")

// Server accepts framed binary connections and runs each one's calls
// through a processor until the peer hangs up.
type Server struct {
	addr         string
	processor    thrift.TProcessor
	transFactory thrift.TTransportFactory
	protoFactory thrift.TProtocolFactory
	sock         *thrift.TServerSocket

	mu     sync.Mutex
	conns  map[thrift.TTransport]struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
}

func NewServer(addr string, processor thrift.TProcessor, conf *thrift.TConfiguration) *Server {
	return &Server{
		addr:         addr,
		processor:    processor,
		transFactory: thrift.NewTFramedTransportFactoryConf(thrift.NewTBufferedTransportFactory(8192), conf),
		protoFactory: thrift.NewTBinaryProtocolFactoryConf(conf),
		conns:        make(map[thrift.TTransport]struct{}),
	}
}

func (s *Server) Listen() error {
	sock, err := thrift.NewTServerSocketTimeout(s.addr, 0)
	if err != nil {
		return err
	}
	if err = sock.Listen(); err != nil {
		return err
	}
	s.sock = sock
	return nil
}

// Addr is the bound address, valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.sock.Addr()
}

// Serve accepts connections until Stop. It returns ErrServerClosed after
// a Stop and the accept error otherwise.
func (s *Server) Serve(ctx context.Context) error {
	const prefix = "thrift-server"
	if s.sock == nil {
		if err := s.Listen(); err != nil {
			utils.LogErro("%v: failed to listen on %v, err: %v", prefix, s.addr, err)
			return err
		}
	}
	utils.LogInfo("%v: listening on %v", prefix, s.Addr())
	for {
		trans, err := s.sock.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			utils.LogErro("%v: accept conn failed, err: %v", prefix, err)
			return err
		}
		if trans == nil {
			continue
		}
		if !s.track(trans) {
			trans.Close()
			return ErrServerClosed
		}
		go func() {
			defer s.untrack(trans)
			s.handleConn(ctx, trans)
		}()
	}
}

func (s *Server) track(trans thrift.TTransport) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return false
	}
	s.conns[trans] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(trans thrift.TTransport) {
	s.mu.Lock()
	delete(s.conns, trans)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) handleConn(ctx context.Context, client thrift.TTransport) {
	trans, err := s.transFactory.GetTransport(client)
	if err != nil {
		client.Close()
		return
	}
	defer trans.Close()
	proto := s.protoFactory.GetProtocol(trans)
	for {
		ok, err := s.processor.Process(ctx, proto, proto)
		if err != nil {
			var transErr thrift.TTransportException
			if errors.As(err, &transErr) {
				if transErr.TypeId() != thrift.END_OF_FILE && !s.closed.Load() {
					utils.LogWarn("[server] connection dropped: %v", err)
				}
				return
			}
			var appErr thrift.TApplicationException
			if errors.As(err, &appErr) && appErr.TypeId() == thrift.UNKNOWN_METHOD {
				continue
			}
		}
		if !ok {
			return
		}
	}
}

// Stop closes the listener and every open connection, then waits for
// their goroutines.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.closed.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return
	}
	if s.sock != nil {
		s.sock.Interrupt()
	}
	for trans := range s.conns {
		trans.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
