package service

import (
	"context"

	"github.com/Qthai16/go-listqueue/cmd/qserver/qstat"
	"github.com/Qthai16/go-listqueue/common/queue"
	"github.com/Qthai16/go-listqueue/common/registry"
	"github.com/Qthai16/go-listqueue/common/rpc"
	"github.com/Qthai16/go-listqueue/utils"
)

const (
	DefaultBufSize = 1024
	MaxBufSize     = 64 * 1024
)

// queueOp runs with the named queue locked and fills resp.
type queueOp func(q *queue.Queue, req *rpc.QueueRequest, resp *rpc.QueueResponse) error

// Service serves the queue methods over a registry.
type Service struct {
	reg   *registry.Registry
	stats *qstat.Stats
}

func New(reg *registry.Registry, stats *qstat.Stats) *Service {
	if stats == nil {
		stats = qstat.New(rpc.Methods...)
	}
	return &Service{reg: reg, stats: stats}
}

func (s *Service) Stats() *qstat.Stats {
	return s.stats
}

// Processor returns a processor with every method registered.
func (s *Service) Processor() *rpc.Processor {
	p := rpc.NewProcessor()
	p.Handle(rpc.MethodNew, s.wrap(rpc.MethodNew, s.newQueue))
	p.Handle(rpc.MethodFree, s.wrap(rpc.MethodFree, s.freeQueue))
	p.Handle(rpc.MethodStats, s.wrap(rpc.MethodStats, s.statsCall))

	ops := map[string]queueOp{
		rpc.MethodInsertHead: insertOp(true),
		rpc.MethodInsertTail: insertOp(false),
		rpc.MethodRemoveHead: removeOp(true),
		rpc.MethodRemoveTail: removeOp(false),
		rpc.MethodSize:       sizeOp,
		rpc.MethodDeleteMid: mutateOp(func(q *queue.Queue, _ *rpc.QueueRequest) error {
			return q.DeleteMid()
		}),
		rpc.MethodDeleteDup: mutateOp(func(q *queue.Queue, _ *rpc.QueueRequest) error {
			return q.DeleteDup()
		}),
		rpc.MethodSwap: mutateOp(func(q *queue.Queue, _ *rpc.QueueRequest) error {
			q.Swap()
			return nil
		}),
		rpc.MethodReverse: mutateOp(func(q *queue.Queue, _ *rpc.QueueRequest) error {
			q.Reverse()
			return nil
		}),
		rpc.MethodSort: mutateOp(func(q *queue.Queue, req *rpc.QueueRequest) error {
			q.Sort(req.Descend)
			return nil
		}),
		rpc.MethodShow: mutateOp(nil),
	}
	for method, op := range ops {
		p.Handle(method, s.wrap(method, s.onQueue(op)))
	}
	return p
}

// wrap counts calls and turns domain errors into a failed response.
func (s *Service) wrap(method string, fn rpc.HandlerFunc) rpc.HandlerFunc {
	return func(ctx context.Context, req *rpc.QueueRequest) (*rpc.QueueResponse, error) {
		s.stats.IncCall(method)
		if err := ctx.Err(); err != nil {
			s.stats.IncErr(method)
			return nil, err
		}
		resp, err := fn(ctx, req)
		if resp == nil {
			resp = &rpc.QueueResponse{}
		}
		if err != nil {
			s.stats.IncErr(method)
			utils.LogDebug("[service] %v %q: %v", method, req.Queue, err)
			resp.Ok = false
			resp.Error = err.Error()
			return resp, nil
		}
		resp.Ok = true
		return resp, nil
	}
}

func (s *Service) onQueue(op queueOp) rpc.HandlerFunc {
	return func(_ context.Context, req *rpc.QueueRequest) (*rpc.QueueResponse, error) {
		resp := &rpc.QueueResponse{}
		err := s.reg.Do(req.Queue, func(q *queue.Queue) error {
			return op(q, req, resp)
		})
		return resp, err
	}
}

func (s *Service) newQueue(_ context.Context, req *rpc.QueueRequest) (*rpc.QueueResponse, error) {
	if _, err := s.reg.Create(req.Queue); err != nil {
		return nil, err
	}
	return &rpc.QueueResponse{Items: []string{}}, nil
}

func (s *Service) freeQueue(_ context.Context, req *rpc.QueueRequest) (*rpc.QueueResponse, error) {
	return nil, s.reg.Drop(req.Queue)
}

func (s *Service) statsCall(_ context.Context, _ *rpc.QueueRequest) (*rpc.QueueResponse, error) {
	raw, err := s.stats.JSON()
	if err != nil {
		return nil, err
	}
	return &rpc.QueueResponse{
		Value: raw,
		Size:  int32(s.reg.Len()),
		Items: s.reg.Names(),
	}, nil
}

func fillState(q *queue.Queue, resp *rpc.QueueResponse) {
	resp.Items = q.Values()
	resp.Size = int32(len(resp.Items))
}

func insertOp(head bool) queueOp {
	return func(q *queue.Queue, req *rpc.QueueRequest, resp *rpc.QueueResponse) error {
		var err error
		if head {
			err = q.InsertHead(req.Text)
		} else {
			err = q.InsertTail(req.Text)
		}
		if err != nil {
			return err
		}
		fillState(q, resp)
		return nil
	}
}

// BufSize clamps a requested copy-out size.
func BufSize(n int32) int {
	switch {
	case n <= 0:
		return DefaultBufSize
	case n > MaxBufSize:
		return MaxBufSize
	}
	return int(n)
}

func removeOp(head bool) queueOp {
	return func(q *queue.Queue, req *rpc.QueueRequest, resp *rpc.QueueResponse) error {
		buf := make([]byte, BufSize(req.BufSize))
		var e *queue.Element
		if head {
			e = q.RemoveHead(buf)
		} else {
			e = q.RemoveTail(buf)
		}
		if e == nil {
			return queue.ErrEmpty
		}
		resp.Value = queue.CString(buf)
		if err := e.Release(); err != nil {
			return err
		}
		fillState(q, resp)
		return nil
	}
}

func sizeOp(q *queue.Queue, _ *rpc.QueueRequest, resp *rpc.QueueResponse) error {
	resp.Size = int32(q.Size())
	return nil
}

func mutateOp(fn func(q *queue.Queue, req *rpc.QueueRequest) error) queueOp {
	return func(q *queue.Queue, req *rpc.QueueRequest, resp *rpc.QueueResponse) error {
		if fn != nil {
			if err := fn(q, req); err != nil {
				return err
			}
		}
		fillState(q, resp)
		return nil
	}
}
