package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Qthai16/go-listqueue/common/rpc"
	"github.com/Qthai16/go-listqueue/utils"
)

type caller interface {
	Call(ctx context.Context, method string, req *rpc.QueueRequest) (*rpc.QueueResponse, error)
}

type benchResult struct {
	Ok, Failed int64
	Elapsed    time.Duration
	LastErr    error
}

func (r benchResult) String() string {
	rate := float64(r.Ok+r.Failed) / r.Elapsed.Seconds()
	return fmt.Sprintf("ok %d, failed %d, %v, %.0f req/s", r.Ok, r.Failed, r.Elapsed.Round(time.Millisecond), rate)
}

// runBench spreads n tail inserts on queue over c workers.
func runBench(ctx context.Context, cl caller, queue string, n, c int) benchResult {
	var (
		next     atomic.Int64
		ok, fail atomic.Int64
		errMu    sync.Mutex
		lastErr  error
		wg       sync.WaitGroup
	)
	start := time.Now()
	for w := 0; w < c; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := next.Add(1) - 1
				if i >= int64(n) || ctx.Err() != nil {
					return
				}
				req := &rpc.QueueRequest{Queue: queue, Text: fmt.Sprintf("bench-%d", i)}
				resp, err := cl.Call(ctx, rpc.MethodInsertTail, req)
				if err == nil && !resp.Ok {
					err = errors.New(resp.Error)
				}
				if err != nil {
					fail.Add(1)
					errMu.Lock()
					lastErr = err
					errMu.Unlock()
					continue
				}
				ok.Add(1)
			}
		}()
	}
	wg.Wait()
	return benchResult{Ok: ok.Load(), Failed: fail.Load(), Elapsed: time.Since(start), LastErr: lastErr}
}

func bench(args []string) error {
	if len(args) < 1 {
		return errors.New("missing queue name")
	}
	if cmdLineOpts.Requests <= 0 || cmdLineOpts.Concurrency <= 0 {
		return fmt.Errorf("invalid -n %d or -c %d", cmdLineOpts.Requests, cmdLineOpts.Concurrency)
	}
	conf := rpc.DefaultConf()
	conf.ConnectTimeout = cmdLineOpts.Timeout
	conf.SocketTimeout = cmdLineOpts.Timeout
	p, err := rpc.NewClientPool(rpc.PoolConfig{
		Addr:        cmdLineOpts.Addr,
		MaxOpenConn: int32(cmdLineOpts.Concurrency),
		ConnConf:    conf,
	})
	if err != nil {
		return err
	}
	defer p.Destroy()

	ctx := context.Background()
	queue := args[0]
	if resp, err := p.Call(ctx, rpc.MethodNew, &rpc.QueueRequest{Queue: queue}); err != nil {
		return err
	} else if !resp.Ok {
		utils.LogWarn("new %v: %v, inserting into the existing queue", queue, resp.Error)
	}
	res := runBench(ctx, p, queue, cmdLineOpts.Requests, cmdLineOpts.Concurrency)
	fmt.Println(res)
	if res.LastErr != nil {
		utils.LogWarn("last error: %v", res.LastErr)
	}
	return nil
}
