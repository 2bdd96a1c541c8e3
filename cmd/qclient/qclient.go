package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Qthai16/go-listqueue/common/rpc"
	"github.com/Qthai16/go-listqueue/utils"
)

var cmdLineOpts = CmdlineOpts{}

type CmdlineOpts struct {
	Addr        string
	Timeout     time.Duration
	BufSize     int
	Requests    int
	Concurrency int
}

const methodBench = "bench"

func flagInit() {
	flag.StringVar(&cmdLineOpts.Addr, "addr", "127.0.0.1:18100", "queue server addr")
	flag.DurationVar(&cmdLineOpts.Timeout, "timeout", 5*time.Second, "connect and call timeout")
	flag.IntVar(&cmdLineOpts.BufSize, "bufsize", 0, "copy-out buffer size for rh/rt, 0 for server default")
	flag.IntVar(&cmdLineOpts.Requests, "n", 1000, "bench: number of inserts")
	flag.IntVar(&cmdLineOpts.Concurrency, "c", 8, "bench: concurrent callers")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <method> [queue] [text|asc|desc]\nmethods: %s %s\n",
			os.Args[0], strings.Join(rpc.Methods, " "), methodBench)
		flag.PrintDefaults()
	}
}

// buildRequest maps positional args onto a request for method.
func buildRequest(method string, args []string) (*rpc.QueueRequest, error) {
	req := &rpc.QueueRequest{BufSize: int32(cmdLineOpts.BufSize)}
	if method == rpc.MethodStats {
		return req, nil
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("%v: missing queue name", method)
	}
	req.Queue = args[0]
	switch method {
	case rpc.MethodInsertHead, rpc.MethodInsertTail:
		if len(args) < 2 {
			return nil, fmt.Errorf("%v: missing text", method)
		}
		req.Text = args[1]
	case rpc.MethodSort:
		if len(args) > 1 {
			switch args[1] {
			case "asc":
			case "desc":
				req.Descend = true
			default:
				return nil, fmt.Errorf("sort: unknown order %q", args[1])
			}
		}
	}
	return req, nil
}

func printResponse(method string, resp *rpc.QueueResponse) {
	if !resp.Ok {
		fmt.Printf("%v failed: %v\n", method, resp.Error)
		return
	}
	switch method {
	case rpc.MethodRemoveHead, rpc.MethodRemoveTail:
		fmt.Printf("removed %q\n", resp.Value)
	case rpc.MethodStats:
		fmt.Println(resp.Value)
	}
	fmt.Printf("size %d %q\n", resp.Size, resp.Items)
}

func main() {
	flagInit()
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	method := flag.Arg(0)
	if method == methodBench {
		if err := bench(flag.Args()[1:]); err != nil {
			utils.LogErro("bench: %v", err)
			os.Exit(1)
		}
		return
	}
	req, err := buildRequest(method, flag.Args()[1:])
	if err != nil {
		utils.LogErro("%v", err)
		os.Exit(2)
	}

	conf := rpc.DefaultConf()
	conf.ConnectTimeout = cmdLineOpts.Timeout
	conf.SocketTimeout = cmdLineOpts.Timeout
	client := rpc.NewClient(cmdLineOpts.Addr, conf)
	if err := client.Open(); err != nil {
		utils.LogErro("failed to connect %v: %v", cmdLineOpts.Addr, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cmdLineOpts.Timeout)
	defer cancel()
	resp, err := client.Call(ctx, method, req)
	if err != nil {
		utils.LogErro("%v: %v", method, err)
		return
	}
	printResponse(method, resp)
}
