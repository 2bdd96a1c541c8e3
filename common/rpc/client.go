package rpc

import (
	"context"
	"time"

	"github.com/apache/thrift/lib/go/thrift"
)

// DefaultConf is the connection config used when none is given.
func DefaultConf() *thrift.TConfiguration {
	return &thrift.TConfiguration{
		ConnectTimeout:     5 * time.Second,
		SocketTimeout:      5 * time.Second,
		MaxFrameSize:       1024 * 1024 * 16,
		TBinaryStrictRead:  thrift.BoolPtr(true),
		TBinaryStrictWrite: thrift.BoolPtr(true),
	}
}

// Client talks to a queue server over framed binary thrift.
type Client struct {
	Addr     string
	connConf *thrift.TConfiguration
	trans    thrift.TTransport
	core     *thrift.TStandardClient
}

func NewClient(addr string, conf *thrift.TConfiguration) *Client {
	if conf == nil {
		conf = DefaultConf()
	}
	return &Client{Addr: addr, connConf: conf}
}

// NewClientProtocol builds a client over already opened protocols.
func NewClientProtocol(iprot, oprot thrift.TProtocol) *Client {
	return &Client{core: thrift.NewTStandardClient(iprot, oprot)}
}

func (c *Client) Open() error {
	socket := thrift.NewTSocketConf(c.Addr, c.connConf)
	trans := thrift.NewTFramedTransportConf(socket, c.connConf)
	iprot := thrift.NewTBinaryProtocolConf(trans, c.connConf)
	oprot := thrift.NewTBinaryProtocolConf(trans, c.connConf)
	c.core = thrift.NewTStandardClient(iprot, oprot)
	c.trans = trans
	return c.trans.Open()
}

func (c *Client) Close() error {
	if c.trans != nil { // close anyway to avoid leak
		return c.trans.Close()
	}
	return nil
}

// Call invokes method with req and returns the server's response.
func (c *Client) Call(ctx context.Context, method string, req *QueueRequest) (*QueueResponse, error) {
	if req == nil {
		req = &QueueRequest{}
	}
	args := &callArgs{Req: req}
	result := &callResult{}
	if _, err := c.core.Call(ctx, method, args, result); err != nil {
		return nil, err
	}
	if result.Success == nil {
		return nil, thrift.NewTApplicationException(thrift.MISSING_RESULT, method+" failed: unknown result")
	}
	return result.Success, nil
}

func (c *Client) NewQueue(ctx context.Context, queue string) (*QueueResponse, error) {
	return c.Call(ctx, MethodNew, &QueueRequest{Queue: queue})
}

func (c *Client) FreeQueue(ctx context.Context, queue string) (*QueueResponse, error) {
	return c.Call(ctx, MethodFree, &QueueRequest{Queue: queue})
}

func (c *Client) InsertHead(ctx context.Context, queue, text string) (*QueueResponse, error) {
	return c.Call(ctx, MethodInsertHead, &QueueRequest{Queue: queue, Text: text})
}

func (c *Client) InsertTail(ctx context.Context, queue, text string) (*QueueResponse, error) {
	return c.Call(ctx, MethodInsertTail, &QueueRequest{Queue: queue, Text: text})
}

func (c *Client) RemoveHead(ctx context.Context, queue string, bufSize int32) (*QueueResponse, error) {
	return c.Call(ctx, MethodRemoveHead, &QueueRequest{Queue: queue, BufSize: bufSize})
}

func (c *Client) RemoveTail(ctx context.Context, queue string, bufSize int32) (*QueueResponse, error) {
	return c.Call(ctx, MethodRemoveTail, &QueueRequest{Queue: queue, BufSize: bufSize})
}

func (c *Client) Sort(ctx context.Context, queue string, descend bool) (*QueueResponse, error) {
	return c.Call(ctx, MethodSort, &QueueRequest{Queue: queue, Descend: descend})
}

func (c *Client) Show(ctx context.Context, queue string) (*QueueResponse, error) {
	return c.Call(ctx, MethodShow, &QueueRequest{Queue: queue})
}
