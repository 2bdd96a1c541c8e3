package rpc

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

// HandlerFunc serves one method. A non-nil error is reported to the caller
// as an INTERNAL_ERROR application exception; domain failures belong in
// QueueResponse.Error instead.
type HandlerFunc func(ctx context.Context, req *QueueRequest) (*QueueResponse, error)

// Processor dispatches framed thrift calls by method name.
type Processor struct {
	processorMap map[string]thrift.TProcessorFunction
}

var _ thrift.TProcessor = (*Processor)(nil)

func NewProcessor() *Processor {
	return &Processor{processorMap: make(map[string]thrift.TProcessorFunction)}
}

// Handle registers fn under method.
func (p *Processor) Handle(method string, fn HandlerFunc) {
	p.AddToProcessorMap(method, &methodProcessor{name: method, fn: fn})
}

func (p *Processor) AddToProcessorMap(key string, fn thrift.TProcessorFunction) {
	p.processorMap[key] = fn
}

func (p *Processor) ProcessorMap() map[string]thrift.TProcessorFunction {
	return p.processorMap
}

func (p *Processor) Process(ctx context.Context, iprot, oprot thrift.TProtocol) (bool, thrift.TException) {
	name, _, seqId, err := iprot.ReadMessageBegin(ctx)
	if err != nil {
		return false, thrift.WrapTException(err)
	}
	if fn, ok := p.processorMap[name]; ok {
		return fn.Process(ctx, seqId, iprot, oprot)
	}
	iprot.Skip(ctx, thrift.STRUCT)
	iprot.ReadMessageEnd(ctx)
	x := thrift.NewTApplicationException(thrift.UNKNOWN_METHOD, "Unknown function "+name)
	writeException(ctx, oprot, name, seqId, x)
	return false, x
}

func writeException(ctx context.Context, oprot thrift.TProtocol, name string, seqId int32, x thrift.TApplicationException) error {
	if err := oprot.WriteMessageBegin(ctx, name, thrift.EXCEPTION, seqId); err != nil {
		return err
	}
	if err := x.Write(ctx, oprot); err != nil {
		return err
	}
	if err := oprot.WriteMessageEnd(ctx); err != nil {
		return err
	}
	return oprot.Flush(ctx)
}

type methodProcessor struct {
	name string
	fn   HandlerFunc
}

func (m *methodProcessor) Process(ctx context.Context, seqId int32, iprot, oprot thrift.TProtocol) (bool, thrift.TException) {
	args := callArgs{}
	if err := args.Read(ctx, iprot); err != nil {
		iprot.ReadMessageEnd(ctx)
		x := thrift.NewTApplicationException(thrift.PROTOCOL_ERROR, err.Error())
		writeException(ctx, oprot, m.name, seqId, x)
		return false, thrift.WrapTException(err)
	}
	iprot.ReadMessageEnd(ctx)

	req := args.Req
	if req == nil {
		req = &QueueRequest{}
	}
	resp, err := m.fn(ctx, req)
	if err != nil {
		x := thrift.NewTApplicationException(thrift.INTERNAL_ERROR, "Internal error processing "+m.name+": "+err.Error())
		writeException(ctx, oprot, m.name, seqId, x)
		return true, thrift.WrapTException(err)
	}
	if resp == nil {
		resp = &QueueResponse{}
	}

	result := callResult{Success: resp}
	if err = oprot.WriteMessageBegin(ctx, m.name, thrift.REPLY, seqId); err == nil {
		if err = result.Write(ctx, oprot); err == nil {
			if err = oprot.WriteMessageEnd(ctx); err == nil {
				err = oprot.Flush(ctx)
			}
		}
	}
	if err != nil {
		return false, thrift.WrapTException(err)
	}
	return true, nil
}
