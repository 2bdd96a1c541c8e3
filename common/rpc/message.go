package rpc

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// Method names, one per queue command.
const (
	MethodNew        = "new"
	MethodFree       = "free"
	MethodInsertHead = "ih"
	MethodInsertTail = "it"
	MethodRemoveHead = "rh"
	MethodRemoveTail = "rt"
	MethodSize       = "size"
	MethodDeleteMid  = "dm"
	MethodDeleteDup  = "dedup"
	MethodSwap       = "swap"
	MethodReverse    = "reverse"
	MethodSort       = "sort"
	MethodShow       = "show"
	MethodStats      = "stats"
)

var Methods = []string{
	MethodNew, MethodFree, MethodInsertHead, MethodInsertTail, MethodRemoveHead,
	MethodRemoveTail, MethodSize, MethodDeleteMid, MethodDeleteDup, MethodSwap,
	MethodReverse, MethodSort, MethodShow, MethodStats,
}

// QueueRequest is
//
//	struct QueueRequest { 1: string queue, 2: string text, 3: i32 bufsize, 4: bool descend }
type QueueRequest struct {
	Queue   string
	Text    string
	BufSize int32
	Descend bool
}

func (p *QueueRequest) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("QueueRequest(%+v)", *p)
}

func (p *QueueRequest) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, p, func(id int16, typeId thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && typeId == thrift.STRING:
			p.Queue, err = iprot.ReadString(ctx)
		case id == 2 && typeId == thrift.STRING:
			p.Text, err = iprot.ReadString(ctx)
		case id == 3 && typeId == thrift.I32:
			p.BufSize, err = iprot.ReadI32(ctx)
		case id == 4 && typeId == thrift.BOOL:
			p.Descend, err = iprot.ReadBool(ctx)
		default:
			return false, nil
		}
		return true, err
	})
}

func (p *QueueRequest) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "QueueRequest"); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct begin error: ", p), err)
	}
	if err := writeString(ctx, oprot, "queue", 1, p.Queue); err != nil {
		return err
	}
	if err := writeString(ctx, oprot, "text", 2, p.Text); err != nil {
		return err
	}
	if err := writeI32(ctx, oprot, "bufsize", 3, p.BufSize); err != nil {
		return err
	}
	if err := writeBool(ctx, oprot, "descend", 4, p.Descend); err != nil {
		return err
	}
	return writeStructEnd(ctx, oprot, p)
}

// QueueResponse is
//
//	struct QueueResponse { 1: bool ok, 2: string value, 3: i32 size, 4: list<string> items, 5: string error }
type QueueResponse struct {
	Ok    bool
	Value string
	Size  int32
	Items []string
	Error string
}

func (p *QueueResponse) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("QueueResponse(%+v)", *p)
}

func (p *QueueResponse) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, p, func(id int16, typeId thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && typeId == thrift.BOOL:
			p.Ok, err = iprot.ReadBool(ctx)
		case id == 2 && typeId == thrift.STRING:
			p.Value, err = iprot.ReadString(ctx)
		case id == 3 && typeId == thrift.I32:
			p.Size, err = iprot.ReadI32(ctx)
		case id == 4 && typeId == thrift.LIST:
			p.Items, err = readStringList(ctx, iprot)
		case id == 5 && typeId == thrift.STRING:
			p.Error, err = iprot.ReadString(ctx)
		default:
			return false, nil
		}
		return true, err
	})
}

func (p *QueueResponse) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "QueueResponse"); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct begin error: ", p), err)
	}
	if err := writeBool(ctx, oprot, "ok", 1, p.Ok); err != nil {
		return err
	}
	if err := writeString(ctx, oprot, "value", 2, p.Value); err != nil {
		return err
	}
	if err := writeI32(ctx, oprot, "size", 3, p.Size); err != nil {
		return err
	}
	if p.Items != nil {
		if err := writeStringList(ctx, oprot, "items", 4, p.Items); err != nil {
			return err
		}
	}
	if err := writeString(ctx, oprot, "error", 5, p.Error); err != nil {
		return err
	}
	return writeStructEnd(ctx, oprot, p)
}

// callArgs wraps the request as field 1 of the method's argument struct.
type callArgs struct {
	Req *QueueRequest
}

func (p *callArgs) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, p, func(id int16, typeId thrift.TType) (bool, error) {
		if id != 1 || typeId != thrift.STRUCT {
			return false, nil
		}
		p.Req = &QueueRequest{}
		return true, p.Req.Read(ctx, iprot)
	})
}

func (p *callArgs) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "call_args"); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct begin error: ", p), err)
	}
	if p.Req != nil {
		if err := writeStructField(ctx, oprot, "req", 1, p.Req); err != nil {
			return err
		}
	}
	return writeStructEnd(ctx, oprot, p)
}

// callResult carries the response as field 0, the thrift "success" slot.
type callResult struct {
	Success *QueueResponse
}

func (p *callResult) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, p, func(id int16, typeId thrift.TType) (bool, error) {
		if id != 0 || typeId != thrift.STRUCT {
			return false, nil
		}
		p.Success = &QueueResponse{}
		return true, p.Success.Read(ctx, iprot)
	})
}

func (p *callResult) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "call_result"); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct begin error: ", p), err)
	}
	if p.Success != nil {
		if err := writeStructField(ctx, oprot, "success", 0, p.Success); err != nil {
			return err
		}
	}
	return writeStructEnd(ctx, oprot, p)
}

var (
	_ thrift.TStruct = (*QueueRequest)(nil)
	_ thrift.TStruct = (*QueueResponse)(nil)
	_ thrift.TStruct = (*callArgs)(nil)
	_ thrift.TStruct = (*callResult)(nil)
)
