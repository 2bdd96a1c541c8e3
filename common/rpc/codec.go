package rpc

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// fieldReader reads one field's value and reports whether it knew the
// field. Unknown fields are skipped by readStruct.
type fieldReader func(id int16, typeId thrift.TType) (bool, error)

func readStruct(ctx context.Context, iprot thrift.TProtocol, p any, readField fieldReader) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read error: ", p), err)
	}
	for {
		_, typeId, id, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%T field %d read error: ", p, id), err)
		}
		if typeId == thrift.STOP {
			break
		}
		known, err := readField(id, typeId)
		if err == nil && !known {
			err = iprot.Skip(ctx, typeId)
		}
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%T field %d read error: ", p, id), err)
		}
		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := iprot.ReadStructEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read struct end error: ", p), err)
	}
	return nil
}

func readStringList(ctx context.Context, iprot thrift.TProtocol) ([]string, error) {
	elemType, size, err := iprot.ReadListBegin(ctx)
	if err != nil {
		return nil, thrift.PrependError("error reading list begin: ", err)
	}
	if elemType != thrift.STRING {
		return nil, thrift.NewTProtocolExceptionWithType(thrift.INVALID_DATA,
			fmt.Errorf("expected list<string>, got element type %v", elemType))
	}
	items := make([]string, 0, size)
	for i := 0; i < size; i++ {
		s, err := iprot.ReadString(ctx)
		if err != nil {
			return nil, thrift.PrependError(fmt.Sprintf("error reading item %d: ", i), err)
		}
		items = append(items, s)
	}
	if err := iprot.ReadListEnd(ctx); err != nil {
		return nil, thrift.PrependError("error reading list end: ", err)
	}
	return items, nil
}

func writeFieldBegin(ctx context.Context, oprot thrift.TProtocol, name string, typeId thrift.TType, id int16) error {
	if err := oprot.WriteFieldBegin(ctx, name, typeId, id); err != nil {
		return thrift.PrependError(fmt.Sprintf("write field begin error %d:%s: ", id, name), err)
	}
	return nil
}

func writeFieldEnd(ctx context.Context, oprot thrift.TProtocol, name string, id int16) error {
	if err := oprot.WriteFieldEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("write field end error %d:%s: ", id, name), err)
	}
	return nil
}

func writeString(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v string) error {
	if err := writeFieldBegin(ctx, oprot, name, thrift.STRING, id); err != nil {
		return err
	}
	if err := oprot.WriteString(ctx, v); err != nil {
		return thrift.PrependError(fmt.Sprintf("field (%d) %s: ", id, name), err)
	}
	return writeFieldEnd(ctx, oprot, name, id)
}

func writeI32(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v int32) error {
	if err := writeFieldBegin(ctx, oprot, name, thrift.I32, id); err != nil {
		return err
	}
	if err := oprot.WriteI32(ctx, v); err != nil {
		return thrift.PrependError(fmt.Sprintf("field (%d) %s: ", id, name), err)
	}
	return writeFieldEnd(ctx, oprot, name, id)
}

func writeBool(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v bool) error {
	if err := writeFieldBegin(ctx, oprot, name, thrift.BOOL, id); err != nil {
		return err
	}
	if err := oprot.WriteBool(ctx, v); err != nil {
		return thrift.PrependError(fmt.Sprintf("field (%d) %s: ", id, name), err)
	}
	return writeFieldEnd(ctx, oprot, name, id)
}

func writeStringList(ctx context.Context, oprot thrift.TProtocol, name string, id int16, items []string) error {
	if err := writeFieldBegin(ctx, oprot, name, thrift.LIST, id); err != nil {
		return err
	}
	if err := oprot.WriteListBegin(ctx, thrift.STRING, len(items)); err != nil {
		return thrift.PrependError("error writing list begin: ", err)
	}
	for _, s := range items {
		if err := oprot.WriteString(ctx, s); err != nil {
			return thrift.PrependError(fmt.Sprintf("field (%d) %s: ", id, name), err)
		}
	}
	if err := oprot.WriteListEnd(ctx); err != nil {
		return thrift.PrependError("error writing list end: ", err)
	}
	return writeFieldEnd(ctx, oprot, name, id)
}

func writeStructField(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v thrift.TStruct) error {
	if err := writeFieldBegin(ctx, oprot, name, thrift.STRUCT, id); err != nil {
		return err
	}
	if err := v.Write(ctx, oprot); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T error writing struct: ", v), err)
	}
	return writeFieldEnd(ctx, oprot, name, id)
}

func writeStructEnd(ctx context.Context, oprot thrift.TProtocol, p any) error {
	if err := oprot.WriteFieldStop(ctx); err != nil {
		return thrift.PrependError("write field stop error: ", err)
	}
	if err := oprot.WriteStructEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct end error: ", p), err)
	}
	return nil
}
