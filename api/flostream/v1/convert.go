package flostreamv1

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"
)

// Reply encoding on the wire:
//
//	nil          -> null
//	string       -> string
//	int64        -> number
//	status "OK"  -> struct {"status": "OK"}
//	[]any        -> list

// ErrUnsupported is returned for values that have no wire form.
var ErrUnsupported = errors.New("flostreamv1: unsupported value")

// Status mirrors a simple-string reply after decoding.
type Status string

const statusField = "status"

// ArgsToList encodes an argument vector.
func ArgsToList(args []string) *structpb.ListValue {
	vals := make([]*structpb.Value, 0, len(args))
	for _, a := range args {
		vals = append(vals, structpb.NewStringValue(a))
	}
	return &structpb.ListValue{Values: vals}
}

// ListToArgs decodes an argument vector. Numbers and bools are rendered as
// text so loosely typed clients can send them.
func ListToArgs(l *structpb.ListValue) ([]string, error) {
	out := make([]string, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		switch k := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			out = append(out, k.StringValue)
		case *structpb.Value_NumberValue:
			out = append(out, strconv.FormatFloat(k.NumberValue, 'f', -1, 64))
		case *structpb.Value_BoolValue:
			out = append(out, strconv.FormatBool(k.BoolValue))
		default:
			return nil, fmt.Errorf("%w: argument %d", ErrUnsupported, i)
		}
	}
	return out, nil
}

// ReplyToValue encodes a reply. statusText extracts the text of a status
// reply; it lets callers pass their own simple-string type.
func ReplyToValue(r any, statusText func(any) (string, bool)) (*structpb.Value, error) {
	if statusText != nil {
		if s, ok := statusText(r); ok {
			return statusValue(s), nil
		}
	}
	switch t := r.(type) {
	case nil:
		return structpb.NewNullValue(), nil
	case string:
		return structpb.NewStringValue(t), nil
	case int64:
		return structpb.NewNumberValue(float64(t)), nil
	case Status:
		return statusValue(string(t)), nil
	case []any:
		vals := make([]*structpb.Value, 0, len(t))
		for _, e := range t {
			v, err := ReplyToValue(e, statusText)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		return structpb.NewListValue(&structpb.ListValue{Values: vals}), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, r)
	}
}

func statusValue(s string) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		statusField: structpb.NewStringValue(s),
	}})
}

// ValueToReply decodes a reply. Numbers become int64 and status structs Status.
func ValueToReply(v *structpb.Value) (any, error) {
	switch k := v.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_StringValue:
		return k.StringValue, nil
	case *structpb.Value_NumberValue:
		if k.NumberValue != math.Trunc(k.NumberValue) {
			return nil, fmt.Errorf("%w: non-integer number", ErrUnsupported)
		}
		return int64(k.NumberValue), nil
	case *structpb.Value_StructValue:
		s, ok := k.StructValue.GetFields()[statusField]
		if !ok {
			return nil, fmt.Errorf("%w: struct without status", ErrUnsupported)
		}
		return Status(s.GetStringValue()), nil
	case *structpb.Value_ListValue:
		out := make([]any, 0, len(k.ListValue.GetValues()))
		for _, e := range k.ListValue.GetValues() {
			r, err := ValueToReply(e)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, k)
	}
}
