package flostreamv1

import (
	"errors"
	"reflect"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestArgsRoundTrip(t *testing.T) {
	args := []string{"XADD", "s", "*", "f", ""}
	got, err := ListToArgs(ArgsToList(args))
	if err != nil || !reflect.DeepEqual(got, args) {
		t.Fatalf("got %v err %v", got, err)
	}
}

func TestListToArgsLooseTypes(t *testing.T) {
	l, _ := structpb.NewList([]any{"XTRIM", "s", "MAXLEN", 10, true})
	got, err := ListToArgs(l)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := []string{"XTRIM", "s", "MAXLEN", "10", "true"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	bad, _ := structpb.NewList([]any{"XLEN", nil})
	if _, err := ListToArgs(bad); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestReplyRoundTrip(t *testing.T) {
	reply := []any{
		[]any{"1-0", []any{"f", "v"}},
		int64(42),
		nil,
		Status("OK"),
	}
	v, err := ReplyToValue(reply, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ValueToReply(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, reply) {
		t.Fatalf("got %#v want %#v", got, reply)
	}
}

func TestReplyCustomStatus(t *testing.T) {
	type pong string
	v, err := ReplyToValue(pong("PONG"), func(r any) (string, bool) {
		p, ok := r.(pong)
		return string(p), ok
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, _ := ValueToReply(v)
	if got != Status("PONG") {
		t.Fatalf("got %#v", got)
	}
	if _, err := ReplyToValue(3.5, nil); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
