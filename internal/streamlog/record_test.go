package streamlog

import (
	"reflect"
	"testing"
)

func TestRecordRoundtrip(t *testing.T) {
	fields := []Field{{Name: "sensor", Value: "a"}, {Name: "temp", Value: ""}}
	rec, err := EncodeRecord(fields)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec, err := DecodeRecord(rec)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(dec, fields) {
		t.Fatalf("got %v want %v", dec, fields)
	}
}

func TestRecordCRCFail(t *testing.T) {
	rec, err := EncodeRecord([]Field{{Name: "x", Value: "y"}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	rec[len(rec)-1] ^= 0xFF
	if _, err := DecodeRecord(rec); err == nil {
		t.Fatalf("expected crc failure")
	}
}

func TestRecordTruncated(t *testing.T) {
	rec, _ := EncodeRecord([]Field{{Name: "x", Value: "y"}})
	if _, err := DecodeRecord(rec[:len(rec)-2]); err == nil {
		t.Fatalf("expected length failure")
	}
	if _, err := DecodeRecord(nil); err == nil {
		t.Fatalf("expected failure on empty input")
	}
}
