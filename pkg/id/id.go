package id

import (
	"encoding/binary"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// ID is a composite stream identifier ordered by (Ms, Seq).
type ID struct {
	Ms  uint64
	Seq uint64
}

var (
	// Min is the smallest representable ID ("0-0").
	Min = ID{}
	// Max is the largest representable ID.
	Max = ID{Ms: math.MaxUint64, Seq: math.MaxUint64}
)

var (
	ErrInvalidID    = errors.New("invalid identifier specified.")
	ErrNotMonotonic = errors.New("the ID specified is equal or smaller than the target log's most recent item.")
)

// NowMs returns current time in milliseconds since Unix epoch.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// String returns the canonical "<ms>-<seq>" form.
func (i ID) String() string {
	b := make([]byte, 0, 41)
	b = strconv.AppendUint(b, i.Ms, 10)
	b = append(b, '-')
	b = strconv.AppendUint(b, i.Seq, 10)
	return string(b)
}

// Bytes returns the 16-byte big-endian representation.
func (i ID) Bytes() []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[0:8], i.Ms)
	binary.BigEndian.PutUint64(b[8:16], i.Seq)
	return b
}

// FromBytes decodes the form produced by Bytes.
func FromBytes(b []byte) (ID, bool) {
	if len(b) != 16 {
		return ID{}, false
	}
	return ID{Ms: binary.BigEndian.Uint64(b[0:8]), Seq: binary.BigEndian.Uint64(b[8:16])}, true
}

// Compare returns -1, 0, 1 comparing ms first and seq second.
func (i ID) Compare(other ID) int {
	switch {
	case i.Ms < other.Ms:
		return -1
	case i.Ms > other.Ms:
		return 1
	case i.Seq < other.Seq:
		return -1
	case i.Seq > other.Seq:
		return 1
	}
	return 0
}

// Less reports whether i sorts before other.
func (i ID) Less(other ID) bool { return i.Compare(other) < 0 }

// Next returns an auto-generated ID strictly greater than floor: the current
// millisecond when the clock is ahead of floor, otherwise floor's millisecond
// with the sequence incremented. A sequence overflow moves to the next ms.
func Next(floor ID) (ID, error) {
	ms := uint64(0)
	if now := NowMs(); now > 0 {
		ms = uint64(now)
	}
	if ms > floor.Ms {
		return ID{Ms: ms}, nil
	}
	if floor.Seq < math.MaxUint64 {
		return ID{Ms: floor.Ms, Seq: floor.Seq + 1}, nil
	}
	if floor.Ms < math.MaxUint64 {
		return ID{Ms: floor.Ms + 1}, nil
	}
	return ID{}, ErrNotMonotonic
}

// splitToken parses "<ms>[-<seq>]". hasSeq is false when the sequence part is absent.
func splitToken(tok string) (ms, seq uint64, hasSeq bool, err error) {
	msPart, seqPart, found := strings.Cut(tok, "-")
	ms, err = parseUint(msPart)
	if err != nil {
		return 0, 0, false, err
	}
	if !found {
		return ms, 0, false, nil
	}
	seq, err = parseUint(seqPart)
	if err != nil {
		return 0, 0, false, err
	}
	return ms, seq, true, nil
}

func parseUint(s string) (uint64, error) {
	if s == "" {
		return 0, ErrInvalidID
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}
	return v, nil
}
