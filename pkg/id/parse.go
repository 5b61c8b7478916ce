package id

import "math"

// Mode selects how a token is interpreted.
type Mode int

const (
	// ModeGenerate parses append tokens ("*" or explicit) against a floor.
	ModeGenerate Mode = iota
	// ModeRangeStart parses a lower range bound ("-" or explicit, seq defaults to 0).
	ModeRangeStart
	// ModeRangeEnd parses an upper range bound ("+" or explicit, seq defaults to max).
	ModeRangeEnd
	// ModeRead parses a bare read floor; boundary tokens are rejected and
	// seq defaults to 0.
	ModeRead
)

const (
	TokenAuto = "*"
	TokenMin  = "-"
	TokenMax  = "+"
)

func (m Mode) String() string {
	switch m {
	case ModeGenerate:
		return "generate"
	case ModeRangeStart:
		return "range-start"
	case ModeRangeEnd:
		return "range-end"
	case ModeRead:
		return "read"
	default:
		return "unknown"
	}
}

// Parse interprets tok according to mode. floor is only consulted by
// ModeGenerate, where the result must be strictly greater than it.
func Parse(tok string, mode Mode, floor ID) (ID, error) {
	switch mode {
	case ModeGenerate:
		return parseGenerate(tok, floor)
	case ModeRangeStart:
		return parseBound(tok, TokenMin, Min, 0)
	case ModeRangeEnd:
		return parseBound(tok, TokenMax, Max, math.MaxUint64)
	case ModeRead:
		ms, seq, _, err := splitToken(tok)
		if err != nil {
			return ID{}, err
		}
		return ID{Ms: ms, Seq: seq}, nil
	default:
		return ID{}, ErrInvalidID
	}
}

// MustParse is Parse for tests and constants; it panics on error.
func MustParse(tok string, mode Mode) ID {
	v, err := Parse(tok, mode, Min)
	if err != nil {
		panic(err)
	}
	return v
}

func parseGenerate(tok string, floor ID) (ID, error) {
	var next ID
	if tok == TokenAuto {
		v, err := Next(floor)
		if err != nil {
			return ID{}, err
		}
		next = v
	} else {
		ms, seq, _, err := splitToken(tok)
		if err != nil {
			return ID{}, err
		}
		next = ID{Ms: ms, Seq: seq}
	}
	if next.Compare(floor) <= 0 {
		return ID{}, ErrNotMonotonic
	}
	return next, nil
}

func parseBound(tok, boundary string, boundaryID ID, defaultSeq uint64) (ID, error) {
	if tok == boundary {
		return boundaryID, nil
	}
	ms, seq, hasSeq, err := splitToken(tok)
	if err != nil {
		return ID{}, err
	}
	if !hasSeq {
		seq = defaultSeq
	}
	return ID{Ms: ms, Seq: seq}, nil
}
