package transports

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnexpectedReply is returned when a server reply does not have the shape
// a command promises.
var ErrUnexpectedReply = errors.New("unexpected reply")

// Entry is one stream entry as shown by the CLI.
type Entry struct {
	ID     string   `json:"id"`
	Fields []string `json:"fields"`
}

// StreamInfo summarises a stream.
type StreamInfo struct {
	Length          int64  `json:"length"`
	LastGeneratedID string `json:"lastGeneratedId"`
	FirstEntry      *Entry `json:"firstEntry"`
	LastEntry       *Entry `json:"lastEntry"`
}

// AddRequest describes an append. MaxLen < 0 disables trimming.
type AddRequest struct {
	Key    string
	ID     string
	MaxLen int
	Fields []string
}

// SearchRequest describes a filtered scan.
type SearchRequest struct {
	Key     string
	Start   string
	End     string
	Filter  string
	Limit   int
	Reverse bool
}

// SearchResult is the server's answer to a search.
type SearchResult struct {
	Items     []Entry `json:"items"`
	Scanned   int     `json:"scanned"`
	Truncated bool    `json:"truncated"`
}

// StreamsTransport abstracts the transport used by the CLI for stream
// commands.
type StreamsTransport interface {
	Exec(ctx context.Context, args ...string) (any, error)
	Add(ctx context.Context, req AddRequest) (string, error)
	Range(ctx context.Context, key, start, end string, count int, reverse bool) ([]Entry, error)
	Trim(ctx context.Context, key string, maxLen int) (int64, error)
	Len(ctx context.Context, key string) (int64, error)
	Read(ctx context.Context, key, from string, count int) ([]Entry, error)
	Info(ctx context.Context, key string) (StreamInfo, error)
}

// SearchTransport runs CEL-filtered searches.
type SearchTransport interface {
	Search(ctx context.Context, req SearchRequest) (SearchResult, error)
}

// entriesFromReply decodes an array of [id, [field, value, ...]] pairs.
func entriesFromReply(r any) ([]Entry, error) {
	if r == nil {
		return []Entry{}, nil
	}
	arr, ok := r.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedReply, r)
	}
	out := make([]Entry, 0, len(arr))
	for _, e := range arr {
		entry, err := entryFromReply(e)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func entryFromReply(r any) (Entry, error) {
	pair, ok := r.([]any)
	if !ok || len(pair) != 2 {
		return Entry{}, fmt.Errorf("%w: entry %v", ErrUnexpectedReply, r)
	}
	id, ok := pair[0].(string)
	if !ok {
		return Entry{}, fmt.Errorf("%w: entry id %v", ErrUnexpectedReply, pair[0])
	}
	raw, ok := pair[1].([]any)
	if !ok {
		return Entry{}, fmt.Errorf("%w: entry fields %v", ErrUnexpectedReply, pair[1])
	}
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		s, ok := f.(string)
		if !ok {
			return Entry{}, fmt.Errorf("%w: field %v", ErrUnexpectedReply, f)
		}
		fields = append(fields, s)
	}
	return Entry{ID: id, Fields: fields}, nil
}

func intFromReply(r any) (int64, error) {
	n, ok := r.(int64)
	if !ok {
		return 0, fmt.Errorf("%w: %T", ErrUnexpectedReply, r)
	}
	return n, nil
}

// infoFromReply decodes the flat XINFO STREAM reply.
func infoFromReply(r any) (StreamInfo, error) {
	arr, ok := r.([]any)
	if !ok || len(arr)%2 != 0 {
		return StreamInfo{}, fmt.Errorf("%w: %T", ErrUnexpectedReply, r)
	}
	var info StreamInfo
	for i := 0; i < len(arr); i += 2 {
		name, _ := arr[i].(string)
		v := arr[i+1]
		switch name {
		case "length":
			n, err := intFromReply(v)
			if err != nil {
				return StreamInfo{}, err
			}
			info.Length = n
		case "last-generated-id":
			info.LastGeneratedID, _ = v.(string)
		case "first-entry", "last-entry":
			if v == nil {
				continue
			}
			e, err := entryFromReply(v)
			if err != nil {
				return StreamInfo{}, err
			}
			if name == "first-entry" {
				info.FirstEntry = &e
			} else {
				info.LastEntry = &e
			}
		}
	}
	return info, nil
}
