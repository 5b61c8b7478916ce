package controllers

import (
	"sort"

	"github.com/rzbill/flostream/internal/streamlog"
)

// Common request/response types for HTTP controllers

// addReq represents a request to append an entry to a stream.
//
// Pairs keeps field order; Fields is accepted for convenience and is
// appended in name order after Pairs. MaxLen nil disables trimming.
type addReq struct {
	Key    string            `json:"key"`
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
	Pairs  []string          `json:"pairs"`
	MaxLen *int              `json:"maxlen"`
}

func (r addReq) fieldList() []streamlog.Field {
	out := make([]streamlog.Field, 0, len(r.Pairs)/2+len(r.Fields))
	for i := 0; i+1 < len(r.Pairs); i += 2 {
		out = append(out, streamlog.Field{Name: r.Pairs[i], Value: r.Pairs[i+1]})
	}
	names := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		out = append(out, streamlog.Field{Name: k, Value: r.Fields[k]})
	}
	return out
}

// addResp is the reply to a successful append.
type addResp struct {
	ID string `json:"id"`
}

// trimReq represents a request to cap a stream's length.
type trimReq struct {
	Key    string `json:"key"`
	MaxLen int    `json:"maxlen"`
}

// trimResp reports how many entries were evicted.
type trimResp struct {
	Deleted int `json:"deleted"`
}

// itemsResp wraps a list of entries.
type itemsResp struct {
	Key   string           `json:"key"`
	Items []streamlog.Item `json:"items"`
}

// commandReq carries a raw argument vector.
type commandReq struct {
	Args []string `json:"args"`
}
