package streamsvc

import "github.com/rzbill/flostream/internal/streamlog"

// AddRequest describes one append. MaxLen < 0 disables trimming.
type AddRequest struct {
	ID     string
	Fields []streamlog.Field
	MaxLen int
}

// SearchOptions control a filtered scan over a stream.
type SearchOptions struct {
	Start   string
	End     string
	Reverse bool
	Limit   int
	Filter  string
}

// SearchResult carries the matches and how much of the stream was examined.
type SearchResult struct {
	Items     []streamlog.Item `json:"items"`
	Scanned   int              `json:"scanned"`
	Truncated bool             `json:"truncated"`
}

// Info summarises a stream.
type Info struct {
	Key             string          `json:"key"`
	Length          int             `json:"length"`
	LastGeneratedID string          `json:"lastGeneratedId"`
	FirstEntry      *streamlog.Item `json:"firstEntry"`
	LastEntry       *streamlog.Item `json:"lastEntry"`
}
