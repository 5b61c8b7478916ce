package streamsvc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rzbill/flostream/internal/keyspace"
	"github.com/rzbill/flostream/internal/runtime"
	"github.com/rzbill/flostream/internal/streamlog"
	"github.com/rzbill/flostream/pkg/id"
	logpkg "github.com/rzbill/flostream/pkg/log"
)

var (
	// ErrNoSuchKey is returned by Info for a missing key.
	ErrNoSuchKey = errors.New("no such key")
	// ErrInvalidFilter wraps CEL compile failures.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidArgument is returned for out-of-range numeric arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	errNotBool = errors.New("filter must evaluate to bool")
)

const defaultSearchLimit = 100

// Service provides typed stream operations over the runtime's keyspace.
type Service struct {
	rt      *runtime.Runtime
	logger  logpkg.Logger
	maxScan int
	nowMs   func() int64
}

// New returns a Service using a default logger.
func New(rt *runtime.Runtime) *Service {
	return NewWithLogger(rt, nil)
}

// NewWithLogger returns a Service using the provided logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("streams"))
	}
	return &Service{
		rt:      rt,
		logger:  logger,
		maxScan: rt.Config().Search.MaxScan,
		nowMs:   func() int64 { return time.Now().UnixMilli() },
	}
}

func (s *Service) ks() *keyspace.Keyspace { return s.rt.Keyspace() }

// Add appends an entry to key, creating the stream on first use, and trims
// to req.MaxLen when it is non-negative.
func (s *Service) Add(ctx context.Context, key string, req AddRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pairs := make([]any, 0, len(req.Fields)*2)
	for _, f := range req.Fields {
		pairs = append(pairs, f.Name, f.Value)
	}
	tok := req.ID
	if tok == "" {
		tok = id.TokenAuto
	}
	start := time.Now()
	var added string
	_, err := s.ks().Update(key, true, func(l *streamlog.Log) error {
		v, err := l.Append(tok, pairs...)
		if err != nil {
			return err
		}
		added = v
		if req.MaxLen >= 0 {
			_, err = l.Trim(req.MaxLen)
		}
		return err
	})
	if err != nil {
		return "", err
	}
	s.logger.Debug("streams.add", logpkg.Str("key", key), logpkg.Str("id", added), logpkg.Dur("dur", time.Since(start)))
	return added, nil
}

// Range returns entries between start and end inclusive. count < 0 means no limit.
func (s *Service) Range(ctx context.Context, key, start, end string, count int, reverse bool) ([]streamlog.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var opts []string
	if count >= 0 {
		opts = []string{"count", strconv.Itoa(count)}
	}
	var items []streamlog.Item
	ok, err := s.ks().View(key, func(l *streamlog.Log) error {
		var err error
		items, err = l.Range(start, end, reverse, opts...)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return streamlog.New().Range(start, end, reverse, opts...)
	}
	return items, nil
}

// RevRange is Range with the bounds given high first, descending.
func (s *Service) RevRange(ctx context.Context, key, end, start string, count int) ([]streamlog.Item, error) {
	return s.Range(ctx, key, start, end, count, true)
}

// Trim keeps at most maxLen entries and returns how many were evicted.
func (s *Service) Trim(ctx context.Context, key string, maxLen int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if maxLen < 0 {
		return 0, fmt.Errorf("%w: maxlen must be >= 0", ErrInvalidArgument)
	}
	var removed int
	_, err := s.ks().Update(key, false, func(l *streamlog.Log) error {
		var err error
		removed, err = l.Trim(maxLen)
		return err
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Debug("streams.trim", logpkg.Str("key", key), logpkg.Int("removed", removed))
	}
	return removed, nil
}

// Len returns the number of entries; a missing key has length 0.
func (s *Service) Len(ctx context.Context, key string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	_, err := s.ks().View(key, func(l *streamlog.Log) error {
		n = l.Len()
		return nil
	})
	return n, err
}

// Read returns entries with id >= from, ascending, at most count when count > 0.
func (s *Service) Read(ctx context.Context, key, from string, count int) ([]streamlog.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := id.Parse(from, id.ModeRead, id.Min); err != nil {
		return nil, err
	}
	items := []streamlog.Item{}
	_, err := s.ks().View(key, func(l *streamlog.Log) error {
		var err error
		items, err = l.Read(from)
		return err
	})
	if err != nil {
		return nil, err
	}
	if count > 0 && len(items) > count {
		items = items[:count]
	}
	return items, nil
}

// Info reports length, edges and the last generated id of key.
func (s *Service) Info(ctx context.Context, key string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	info := Info{Key: key}
	ok, err := s.ks().View(key, func(l *streamlog.Log) error {
		info.Length = l.Len()
		if last, ok := l.LastID(); ok {
			info.LastGeneratedID = last.String()
		}
		if e, ok := l.First(); ok {
			it := e.Item()
			info.FirstEntry = &it
		}
		if e, ok := l.Last(); ok {
			it := e.Item()
			info.LastEntry = &it
		}
		return nil
	})
	if err != nil {
		return Info{}, err
	}
	if !ok {
		return Info{}, ErrNoSuchKey
	}
	return info, nil
}

// Search scans key between opts.Start and opts.End and keeps entries the CEL
// filter accepts. At most maxScan entries are examined; Truncated reports
// that the bound stopped the scan.
func (s *Service) Search(ctx context.Context, key string, opts SearchOptions) (SearchResult, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultSearchLimit
	}
	if opts.Start == "" {
		opts.Start = id.TokenMin
	}
	if opts.End == "" {
		opts.End = id.TokenMax
	}
	lo, err := id.Parse(opts.Start, id.ModeRangeStart, id.Min)
	if err != nil {
		return SearchResult{}, err
	}
	hi, err := id.Parse(opts.End, id.ModeRangeEnd, id.Min)
	if err != nil {
		return SearchResult{}, err
	}
	filter, err := newCELFilter(opts.Filter)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	res := SearchResult{Items: []streamlog.Item{}}
	now := s.nowMs()
	_, err = s.ks().View(key, func(l *streamlog.Log) error {
		return l.Scan(lo, hi, opts.Reverse, func(e streamlog.Entry) bool {
			if ctx.Err() != nil {
				return false
			}
			if s.maxScan > 0 && res.Scanned >= s.maxScan {
				res.Truncated = true
				return false
			}
			res.Scanned++
			if filter.Eval(e, now) {
				res.Items = append(res.Items, e.Item())
			}
			return len(res.Items) < opts.Limit
		})
	})
	if err != nil {
		return SearchResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return SearchResult{}, err
	}
	s.logger.Debug("streams.search",
		logpkg.Str("key", key),
		logpkg.Int("scanned", res.Scanned),
		logpkg.Int("matched", len(res.Items)),
		logpkg.Bool("truncated", res.Truncated),
	)
	return res, nil
}
