package streamlog

import (
	"errors"
	"sync"

	"github.com/rzbill/flostream/pkg/id"
)

var (
	ErrOptionSyntax = errors.New("syntax error")
	ErrOptionValue  = errors.New("value is not an integer or out of range")
	// ErrFieldCount is returned when an append receives no pairs or an odd list.
	ErrFieldCount = errors.New("wrong number of fields")
)

// Log is an append-only stream of entries ordered by ID.
type Log struct {
	mu      sync.RWMutex
	store   Store
	lastID  id.ID
	hasLast bool
}

// New returns an empty Log backed by the slice store.
func New() *Log { return NewWithStore(NewMemStore()) }

// NewWithStore returns an empty Log over s.
func NewWithStore(s Store) *Log { return &Log{store: s} }

// Append stores a new entry and returns its canonical id. tok is "*" or an
// explicit "<ms>[-<seq>]" that must exceed the last appended id. fieldValues
// alternate name, value and are coerced to text.
func (l *Log) Append(tok string, fieldValues ...any) (string, error) {
	fields, err := fieldsFromPairs(fieldValues)
	if err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := id.Parse(tok, id.ModeGenerate, l.lastID)
	if err != nil {
		return "", err
	}
	if err := l.store.Append(Entry{ID: next, Fields: fields}); err != nil {
		return "", err
	}
	l.lastID, l.hasLast = next, true
	return next.String(), nil
}

// Trim evicts the oldest entries so that at most keep remain and returns how
// many were removed. The last id is left untouched.
func (l *Log) Trim(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.store.Len()
	if n <= keep {
		return 0, nil
	}
	return l.store.DropOldest(n - keep)
}

// Range returns entries with start <= id <= finish. When reversed the result
// is descending. opts is a flat key/value list; only "count" is accepted.
func (l *Log) Range(start, finish string, reversed bool, opts ...string) ([]Item, error) {
	o, err := parseOptions(opts, optCount)
	if err != nil {
		return nil, err
	}
	limit, err := o.count()
	if err != nil {
		return nil, err
	}
	lo, err := id.Parse(start, id.ModeRangeStart, id.Min)
	if err != nil {
		return nil, err
	}
	hi, err := id.Parse(finish, id.ModeRangeEnd, id.Min)
	if err != nil {
		return nil, err
	}

	items := []Item{}
	if limit == 0 {
		return items, nil
	}
	err = l.Scan(lo, hi, reversed, func(e Entry) bool {
		items = append(items, e.Item())
		return limit < 0 || len(items) < limit
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Read returns every entry whose id is greater than or equal to tok, ascending.
// tok is a bare "<ms>[-<seq>]"; "-" and "+" are invalid here.
func (l *Log) Read(tok string) ([]Item, error) {
	from, err := id.Parse(tok, id.ModeRead, id.Min)
	if err != nil {
		return nil, err
	}
	items := []Item{}
	err = l.Scan(from, id.Max, false, func(e Entry) bool {
		items = append(items, e.Item())
		return true
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Scan visits entries in [lo, hi] under a read lock until fn returns false.
func (l *Log) Scan(lo, hi id.ID, reversed bool, fn func(Entry) bool) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if reversed {
		return l.store.Descend(lo, hi, fn)
	}
	return l.store.Ascend(lo, hi, fn)
}

// Len returns the number of stored entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Len()
}

// LastID returns the most recently appended id; false if nothing was ever appended.
func (l *Log) LastID() (id.ID, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastID, l.hasLast
}

// First returns the oldest stored entry.
func (l *Log) First() (Entry, bool) { return l.edge(false) }

// Last returns the newest stored entry.
func (l *Log) Last() (Entry, bool) { return l.edge(true) }

func (l *Log) edge(reversed bool) (Entry, bool) {
	var out Entry
	found := false
	_ = l.Scan(id.Min, id.Max, reversed, func(e Entry) bool {
		out, found = e, true
		return false
	})
	return out, found
}

// Close releases the underlying store.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Close()
}
