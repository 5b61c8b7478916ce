package streamlog

import (
	"sort"

	"github.com/rzbill/flostream/pkg/id"
)

// Store is the ordered container behind a Log. Implementations may assume
// Append is only called with IDs greater than every stored ID; the Log
// enforces that before calling.
type Store interface {
	Append(e Entry) error
	Len() int
	// DropOldest removes the n entries with the smallest IDs.
	DropOldest(n int) (int, error)
	// Ascend visits entries with lo <= ID <= hi in ascending order until fn returns false.
	Ascend(lo, hi id.ID, fn func(Entry) bool) error
	// Descend visits entries with lo <= ID <= hi in descending order until fn returns false.
	Descend(lo, hi id.ID, fn func(Entry) bool) error
	Close() error
}

// memStore keeps entries in a slice sorted by ID.
type memStore struct {
	entries []Entry
}

// NewMemStore returns the default slice-backed store.
func NewMemStore() Store { return &memStore{} }

func (s *memStore) Append(e Entry) error {
	s.entries = append(s.entries, e)
	return nil
}

func (s *memStore) Len() int { return len(s.entries) }

func (s *memStore) DropOldest(n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	if n > len(s.entries) {
		n = len(s.entries)
	}
	// copy so the evicted prefix can be collected
	s.entries = append([]Entry(nil), s.entries[n:]...)
	return n, nil
}

func (s *memStore) Ascend(lo, hi id.ID, fn func(Entry) bool) error {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].ID.Compare(lo) >= 0 })
	for ; i < len(s.entries); i++ {
		e := s.entries[i]
		if e.ID.Compare(hi) > 0 || !fn(e) {
			break
		}
	}
	return nil
}

func (s *memStore) Descend(lo, hi id.ID, fn func(Entry) bool) error {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].ID.Compare(hi) > 0 }) - 1
	for ; i >= 0; i-- {
		e := s.entries[i]
		if e.ID.Compare(lo) < 0 || !fn(e) {
			break
		}
	}
	return nil
}

func (s *memStore) Close() error {
	s.entries = nil
	return nil
}
