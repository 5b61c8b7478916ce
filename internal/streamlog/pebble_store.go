package streamlog

import (
	"context"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/rzbill/flostream/internal/storage/pebble"
	"github.com/rzbill/flostream/pkg/id"
)

// pebbleStore keeps one stream's entries in a shared Pebble instance.
type pebbleStore struct {
	db     *pebblestore.DB
	stream string
	prefix []byte
	count  int
}

// NewPebbleStore opens a store for stream on db. Entries already present
// under the stream's prefix are counted so Len stays exact.
func NewPebbleStore(db *pebblestore.DB, stream string) (Store, error) {
	s := &pebbleStore{db: db, stream: stream, prefix: KeyEntryPrefix(stream)}
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: s.prefix, UpperBound: prefixEnd(s.prefix)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	for ok := iter.First(); ok; ok = iter.Next() {
		s.count++
	}
	return s, nil
}

func (s *pebbleStore) Append(e Entry) error {
	val, err := EncodeRecord(e.Fields)
	if err != nil {
		return err
	}
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(KeyEntry(s.stream, e.ID), val, nil); err != nil {
		return err
	}
	if err := s.db.CommitBatch(context.Background(), b); err != nil {
		return err
	}
	s.count++
	return nil
}

func (s *pebbleStore) Len() int { return s.count }

func (s *pebbleStore) DropOldest(n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: s.prefix, UpperBound: prefixEnd(s.prefix)})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	b := s.db.NewBatch()
	defer b.Close()
	deleted := 0
	for ok := iter.First(); ok && deleted < n; ok = iter.Next() {
		if err := b.Delete(iter.Key(), nil); err != nil {
			return 0, err
		}
		deleted++
	}
	if deleted == 0 {
		return 0, nil
	}
	if err := s.db.CommitBatch(context.Background(), b); err != nil {
		return 0, err
	}
	s.count -= deleted
	return deleted, nil
}

func (s *pebbleStore) bounds(lo, hi id.ID) *pebble.IterOptions {
	upper := append(KeyEntry(s.stream, hi), 0x00)
	return &pebble.IterOptions{LowerBound: KeyEntry(s.stream, lo), UpperBound: upper}
}

func (s *pebbleStore) decode(iter *pebble.Iterator) (Entry, error) {
	key := iter.Key()
	v, ok := id.FromBytes(key[len(s.prefix):])
	if !ok {
		return Entry{}, errCorruptRecord
	}
	fields, err := DecodeRecord(iter.Value())
	if err != nil {
		return Entry{}, err
	}
	return Entry{ID: v, Fields: fields}, nil
}

func (s *pebbleStore) Ascend(lo, hi id.ID, fn func(Entry) bool) error {
	if lo.Compare(hi) > 0 {
		return nil
	}
	iter, err := s.db.NewIter(s.bounds(lo, hi))
	if err != nil {
		return err
	}
	defer iter.Close()
	for ok := iter.First(); ok; ok = iter.Next() {
		e, err := s.decode(iter)
		if err != nil {
			return err
		}
		if !fn(e) {
			break
		}
	}
	return iter.Error()
}

func (s *pebbleStore) Descend(lo, hi id.ID, fn func(Entry) bool) error {
	if lo.Compare(hi) > 0 {
		return nil
	}
	iter, err := s.db.NewIter(s.bounds(lo, hi))
	if err != nil {
		return err
	}
	defer iter.Close()
	for ok := iter.Last(); ok; ok = iter.Prev() {
		e, err := s.decode(iter)
		if err != nil {
			return err
		}
		if !fn(e) {
			break
		}
	}
	return iter.Error()
}

// Close drops every key of the stream. The shared DB stays open.
func (s *pebbleStore) Close() error {
	if err := s.db.DeleteRange(s.prefix, prefixEnd(s.prefix)); err != nil {
		return err
	}
	s.count = 0
	return nil
}
