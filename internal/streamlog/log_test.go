package streamlog

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"testing"
	"time"

	pebblestore "github.com/rzbill/flostream/internal/storage/pebble"
	"github.com/rzbill/flostream/pkg/id"
)

type backend struct {
	name string
	open func(t *testing.T) *Log
}

func backends() []backend {
	return []backend{
		{name: "memory", open: func(t *testing.T) *Log { return New() }},
		{name: "pebble", open: func(t *testing.T) *Log {
			t.Helper()
			db, err := pebblestore.Open(pebblestore.Options{})
			if err != nil {
				t.Fatalf("open pebble: %v", err)
			}
			t.Cleanup(func() { _ = db.Close() })
			s, err := NewPebbleStore(db, "mock-redis-test:xrange")
			if err != nil {
				t.Fatalf("pebble store: %v", err)
			}
			return NewWithStore(s)
		}},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, open func(t *testing.T) *Log)) {
	for _, b := range backends() {
		b := b
		t.Run(b.name, func(t *testing.T) { fn(t, b.open) })
	}
}

// seedSix appends the six-entry fixture used by the range tests.
func seedSix(t *testing.T, l *Log) {
	t.Helper()
	ids := []string{"1234567891234-0", "1234567891245-0", "1234567891245-1", "1234567891278-0", "1234567891278-1", "1234567891299-0"}
	for i, v := range ids {
		if _, err := l.Append(v, fmt.Sprintf("key%d", i+1), fmt.Sprintf("value%d", i+1)); err != nil {
			t.Fatalf("append %s: %v", v, err)
		}
	}
}

func itemIDs(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestAppendAutoIDUsesTimestamp(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(t *testing.T) *Log) {
		l := open(t)
		got, err := l.Append("*", "key", "value")
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if !regexp.MustCompile(`^\d+-0$`).MatchString(got) {
			t.Fatalf("unexpected auto id %q", got)
		}
	})
}

func TestAppendExplicitID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(t *testing.T) *Log) {
		l := open(t)
		got, err := l.Append("1234567891234-2", "key", "value")
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if got != "1234567891234-2" {
			t.Fatalf("got %q", got)
		}
		last, ok := l.LastID()
		if !ok || last.String() != got {
			t.Fatalf("last id %v %v", last, ok)
		}
	})
}

func TestAppendRejectsSmallerID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(t *testing.T) *Log) {
		l := open(t)
		if _, err := l.Append("1234567891234-0", "key", "value"); err != nil {
			t.Fatalf("append: %v", err)
		}
		_, err := l.Append("1234567891233-0", "key", "value")
		if !errors.Is(err, id.ErrNotMonotonic) {
			t.Fatalf("expected ErrNotMonotonic, got %v", err)
		}
		if l.Len() != 1 {
			t.Fatalf("failed append must not mutate, len=%d", l.Len())
		}
		if last, _ := l.LastID(); last.String() != "1234567891234-0" {
			t.Fatalf("last id changed to %s", last)
		}
	})
}

func TestAppendAutoAfterFutureExplicitID(t *testing.T) {
	id.NowMs = func() int64 { return 1000 }
	t.Cleanup(func() { id.NowMs = func() int64 { return time.Now().UnixMilli() } })
	l := New()
	if _, err := l.Append("5000-7", "a", "b"); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := l.Append("*", "a", "b")
	if err != nil {
		t.Fatalf("append auto: %v", err)
	}
	if got != "5000-8" {
		t.Fatalf("expected floor-relative id, got %s", got)
	}
}

func TestAppendCoercesFields(t *testing.T) {
	l := New()
	if _, err := l.Append("1-1", "n", 42, []byte("raw"), 1.5, true, id.ID{Ms: 3, Seq: 4}); err != nil {
		t.Fatalf("append: %v", err)
	}
	items, err := l.Range("-", "+", false)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	want := []string{"n", "42", "raw", "1.5", "true", "3-4"}
	if !reflect.DeepEqual(items[0].Fields, want) {
		t.Fatalf("fields %v want %v", items[0].Fields, want)
	}
}

func TestAppendFieldCount(t *testing.T) {
	l := New()
	if _, err := l.Append("*", "only-name"); !errors.Is(err, ErrFieldCount) {
		t.Fatalf("expected ErrFieldCount, got %v", err)
	}
	if _, err := l.Append("*"); !errors.Is(err, ErrFieldCount) {
		t.Fatalf("expected ErrFieldCount for empty list, got %v", err)
	}
	if _, ok := l.LastID(); ok {
		t.Fatalf("no id should be recorded")
	}
}

func TestRangeEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(t *testing.T) *Log) {
		items, err := open(t).Range("-", "+", false)
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		if len(items) != 0 {
			t.Fatalf("expected empty, got %v", items)
		}
	})
}

func TestRangeSingleEntry(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(t *testing.T) *Log) {
		l := open(t)
		if _, err := l.Append("1234567891234-0", "key", "value"); err != nil {
			t.Fatalf("append: %v", err)
		}
		items, err := l.Range("-", "+", false)
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		want := []Item{{ID: "1234567891234-0", Fields: []string{"key", "value"}}}
		if !reflect.DeepEqual(items, want) {
			t.Fatalf("got %v want %v", items, want)
		}
	})
}

func TestRangeBounds(t *testing.T) {
	cases := []struct {
		name          string
		start, finish string
		want          []string
	}{
		{"full", "-", "+", []string{"1234567891234-0", "1234567891245-0", "1234567891245-1", "1234567891278-0", "1234567891278-1", "1234567891299-0"}},
		{"lower", "1234567891239-0", "+", []string{"1234567891245-0", "1234567891245-1", "1234567891278-0", "1234567891278-1", "1234567891299-0"}},
		{"upper", "-", "1234567891285-0", []string{"1234567891234-0", "1234567891245-0", "1234567891245-1", "1234567891278-0", "1234567891278-1"}},
		{"both", "1234567891239-0", "1234567891285-0", []string{"1234567891245-0", "1234567891245-1", "1234567891278-0", "1234567891278-1"}},
		{"sequence numbers", "1234567891245-1", "1234567891278-0", []string{"1234567891245-1", "1234567891278-0"}},
		{"partial lower", "1234567891245", "+", []string{"1234567891245-0", "1234567891245-1", "1234567891278-0", "1234567891278-1", "1234567891299-0"}},
		{"partial upper", "-", "1234567891278", []string{"1234567891234-0", "1234567891245-0", "1234567891245-1", "1234567891278-0", "1234567891278-1"}},
		{"partial both", "1234567891245", "1234567891278", []string{"1234567891245-0", "1234567891245-1", "1234567891278-0", "1234567891278-1"}},
		{"inverted", "1234567891299-0", "1234567891234-0", []string{}},
	}
	forEachBackend(t, func(t *testing.T, open func(t *testing.T) *Log) {
		l := open(t)
		seedSix(t, l)
		for _, c := range cases {
			items, err := l.Range(c.start, c.finish, false)
			if err != nil {
				t.Fatalf("%s: %v", c.name, err)
			}
			if got := itemIDs(items); !reflect.DeepEqual(got, c.want) {
				t.Fatalf("%s: got %v want %v", c.name, got, c.want)
			}
		}
	})
}

func TestRangeFieldsFollowEntries(t *testing.T) {
	l := New()
	seedSix(t, l)
	items, err := l.Range("1234567891245-1", "1234567891278-0", false)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	want := []Item{
		{ID: "1234567891245-1", Fields: []string{"key3", "value3"}},
		{ID: "1234567891278-0", Fields: []string{"key4", "value4"}},
	}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("got %v want %v", items, want)
	}
}

func TestRangeCountAndReverse(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(t *testing.T) *Log) {
		l := open(t)
		seedSix(t, l)
		for _, key := range []string{"COUNT", "count", "Count"} {
			items, err := l.Range("-", "+", false, key, "2")
			if err != nil {
				t.Fatalf("range %s: %v", key, err)
			}
			if got := itemIDs(items); !reflect.DeepEqual(got, []string{"1234567891234-0", "1234567891245-0"}) {
				t.Fatalf("%s: got %v", key, got)
			}
		}
		items, err := l.Range("-", "+", true, "count", "2")
		if err != nil {
			t.Fatalf("reverse: %v", err)
		}
		if got := itemIDs(items); !reflect.DeepEqual(got, []string{"1234567891299-0", "1234567891278-1"}) {
			t.Fatalf("reverse count: got %v", got)
		}
		items, err = l.Range("-", "+", false, "count", "0")
		if err != nil || len(items) != 0 {
			t.Fatalf("count 0: %v %v", items, err)
		}
		items, err = l.Range("-", "+", false, "count", "100")
		if err != nil || len(items) != 6 {
			t.Fatalf("count larger than log: %d %v", len(items), err)
		}
	})
}

func TestRangeOptionErrors(t *testing.T) {
	l := New()
	seedSix(t, l)
	if _, err := l.Range("-", "+", false, "count"); !errors.Is(err, ErrOptionSyntax) {
		t.Fatalf("odd options: %v", err)
	}
	if _, err := l.Range("-", "+", false, "limit", "2"); !errors.Is(err, ErrOptionSyntax) {
		t.Fatalf("unknown option: %v", err)
	}
	if _, err := l.Range("-", "+", false, "count", "X"); !errors.Is(err, ErrOptionValue) {
		t.Fatalf("non-integer count: %v", err)
	}
	if _, err := l.Range("-", "+", false, "count", "-1"); !errors.Is(err, ErrOptionValue) {
		t.Fatalf("negative count: %v", err)
	}
	if _, err := l.Range("X", "+", false); !errors.Is(err, id.ErrInvalidID) {
		t.Fatalf("invalid start: %v", err)
	}
	if _, err := l.Range("-", "-", false); !errors.Is(err, id.ErrInvalidID) {
		t.Fatalf("'-' as finish: %v", err)
	}
}

func TestTrim(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(t *testing.T) *Log) {
		l := open(t)
		for i := 1; i <= 10; i++ {
			if _, err := l.Append(fmt.Sprintf("%d-0", i), "n", i); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
		n, err := l.Trim(7)
		if err != nil || n != 3 {
			t.Fatalf("trim 7: n=%d err=%v", n, err)
		}
		n, err = l.Trim(7)
		if err != nil || n != 0 {
			t.Fatalf("second trim: n=%d err=%v", n, err)
		}
		items, _ := l.Range("-", "+", false)
		if items[0].ID != "4-0" || len(items) != 7 {
			t.Fatalf("unexpected survivors %v", itemIDs(items))
		}
		if n, _ := l.Trim(0); n != 7 || l.Len() != 0 {
			t.Fatalf("trim 0 should evict everything: n=%d len=%d", n, l.Len())
		}
		if last, _ := l.LastID(); last.String() != "10-0" {
			t.Fatalf("trim must not move last id, got %s", last)
		}
		if _, err := l.Append("10-0", "n", 1); !errors.Is(err, id.ErrNotMonotonic) {
			t.Fatalf("append at old max after full trim should fail, got %v", err)
		}
	})
}

func TestReadInclusiveAtFloor(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(t *testing.T) *Log) {
		l := open(t)
		for _, v := range []string{"5-0", "7-0", "9-0"} {
			if _, err := l.Append(v, "f", "v"); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
		items, err := l.Read("7-0")
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got := itemIDs(items); !reflect.DeepEqual(got, []string{"7-0", "9-0"}) {
			t.Fatalf("got %v", got)
		}
		items, _ = l.Read("6")
		if got := itemIDs(items); !reflect.DeepEqual(got, []string{"7-0", "9-0"}) {
			t.Fatalf("partial read: got %v", got)
		}
		for _, tok := range []string{"bogus", "-", "+"} {
			if _, err := l.Read(tok); !errors.Is(err, id.ErrInvalidID) {
				t.Fatalf("read %q: expected invalid id, got %v", tok, err)
			}
		}
	})
}

func TestAppendRepeatedFieldName(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(t *testing.T) *Log) {
		l := open(t)
		if _, err := l.Append("1-1", "a", "1", "b", "2", "a", "3"); err != nil {
			t.Fatalf("append: %v", err)
		}
		items, err := l.Range("-", "+", false)
		if err != nil || len(items) != 1 {
			t.Fatalf("range: %v %v", items, err)
		}
		if want := []string{"a", "3", "b", "2"}; !reflect.DeepEqual(items[0].Fields, want) {
			t.Fatalf("fields = %v, want %v", items[0].Fields, want)
		}
	})
}

func TestFirstLast(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(t *testing.T) *Log) {
		l := open(t)
		if _, ok := l.First(); ok {
			t.Fatalf("empty log has no first entry")
		}
		seedSix(t, l)
		first, _ := l.First()
		last, _ := l.Last()
		if first.ID.String() != "1234567891234-0" || last.ID.String() != "1234567891299-0" {
			t.Fatalf("first=%s last=%s", first.ID, last.ID)
		}
		if last.Map()["key6"] != "value6" {
			t.Fatalf("unexpected last fields %v", last.Fields)
		}
	})
}
