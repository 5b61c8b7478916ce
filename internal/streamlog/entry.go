package streamlog

import (
	"fmt"
	"strconv"

	"github.com/rzbill/flostream/pkg/id"
)

// Field is one name/value pair of an entry.
type Field struct {
	Name  string
	Value string
}

// Entry is a stored stream record.
type Entry struct {
	ID     id.ID
	Fields []Field
}

// Item is the query representation of an entry: canonical id string and
// fields flattened as name, value, name, value, ...
type Item struct {
	ID     string   `json:"id"`
	Fields []string `json:"fields"`
}

// Map returns the fields as a map.
func (e Entry) Map() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Name] = f.Value
	}
	return m
}

// Item returns the query representation of e.
func (e Entry) Item() Item {
	flat := make([]string, 0, len(e.Fields)*2)
	for _, f := range e.Fields {
		flat = append(flat, f.Name, f.Value)
	}
	return Item{ID: e.ID.String(), Fields: flat}
}

// fieldsFromPairs coerces an alternating name/value list to text. Names are
// unique: a repeated name keeps its first position and takes the last value.
func fieldsFromPairs(pairs []any) ([]Field, error) {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return nil, ErrFieldCount
	}
	out := make([]Field, 0, len(pairs)/2)
	pos := make(map[string]int, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, value := toText(pairs[i]), toText(pairs[i+1])
		if j, ok := pos[name]; ok {
			out[j].Value = value
			continue
		}
		pos[name] = len(out)
		out = append(out, Field{Name: name, Value: value})
	}
	return out, nil
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
