package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// TextFormatter renders "time LEVEL message key=value ..." lines with keys sorted.
type TextFormatter struct {
	DisableTimestamp bool
	ShowCaller       bool
}

func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var b bytes.Buffer
	if !f.DisableTimestamp {
		b.WriteString(entry.Timestamp.Format(timestampFormat))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", entry.Level.String(), entry.Message)
	for _, k := range sortedKeys(entry.Fields) {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(quoteIfNeeded(textValue(entry.Fields[k])))
	}
	if f.ShowCaller && entry.Caller != "" {
		b.WriteString(" caller=")
		b.WriteString(entry.Caller)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// JSONFormatter renders one JSON object per entry. Fields are flattened into
// the object; reserved keys win over fields with the same name.
type JSONFormatter struct {
	ShowCaller bool
}

func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	obj := make(map[string]interface{}, len(entry.Fields)+4)
	for k, v := range entry.Fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		obj[k] = v
	}
	obj["time"] = entry.Timestamp.Format(timestampFormat)
	obj["level"] = entry.Level.String()
	obj["msg"] = entry.Message
	if f.ShowCaller && entry.Caller != "" {
		obj["caller"] = entry.Caller
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func sortedKeys(m Fields) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func textValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case error:
		return t.Error()
	case time.Duration:
		return t.String()
	case fmt.Stringer:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
