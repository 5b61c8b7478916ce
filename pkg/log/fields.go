package log

import "time"

// Field is a single structured key/value attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

func Str(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Dur records a duration in its String form.
func Dur(key string, value time.Duration) Field { return Field{Key: key, Value: value.String()} }

func Any(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// Err records err under "error"; a nil error yields an empty string.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: ""}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Component tags the entry with the emitting component.
func Component(name string) Field { return Field{Key: string(ComponentKey), Value: name} }
