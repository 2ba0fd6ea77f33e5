package log

import "time"

// Logger is the logging surface shared by the coordinator, the engines and
// the CLI. ZerologAdapter writes entries, NoopLogger drops them.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one key-value pair of an entry. Build fields with the
// constructors below; the adapter picks a typed zerolog encoder from the
// value's type and falls back to reflection for anything else.
type Field struct {
	Key   string
	Value interface{}
}

// String, Int and Bool wrap plain values.
func String(key, v string) Field   { return Field{Key: key, Value: v} }
func Int(key string, v int) Field   { return Field{Key: key, Value: v} }
func Bool(key string, v bool) Field { return Field{Key: key, Value: v} }

// Uint64 carries session ids and relay counters.
func Uint64(key string, v uint64) Field { return Field{Key: key, Value: v} }

// Float32 carries a frequency in Hz, such as the last pitch of a session.
func Float32(key string, hz float32) Field { return Field{Key: key, Value: hz} }

// Duration carries poll intervals, delays and timeouts.
func Duration(key string, d time.Duration) Field { return Field{Key: key, Value: d} }

// Err attaches err under the "error" key.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Stringer records v.String() at the time of the call, so a RunState or a
// policy is logged as it was, not as it is when the entry is written.
func Stringer(key string, v interface{ String() string }) Field {
	return Field{Key: key, Value: v.String()}
}
