package log

import "time"

// Logger is the structured logger every shiplog component writes to.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one key-value pair attached to a log line. Adapters render the
// value according to its dynamic type.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field             { return Field{key, value} }
func Int(key string, value int) Field            { return Field{key, value} }
func Int64(key string, value int64) Field        { return Field{key, value} }
func Uint64(key string, value uint64) Field      { return Field{key, value} }
func Float64(key string, value float64) Field    { return Field{key, value} }
func Bool(key string, value bool) Field          { return Field{key, value} }
func Duration(key string, v time.Duration) Field { return Field{key, v} }
func Time(key string, value time.Time) Field     { return Field{key, value} }
func Any(key string, value any) Field            { return Field{key, value} }

// Err attaches err under the "error" key.
func Err(err error) Field { return Field{"error", err} }
