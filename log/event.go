package log

import (
	"bytes"
	"strconv"
	"time"
)

// LogEvent accumulates one structured log line. Events are pooled by the
// owning logger; all field methods are nil-safe so call sites never need to
// check whether the level is enabled.
type LogEvent struct {
	buf    bytes.Buffer
	level  Level
	logger Logger
}

func newEvent(logger Logger) *LogEvent {
	return &LogEvent{logger: logger}
}

// Reset clears the event buffer for reuse from the pool.
func (e *LogEvent) Reset() {
	e.buf.Reset()
	e.level = TraceLevel
}

func (e *LogEvent) appendKey(key string) {
	if e.buf.Len() == 0 {
		e.buf.WriteByte('{')
	} else {
		e.buf.WriteByte(',')
	}
	e.buf.WriteString(strconv.Quote(key))
	e.buf.WriteByte(':')
}

// Str appends a string field.
func (e *LogEvent) Str(key, value string) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.Quote(value))
	return e
}

// Int appends an integer field.
func (e *LogEvent) Int(key string, value int) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.Itoa(value))
	return e
}

// Uint appends an unsigned integer field.
func (e *LogEvent) Uint(key string, value uint64) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.FormatUint(value, 10))
	return e
}

// Float64 appends a floating point field.
func (e *LogEvent) Float64(key string, value float64) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
	return e
}

// Bool appends a boolean field.
func (e *LogEvent) Bool(key string, value bool) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.FormatBool(value))
	return e
}

// Err appends an "error" field. A nil error is skipped entirely.
func (e *LogEvent) Err(err error) *LogEvent {
	if e == nil || err == nil {
		return e
	}
	return e.Str("error", err.Error())
}

// Time appends a timestamp field in RFC3339 format with millisecond
// precision.
func (e *LogEvent) Time(key string, t *time.Time) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteByte('"')
	e.buf.WriteString(t.Format("2006-01-02T15:04:05.000Z07:00"))
	e.buf.WriteByte('"')
	return e
}

// Msg finalizes the event with the given message and hands it to the owning
// logger for output. The event must not be used afterwards.
func (e *LogEvent) Msg(msg string) {
	if e == nil {
		return
	}
	e.appendKey("msg")
	e.buf.WriteString(strconv.Quote(msg))
	e.buf.WriteString("}\n")
	e.logger.OnEventEnd(e)
}
