package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// StreamLogger writes one line per entry to an io.Writer.
// Loggers derived with WithFields share the writer and its lock.
type StreamLogger struct {
	out    *lockedWriter
	format Format
	level  Level
	fields Fields
	now    func() time.Time
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) write(p []byte) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.w.Write(p)
}

func (lw *lockedWriter) close() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if c, ok := lw.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// NewStreamLogger creates a logger writing to w at or above level
func NewStreamLogger(w io.Writer, format Format, level Level) *StreamLogger {
	return &StreamLogger{
		out:    &lockedWriter{w: w},
		format: format,
		level:  level,
		now:    time.Now,
	}
}

// Debug logs a debug message
func (l *StreamLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *StreamLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *StreamLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *StreamLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger with additional fields
func (l *StreamLogger) WithFields(fields Fields) Logger {
	child := *l
	child.fields = merge(l.fields, fields)
	return &child
}

// Close closes the underlying writer if it is closable
func (l *StreamLogger) Close() error {
	return l.out.close()
}

func (l *StreamLogger) log(level Level, msg string, err error, fields Fields) {
	if level < l.level {
		return
	}

	all := merge(l.fields, fields)
	ts := l.now().UTC()

	var line []byte
	if l.format == FormatJSON {
		entry := make(map[string]interface{}, len(all)+4)
		for k, v := range all {
			entry[k] = v
		}
		entry["timestamp"] = ts.Format(time.RFC3339)
		entry["level"] = level.String()
		entry["message"] = msg
		if err != nil {
			entry["error"] = err.Error()
		}
		data, jsonErr := json.Marshal(entry)
		if jsonErr != nil {
			return
		}
		line = append(data, '\n')
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "%s [%s] %s", ts.Format("2006-01-02T15:04:05.000Z"), level, msg)
		if err != nil {
			fmt.Fprintf(&b, " error=%q", err.Error())
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, all[k])
		}
		b.WriteByte('\n')
		line = []byte(b.String())
	}

	l.out.write(line)
}

func merge(a, b Fields) Fields {
	out := make(Fields, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
