// Package telemetry writes structured JSONL events about turns, model
// requests and tool executions. Events carry sizes, counts and durations,
// never raw prompt or tool payloads.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultDir is where events.jsonl lives unless configured otherwise.
const DefaultDir = ".agent"

// Config controls event emission.
type Config struct {
	Enabled bool
	Dir     string
}

// Recorder emits one JSON object per line. A nil or disabled Recorder drops
// every event.
type Recorder struct {
	logger *slog.Logger
	closer io.Closer
}

// Open returns a Recorder writing to <cfg.Dir>/events.jsonl through a
// rotating file. A disabled config yields a no-op Recorder.
func Open(cfg Config) (*Recorder, error) {
	if !cfg.Enabled {
		return &Recorder{}, nil
	}
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: mkdir %s: %w", dir, err)
	}
	sink := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "events.jsonl"),
		MaxSize:    50,
		MaxAge:     7,
		MaxBackups: 3,
	}
	r := NewRecorder(sink)
	r.closer = sink
	return r, nil
}

// NewRecorder returns a Recorder writing JSONL to w.
func NewRecorder(w io.Writer) *Recorder {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{ReplaceAttr: eventAttrs})
	return &Recorder{logger: slog.New(h)}
}

// eventAttrs reshapes slog's record into the event layout:
// {"time": RFC3339Nano UTC, "event": name, ...fields}.
func eventAttrs(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.LevelKey:
		return slog.Attr{}
	case slog.MessageKey:
		a.Key = "event"
	case slog.TimeKey:
		return slog.String(slog.TimeKey, a.Value.Time().UTC().Format(time.RFC3339Nano))
	}
	return a
}

// Enabled reports whether events are written anywhere.
func (r *Recorder) Enabled() bool { return r != nil && r.logger != nil }

// Emit writes a single event. Field keys are written in sorted order.
func (r *Recorder) Emit(name string, fields map[string]any) {
	if !r.Enabled() {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	r.logger.LogAttrs(context.Background(), slog.LevelInfo, name, attrs...)
}

// EmitTurn is Emit with the turn ID from ctx added as turn_id.
func (r *Recorder) EmitTurn(ctx context.Context, name string, fields map[string]any) {
	if !r.Enabled() {
		return
	}
	m := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		m[k] = v
	}
	turnID, _ := TurnIDFromContext(ctx)
	m["turn_id"] = turnID
	r.Emit(name, m)
}

// Close releases the underlying file, if any.
func (r *Recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
