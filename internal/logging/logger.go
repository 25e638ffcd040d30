// Package logging provides the leveled logger used by the mdsim commands and
// the sinks that report simulation progress through it.
//   - NewLogger builds a slog.Logger for stderr
//   - ProgressLogger and FrameLogger attach it to a running simulation
//   - EventLog appends run events to a JSONL file in the data directory
package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/san-kum/mdsim/internal/md"
)

// LevelTrace is a custom slog level below Debug. At this level every
// recorded frame is logged with its coordinates.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps "info", "debug" or "trace" (case-insensitive) to a level.
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled text logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ProgressLogger reports recorded steps as "steps completed" records. When
// Verbose is false the records are logged at debug level.
type ProgressLogger struct {
	Logger  *slog.Logger
	Verbose bool
}

func NewProgressLogger(logger *slog.Logger, verbose bool) *ProgressLogger {
	return &ProgressLogger{Logger: logger, Verbose: verbose}
}

func (p *ProgressLogger) Progress(step int) {
	level := slog.LevelDebug
	if p.Verbose {
		level = slog.LevelInfo
	}
	p.Logger.Log(context.Background(), level, "steps completed", "step", step)
}

// FrameLogger logs every recorded frame at trace level.
type FrameLogger struct {
	Logger *slog.Logger
	Labels []string
}

func (f *FrameLogger) OnFrame(step int, pos md.Coords) {
	ctx := context.Background()
	if !f.Logger.Enabled(ctx, LevelTrace) {
		return
	}
	f.Logger.Log(ctx, LevelTrace, "frame", "step", step, "atoms", len(pos), "labels", f.Labels, "positions", pos)
}

// EventLog writes structured run events to a JSONL file. It is safe for
// concurrent use. A nil EventLog is valid; all methods are no-ops on a nil
// receiver.
type EventLog struct {
	mu   sync.Mutex
	file *os.File
}

// NewEventLog opens dir/events.jsonl for append. At info level it returns nil
// and no file is created. It also returns nil if the file cannot be opened.
func NewEventLog(dir string, level string) *EventLog {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, "events.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &EventLog{file: f}
}

// Log writes event as one JSON line with a "time" field added. The caller's
// map is not mutated.
func (l *EventLog) Log(event map[string]any) {
	if l == nil || l.file == nil {
		return
	}

	entry := make(map[string]any, len(event)+1)
	for k, v := range event {
		entry[k] = v
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = l.file.Write(data)
}

func (l *EventLog) Close() {
	if l == nil || l.file == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.file.Close()
	l.file = nil
}
