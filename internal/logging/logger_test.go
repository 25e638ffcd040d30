package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/mdsim/internal/md"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"mixed case Trace", "Trace", LevelTrace},
		{"unknown defaults to info", "loud", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level      string
		logAtDebug bool
		logAtTrace bool
	}{
		{"info", false, false},
		{"debug", true, false},
		{"trace", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("debug message")
			if got := strings.Contains(buf.String(), "debug message"); got != tt.logAtDebug {
				t.Errorf("debug message visible = %v, want %v", got, tt.logAtDebug)
			}

			buf.Reset()
			logger.Log(context.Background(), LevelTrace, "trace message")
			if got := strings.Contains(buf.String(), "trace message"); got != tt.logAtTrace {
				t.Errorf("trace message visible = %v, want %v", got, tt.logAtTrace)
			}
			if tt.logAtTrace && !strings.Contains(buf.String(), "level=TRACE") {
				t.Errorf("expected TRACE label, got %q", buf.String())
			}
		})
	}
}

func TestProgressLogger(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressLogger(NewLogger("info", &buf), true)

	p.Progress(300)
	out := buf.String()
	if !strings.Contains(out, "steps completed") || !strings.Contains(out, "step=300") {
		t.Errorf("unexpected progress output %q", out)
	}

	buf.Reset()
	quiet := NewProgressLogger(NewLogger("info", &buf), false)
	quiet.Progress(400)
	if buf.Len() != 0 {
		t.Errorf("non-verbose progress should be hidden at info, got %q", buf.String())
	}
}

func TestFrameLogger(t *testing.T) {
	var buf bytes.Buffer
	f := &FrameLogger{Logger: NewLogger("trace", &buf), Labels: []string{"He"}}

	f.OnFrame(100, md.Coords{{1, 2, 3}})
	if !strings.Contains(buf.String(), "step=100") || !strings.Contains(buf.String(), "atoms=1") {
		t.Errorf("unexpected frame output %q", buf.String())
	}

	buf.Reset()
	quiet := &FrameLogger{Logger: NewLogger("debug", &buf)}
	quiet.OnFrame(100, md.Coords{{1, 2, 3}})
	if buf.Len() != 0 {
		t.Errorf("frames should only be logged at trace, got %q", buf.String())
	}
}

func TestNewEventLog_InfoLevel(t *testing.T) {
	dir := t.TempDir()
	l := NewEventLog(dir, "info")
	if l != nil {
		t.Error("expected nil EventLog at info level")
	}

	l.Log(map[string]any{"event": "ignored"})
	l.Close()

	if _, err := os.Stat(filepath.Join(dir, "events.jsonl")); err == nil {
		t.Error("events.jsonl should not exist at info level")
	}
}

func TestEventLog_Writes(t *testing.T) {
	dir := t.TempDir()
	l := NewEventLog(dir, "debug")
	defer l.Close()

	event := map[string]any{"event": "run_finished", "steps": 100}
	l.Log(event)
	l.Log(map[string]any{"event": "break_detected"})

	if _, ok := event["time"]; ok {
		t.Error("Log must not mutate the caller's map")
	}

	data, err := os.ReadFile(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatalf("failed to read events.jsonl: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if first["event"] != "run_finished" || first["steps"] != 100.0 {
		t.Errorf("unexpected entry %v", first)
	}
	if _, ok := first["time"]; !ok {
		t.Error("expected time field")
	}
}
