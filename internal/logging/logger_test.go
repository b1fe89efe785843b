package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPrettyHandlerFormatsRecord(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	handler := newPrettyHandler(&buf, levelVar, false)
	logger := slog.New(handler).With(String("component", "dispatcher"))

	logger.Info("worker started", String("video_id", "dQw4w9WgXcQ"), Int("pid", 4242))

	line := buf.String()
	if !strings.Contains(line, "INFO dispatcher: worker started") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "video_id=dQw4w9WgXcQ") || !strings.Contains(line, "pid=4242") {
		t.Fatalf("missing attrs in line: %q", line)
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	handler := newPrettyHandler(&buf, levelVar, false)

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be disabled at warn level")
	}
	slog.New(handler).Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPrettyHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	handler := newPrettyHandler(&buf, new(slog.LevelVar), false)
	slog.New(handler).Info("probe failed", Error(errors.New("permission denied")))
	if !strings.Contains(buf.String(), `error="permission denied"`) {
		t.Fatalf("expected quoted error value, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestFormatValueTime(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	if got := formatValue(slog.TimeValue(ts)); got != "2026-03-14T09:26:53Z" {
		t.Fatalf("unexpected time format: %q", got)
	}
}
