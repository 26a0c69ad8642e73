package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestTrimHandler tests attribute trimming across plain attributes,
// groups, and the handler configuration surface.
func TestTrimHandler(t *testing.T) {
	t.Parallel()

	t.Run("short values pass through unchanged", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(NewTrimHandler(slog.NewTextHandler(&buf, nil), 32))

		logger.Info("message", "path", "/tmp/out.tar")
		if !strings.Contains(buf.String(), "/tmp/out.tar") {
			t.Errorf("expected value to pass through, got %q", buf.String())
		}
		if strings.Contains(buf.String(), TruncationMarker) {
			t.Error("short value must not be truncated")
		}
	})

	t.Run("long values are truncated with a marker", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(NewTrimHandler(slog.NewTextHandler(&buf, nil), 16))

		long := strings.Repeat("x", 100)
		logger.Info("message", "value", long)
		out := buf.String()
		if !strings.Contains(out, TruncationMarker) {
			t.Errorf("expected truncation marker, got %q", out)
		}
		if strings.Contains(out, long) {
			t.Error("full value must not survive truncation")
		}
	})

	t.Run("group attributes are trimmed recursively", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(NewTrimHandler(slog.NewTextHandler(&buf, nil), 16))

		logger.Info("message", slog.Group("req", slog.String("body", strings.Repeat("y", 100))))
		if !strings.Contains(buf.String(), TruncationMarker) {
			t.Errorf("expected group value to be truncated, got %q", buf.String())
		}
	})

	t.Run("WithAttrs trims the attached attributes", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		handler := NewTrimHandler(slog.NewTextHandler(&buf, nil), 16)
		logger := slog.New(handler.WithAttrs([]slog.Attr{slog.String("big", strings.Repeat("z", 100))}))

		logger.Info("message")
		if !strings.Contains(buf.String(), TruncationMarker) {
			t.Errorf("expected WithAttrs value to be truncated, got %q", buf.String())
		}
	})

	t.Run("WithGroup preserves trimming", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		handler := NewTrimHandler(slog.NewTextHandler(&buf, nil), 16)
		logger := slog.New(handler.WithGroup("grp"))

		logger.Info("message", "value", strings.Repeat("w", 100))
		if !strings.Contains(buf.String(), TruncationMarker) {
			t.Errorf("expected grouped record to be trimmed, got %q", buf.String())
		}
	})

	t.Run("non-positive maxLen falls back to the default", func(t *testing.T) {
		t.Parallel()
		h := NewTrimHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), 0)
		if h.maxLen != DefaultMaxValueLen {
			t.Errorf("expected default max length, got %d", h.maxLen)
		}
	})

	t.Run("non-string values are untouched", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(NewTrimHandler(slog.NewTextHandler(&buf, nil), 4))

		logger.Info("message", "count", 123456789)
		if !strings.Contains(buf.String(), "123456789") {
			t.Errorf("expected numeric value intact, got %q", buf.String())
		}
	})
}

// TestNewLogger tests the level selection of the CLI logger.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("default level suppresses debug and info", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Debug("quiet")
		logger.Info("quiet")
		if buf.Len() != 0 {
			t.Errorf("expected no output below warn, got %q", buf.String())
		}
		logger.Warn("loud")
		if !strings.Contains(buf.String(), "loud") {
			t.Errorf("expected warn output, got %q", buf.String())
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Debug("detail")
		if !strings.Contains(buf.String(), "detail") {
			t.Errorf("expected debug output, got %q", buf.String())
		}
	})
}
