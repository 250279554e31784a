package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"msg":"chunk"`},
		{"JSON", `"msg":"chunk"`},
		{"text", "msg=chunk"},
		{"pretty", "INFO  chunk"},
		{"", "INFO  chunk"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		log, err := Setup(&buf, tc.format, "info")
		if err != nil {
			t.Fatalf("Setup(%q): %v", tc.format, err)
		}
		log.Info("chunk", "tag", "VRTX")
		if !strings.Contains(buf.String(), tc.want) {
			t.Errorf("Setup(%q) output %q does not contain %q", tc.format, buf.String(), tc.want)
		}
	}
}

func TestSetupRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	if _, err := Setup(&bytes.Buffer{}, "xml", "info"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestSetupLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log, err := Setup(&buf, "json", " DEBUG ")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	log.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug record missing at debug level, got: %s", buf.String())
	}
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("should not appear")
	log.Debug("also should not appear")
	if buf.Len() > 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}

	log.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("expected warn message in output, got: %s", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := Discard().With("component", "object").WithGroup("g")
	log.Error("dropped")
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelInfo)
	ctx := WithContext(context.Background(), log)
	FromContext(ctx).Info("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Fatalf("logger not carried by context, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPrettyNoColorForBuffers(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Info("plain", "n", 3)
	if strings.Contains(buf.String(), "\033[") {
		t.Fatalf("unexpected escape codes writing to a buffer: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "plain n=3") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestPrettyHandlerGroupsAndAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	if h.WithGroup("") != h {
		t.Fatal("WithGroup(\"\") should return the same handler")
	}

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("mesh", "cube")}).WithGroup("a").WithGroup("b"))
	logger.Info("nested", "key", "val")

	out := buf.String()
	if !strings.Contains(out, "mesh=cube") {
		t.Fatalf("expected handler attr, got: %s", out)
	}
	if !strings.Contains(out, "a.b.key=val") {
		t.Fatalf("expected 'a.b.key=val', got: %s", out)
	}
}

func TestPrettyQuoting(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Info("test", "path", "my mesh.sbm", "tag", "OLST")

	out := buf.String()
	if !strings.Contains(out, `path="my mesh.sbm"`) {
		t.Fatalf("expected quoted value, got: %s", out)
	}
	if !strings.Contains(out, "tag=OLST") {
		t.Fatalf("expected unquoted value, got: %s", out)
	}

	for in, want := range map[string]bool{"simple": false, "has space": true, "tab\t": true, `q"`: true, "": false} {
		if got := needsQuoting(in); got != want {
			t.Errorf("needsQuoting(%q): got %v, want %v", in, got, want)
		}
	}
}
