package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for input, expected := range testCases {
		if got := ParseLevel(input); got != expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", input, expected, got)
		}
	}
}

func TestConfigureWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l := ConfigureWriter(&buf, "debug", "json")
	l.Debug("refill started", "kind", "random")

	out := buf.String()
	if !strings.Contains(out, `"msg":"refill started"`) {
		t.Errorf("Expected JSON output, got %s", out)
	}
	if Get() != l {
		t.Error("Configured logger should become the default")
	}
}

func TestConfigureWriterTextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := ConfigureWriter(&buf, "warn", "text")
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info record should be filtered at warn level, got %s", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Errorf("Expected text output, got %s", out)
	}
}
