package logging

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	l := Logger()
	if l.Enabled(nil, slog.LevelError) {
		t.Fatal("default logger must report every level as disabled")
	}
}

func TestSetLoggerIsObservedByLogger(t *testing.T) {
	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)
	defer SetLogger(nil)

	Logger().Info("hello")
	if buf.Len() == 0 {
		t.Fatal("expected the configured logger to receive the log record")
	}
}
