package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFiltersByLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "renderer output at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("rendered 7 layers") },
			wantLog: true,
		},
		{
			name:    "extraction trace hidden at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("extract", "version", "HEAD") },
			wantLog: false,
		},
		{
			name:    "extraction trace shown at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("extract", "version", "HEAD") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgressReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	time.Sleep(10 * time.Millisecond)
	prog.done("Rendered sheet hierarchy")

	output := buf.String()
	if !strings.Contains(output, "Rendered sheet hierarchy") {
		t.Errorf("progress output should carry the message, got %q", output)
	}
	// The rounded duration renders with a unit suffix, e.g. "(12ms)".
	if !strings.Contains(output, "(") || !strings.Contains(output, ")") {
		t.Errorf("progress output should carry an elapsed duration, got %q", output)
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	ctx := withLogger(context.Background(), custom)
	if got := loggerFromContext(ctx); got != custom {
		t.Fatal("loggerFromContext should return the logger installed by withLogger")
	}

	loggerFromContext(ctx).Info("serving project", "dir", "/tmp/board")
	if !strings.Contains(buf.String(), "serving project") {
		t.Error("the retrieved logger should write to the original buffer")
	}
}

func TestLoggerFromContextDefault(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Error("loggerFromContext should fall back to a usable logger")
	}
}
