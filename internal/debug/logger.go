package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger writes debug traces to debug.log when enabled. Warnings are always written,
// to the debug file when enabled and to stderr otherwise.
type Logger struct {
	enabled bool
	log     *slog.Logger
}

func NewLogger(enabled bool) *Logger {
	var out io.Writer = os.Stderr
	if enabled {
		logFile, err := os.OpenFile("debug.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			out = logFile
		}
	}

	l := New(out, enabled)
	l.Printf("=== DEBUG MODE ENABLED ===")
	return l
}

// New builds a logger on an arbitrary writer, mostly for tests.
func New(w io.Writer, enabled bool) *Logger {
	level := slog.LevelWarn
	if enabled {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format("15:04:05"))
			}
			return a
		},
	})
	return &Logger{enabled: enabled, log: slog.New(handler)}
}

func (d *Logger) IsEnabled() bool {
	return d != nil && d.enabled
}

func (d *Logger) Printf(format string, args ...interface{}) {
	if d.IsEnabled() {
		d.log.Debug(fmt.Sprintf(format, args...))
	}
}

func (d *Logger) Println(args ...interface{}) {
	if d.IsEnabled() {
		d.log.Debug(fmt.Sprint(args...))
	}
}

// Warn records a condition worth surfacing even outside debug mode.
func (d *Logger) Warn(msg string, args ...any) {
	if d == nil {
		return
	}
	d.log.Warn(msg, args...)
}
