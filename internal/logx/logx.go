// Package logx builds the structured logger shared by every command.
package logx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Level names accepted in config and flags.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Options configures New.
type Options struct {
	Level   string
	Format  string // "text" or "json"
	Output  io.Writer
	Verbose int // each step lowers the level by one notch; 2 adds source lines
}

// ParseLevel maps a level name to slog. Unknown names are an error.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo, "":
		return slog.LevelInfo, nil
	case LevelWarn, "warning":
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// New returns a logger. Bad levels fall back to info.
func New(o Options) *slog.Logger {
	if o.Output == nil {
		o.Output = os.Stderr
	}
	level, _ := ParseLevel(o.Level)
	level -= slog.Level(4 * o.Verbose)
	if level < slog.LevelDebug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: o.Verbose >= 2}

	var h slog.Handler
	if strings.EqualFold(o.Format, "json") {
		h = slog.NewJSONHandler(o.Output, opts)
	} else {
		h = slog.NewTextHandler(o.Output, opts)
	}
	return slog.New(h)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

// OpenFile opens path for appending and writes a start banner. An empty path
// returns nil, nil.
func OpenFile(path, version string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	_, _ = fmt.Fprintf(f, "=== htmlpad %s started at %s ===\n", version, time.Now().Format(time.RFC3339))
	return f, nil
}
