package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const timestampLayout = "2006-01-02 15:04:05"

// Config holds logger configuration
type Config struct {
	Level  string
	Format string    // "text" for local development, anything else is JSON
	Output io.Writer // stdout when nil
}

// Setup builds the process logger, tags it with the service name and makes it the
// slog default
func Setup(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	level := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   level <= slog.LevelDebug,
		ReplaceAttr: formatTime,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	l := slog.New(handler).With("service", "qa-gate")
	slog.SetDefault(l)
	return l
}

func formatTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		a.Value = slog.StringValue(a.Value.Time().Format(timestampLayout))
	}
	return a
}

// ParseLevel maps LOG_LEVEL to a slog level; unknown values mean INFO
func ParseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
