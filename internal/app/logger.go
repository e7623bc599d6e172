package app

import (
	"io"
	"log/slog"

	slogmulti "github.com/samber/slog-multi"
)

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances. Records are
// also written as JSON to every writer in extra.
func newLogger(levelStr, formatStr string, outW io.Writer, extra ...io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	if len(extra) == 0 {
		return slog.New(handler)
	}
	handlers := []slog.Handler{handler}
	for _, w := range extra {
		handlers = append(handlers, slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}
