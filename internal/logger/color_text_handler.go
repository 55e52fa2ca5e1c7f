package logger

import (
	"context"
	"io"
	"log/slog"
)

const ansiReset = "\033[0m"

// levelColor maps a slog level to the ANSI escape that prefixes it on a
// terminal. Levels between the named ones fall back to no color.
func levelColor(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return "\033[36m"
	case slog.LevelInfo:
		return "\033[32m"
	case slog.LevelWarn:
		return "\033[33m"
	case slog.LevelError:
		return "\033[31m"
	default:
		return ansiReset
	}
}

// ColorTextHandler colorizes the level prefix of each record before handing
// it to the embedded slog.TextHandler. Intended for interactive CLI output.
type ColorTextHandler struct {
	*slog.TextHandler
	showTime bool
}

func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, showTime bool) *ColorTextHandler {
	return &ColorTextHandler{
		TextHandler: slog.NewTextHandler(w, opts),
		showTime:    showTime,
	}
}

func (h *ColorTextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.Message = levelColor(r.Level) + r.Level.String() + ansiReset + "  " + r.Message
	return h.TextHandler.Handle(ctx, r)
}
