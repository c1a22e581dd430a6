package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"

	"github.com/fatih/color"
)

// consoleHandler is a compact colored slog handler for terminal output.
type consoleHandler struct {
	l     *log.Logger
	level slog.Level
	attrs []slog.Attr
}

func NewConsoleHandler(out io.Writer, level slog.Level) slog.Handler {
	return &consoleHandler{l: log.New(out, "", 0), level: level}
}

// New builds a logger at the named level ("debug", "info", "warn",
// "error") writing to out.
func New(out io.Writer, level string) *slog.Logger {
	return slog.New(NewConsoleHandler(out, ParseLevel(level)))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (h *consoleHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.HiBlueString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	}

	var b strings.Builder
	for _, a := range h.attrs {
		b.WriteString(color.GreenString(a.Key) + "=" + fmt.Sprint(a.Value.Any()) + " ")
	}
	r.Attrs(func(a slog.Attr) bool {
		b.WriteString(color.GreenString(a.Key) + "=" + fmt.Sprint(a.Value.Any()) + " ")
		return true
	})

	h.l.Println(r.Time.Format("15:04:05.000"), level, r.Message, b.String())
	return nil
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{l: h.l, level: h.level, attrs: append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)}
}

func (h *consoleHandler) WithGroup(string) slog.Handler { return h }
