// ABOUTME: Logger setup for the CLI: JSON to stderr or a compact colorized text handler
// ABOUTME: Log lines go to stderr so studio output on stdout stays readable

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/2389/fitcheck-studio/internal/config"
)

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := parseLevel(cfg.Level)

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(&consoleHandler{mu: &sync.Mutex{}, out: os.Stderr, level: level})
}

// consoleHandler prints one colorized line per record. The component
// attribute, when present, is shown as a prefix instead of a key=value pair.
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     slog.Level
	component string
	attrs     []slog.Attr
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))
	switch {
	case r.Level >= slog.LevelError:
		b.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	case r.Level >= slog.LevelWarn:
		b.WriteString(color.YellowString("WRN "))
	case r.Level >= slog.LevelInfo:
		b.WriteString(color.CyanString("INF "))
	default:
		b.WriteString(color.MagentaString("DBG "))
	}
	if h.component != "" {
		b.WriteString(color.BlueString("[" + h.component + "] "))
	}
	b.WriteString(r.Message)

	writeAttr := func(a slog.Attr) {
		b.WriteString(color.HiBlackString(" " + a.Key + "="))
		b.WriteString(a.Value.String())
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprint(h.out, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		if a.Key == "component" {
			next.component = a.Value.String()
			continue
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

// WithGroup is accepted but groups are flattened.
func (h *consoleHandler) WithGroup(string) slog.Handler {
	return h
}
