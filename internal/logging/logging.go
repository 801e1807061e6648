// Package logging installs the process-wide slog logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
)

// Tracker remembers whether anything was logged at error level, so
// commands can pick their exit code.
type Tracker struct {
	hadError atomic.Bool
}

// HadError reports whether an error-level record was logged.
func (t *Tracker) HadError() bool {
	return t.hadError.Load()
}

// Setup installs a text handler writing to w as the default logger.
func Setup(w io.Writer, level *slog.LevelVar) *Tracker {
	t := &Tracker{}
	h := &errorHandler{
		Handler: slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
		tracker: t,
	}
	slog.SetDefault(slog.New(h))
	slog.SetLogLoggerLevel(slog.LevelError)
	return t
}

type errorHandler struct {
	slog.Handler
	tracker *Tracker
}

func (h *errorHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		h.tracker.hadError.Store(true)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *errorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &errorHandler{Handler: h.Handler.WithAttrs(attrs), tracker: h.tracker}
}

func (h *errorHandler) WithGroup(name string) slog.Handler {
	return &errorHandler{Handler: h.Handler.WithGroup(name), tracker: h.tracker}
}
