package logging

import (
	"context"
	"errors"
	"log/slog"
)

// MultiHandler fans one record out to every target handler. Targets keep
// their own level filters, so the fan-out is enabled whenever any target
// is.
type MultiHandler struct {
	targets []slog.Handler
}

// NewMultiHandler builds a fan-out over the given targets.
func NewMultiHandler(targets ...slog.Handler) *MultiHandler {
	return &MultiHandler{targets: targets}
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, t := range m.targets {
		if t.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, t := range m.targets {
		if !t.Enabled(ctx, r.Level) {
			continue
		}
		if err := t.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.fork(func(t slog.Handler) slog.Handler { return t.WithAttrs(attrs) })
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	return m.fork(func(t slog.Handler) slog.Handler { return t.WithGroup(name) })
}

func (m *MultiHandler) fork(derive func(slog.Handler) slog.Handler) slog.Handler {
	targets := make([]slog.Handler, len(m.targets))
	for i, t := range m.targets {
		targets[i] = derive(t)
	}
	return &MultiHandler{targets: targets}
}
