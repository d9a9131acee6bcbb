package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ContextExtractor pulls a single attribute out of a context.
// It returns false when the context carries nothing worth logging.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// Config controls the stdout handler.
type Config struct {
	Level slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

// New returns a JSON logger at info level decorated with the given extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewWithConfig(Config{Level: slog.LevelInfo}, extractors...)
}

// NewWithConfig is New with an explicit level.
func NewWithConfig(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(Decorate(jsonHandler(os.Stdout, cfg.Level), extractors...))
}

// NewNope returns a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jsonHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// contextHandler appends extracted attributes to every record before passing
// it to the wrapped handler.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// Decorate wraps next so that records logged with a context are enriched by
// the extractors. Nil extractors are ignored.
func Decorate(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	return &contextHandler{next: next, extractors: clean}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if ctx != nil {
		for _, ex := range h.extractors {
			if attr, ok := ex(ctx); ok {
				rec.AddAttrs(attr)
			}
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}

// fanout sends every record to each handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, rec slog.Record) error {
	for _, h := range f {
		if !h.Enabled(ctx, rec.Level) {
			continue
		}
		if err := h.Handle(ctx, rec.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
