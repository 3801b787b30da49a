package logging

import (
	"context"
	"log/slog"
)

// Slog returns a *slog.Logger backed by this logger's zap core, so code
// written against log/slog shares the same sinks and level.
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		l = NewNop()
	}
	return slog.New(&slogHandler{logger: l})
}

type slogHandler struct {
	logger *Logger
	group  string
	attrs  []any
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Zap().Core().Enabled(slogToZapLevel(level))
}

func (h *slogHandler) Handle(ctx context.Context, record slog.Record) error {
	args := make([]any, 0, len(h.attrs)+record.NumAttrs()*2)
	args = append(args, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		args = appendSlogAttr(args, h.group, attr)
		return true
	})
	h.logger.logContext(ctx, slogToZapLevel(record.Level), record.Message, args...)
	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	merged := make([]any, 0, len(h.attrs)+len(attrs)*2)
	merged = append(merged, h.attrs...)
	for _, attr := range attrs {
		merged = appendSlogAttr(merged, h.group, attr)
	}
	return &slogHandler{logger: h.logger, group: h.group, attrs: merged}
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &slogHandler{logger: h.logger, group: group, attrs: h.attrs}
}

func appendSlogAttr(args []any, group string, attr slog.Attr) []any {
	value := attr.Value.Resolve()
	key := attr.Key
	if group != "" && key != "" {
		key = group + "." + key
	}

	if value.Kind() == slog.KindGroup {
		nested := value.Group()
		if len(nested) == 0 {
			return args
		}
		for _, member := range nested {
			args = appendSlogAttr(args, key, member)
		}
		return args
	}

	if key == "" {
		return args
	}
	return append(args, key, value.Any())
}

func slogToZapLevel(level slog.Level) Level {
	switch {
	case level >= slog.LevelError:
		return LevelError
	case level >= slog.LevelWarn:
		return LevelWarn
	case level >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}
