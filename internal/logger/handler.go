package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lmittmann/tint"
)

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.LevelKey:
		lvl := a.Value.Any().(slog.Level)
		return slog.String(a.Key, levelName(lvl))
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok {
			return slog.String(a.Key, formatSource(src))
		}
	}
	return a
}

// formatSource renders a call site as function:file:line
func formatSource(src *slog.Source) string {
	fn := src.Function
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		fn = fn[i+1:]
	}
	return fmt.Sprintf("%s:%s:%d", fn, filepath.Base(src.File), src.Line)
}

func newTextHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceAttr,
	})
}

func newTerminalHandler(w io.Writer, noColor bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		NoColor:    noColor || runtime.GOOS == "windows",
		AddSource:  true,
		Level:      slog.LevelDebug,
		TimeFormat: "2006-01-02 15:04:05",
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				lvl := a.Value.Any().(slog.Level)
				if s, ok := levelNamesTerm[lvl]; ok && !noColor {
					return slog.String(a.Key, s)
				}
			}
			return a
		},
	})
}

// levelSetHandler drops records whose level is not in the set
type levelSetHandler struct {
	levels LevelSet
	sh     slog.Handler
}

func (h *levelSetHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.levels.Enabled(level)
}

func (h *levelSetHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelSetHandler{levels: h.levels, sh: h.sh.WithAttrs(attrs)}
}

func (h *levelSetHandler) WithGroup(name string) slog.Handler {
	return &levelSetHandler{levels: h.levels, sh: h.sh.WithGroup(name)}
}

func (h *levelSetHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.sh.Handle(ctx, r)
}

// fanoutHandler writes every record to all of its handlers
type fanoutHandler []slog.Handler

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sh := range h {
		if sh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, sh := range h {
		out[i] = sh.WithAttrs(attrs)
	}
	return out
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, sh := range h {
		out[i] = sh.WithGroup(name)
	}
	return out
}

func (h fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, sh := range h {
		if sh.Enabled(ctx, r.Level) {
			if err := sh.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
