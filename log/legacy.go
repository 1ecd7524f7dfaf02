package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Lvl mirrors the numeric verbosity levels used by the pre-slog log15 API.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) slogLevel() slog.Level {
	switch l {
	case LvlCrit:
		return LevelCrit
	case LvlError:
		return LevelError
	case LvlWarn:
		return LevelWarn
	case LvlInfo:
		return LevelInfo
	case LvlDebug:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// Format selects how StreamHandler renders its records. The bridge only
// ever constructs a terminal format, the one legacy callers use.
type Format struct {
	useColor bool
}

// TerminalFormat returns a Format that renders records the way
// NewTerminalHandler does, with colors if useColor is set.
func TerminalFormat(useColor bool) Format {
	return Format{useColor: useColor}
}

// StreamHandler returns a handler that writes records formatted by fmtr to
// wr. It exists for callers still using the log15-shaped API.
func StreamHandler(wr io.Writer, fmtr Format) slog.Handler {
	return NewTerminalHandlerWithLevel(wr, LevelTrace, fmtr.useColor)
}

// lvlFilterHandler gates records by level before handing them to next,
// without changing next's own notion of what it accepts.
type lvlFilterHandler struct {
	level slog.Level
	next  slog.Handler
}

// LvlFilterHandler wraps h so that only records at maxLvl or more severe
// reach it.
func LvlFilterHandler(maxLvl Lvl, h slog.Handler) slog.Handler {
	return &lvlFilterHandler{level: maxLvl.slogLevel(), next: h}
}

func (h *lvlFilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && h.next.Enabled(ctx, level)
}

func (h *lvlFilterHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < h.level {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *lvlFilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &lvlFilterHandler{level: h.level, next: h.next.WithAttrs(attrs)}
}

func (h *lvlFilterHandler) WithGroup(name string) slog.Handler {
	return &lvlFilterHandler{level: h.level, next: h.next.WithGroup(name)}
}

// New creates a new logger with its own handler, independent of Root. It
// exists for callers migrating off the log15-shaped API, which built
// loggers and attached their handler separately via SetHandler.
func New(ctx ...interface{}) *logger {
	l := &logger{inner: slog.New(NewTerminalHandler(os.Stderr, false))}
	if len(ctx) == 0 {
		return l
	}
	return &logger{inner: l.inner.With(ctx...)}
}
