package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/holiman/uint256"
)

// TerminalHandler formats records for output to a terminal, optionally with
// ANSI color codes for the level string.
type TerminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	level    slog.Level
	attrs    []slog.Attr
	useColor bool
}

// NewTerminalHandler returns a handler that writes to wr in go-ethereum's
// human-readable console format, enabling colors if useColor is true.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	return NewTerminalHandlerWithLevel(wr, LevelTrace, useColor)
}

// NewTerminalHandlerWithLevel is like NewTerminalHandler but only emits
// records at or above lvl.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl slog.Level, useColor bool) *TerminalHandler {
	return &TerminalHandler{wr: wr, level: lvl, useColor: useColor}
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	buf := h.format(r)
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.wr.Write(buf)
	return err
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		wr:       h.wr,
		level:    h.level,
		useColor: h.useColor,
		attrs:    append(slices.Clone(h.attrs), attrs...),
	}
}

// WithGroup is unsupported; the terminal handler keeps all attributes flat.
func (h *TerminalHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *TerminalHandler) format(r slog.Record) []byte {
	buf := new(bytes.Buffer)

	if h.useColor {
		buf.WriteString(levelColor(r.Level).Sprint(LevelAlignedString(r.Level)))
	} else {
		buf.WriteString(LevelAlignedString(r.Level))
	}
	buf.WriteByte('[')
	writeTimeTermFormat(buf, r.Time)
	buf.WriteString("] ")

	msg := escapeMessage(r.Message)
	buf.WriteString(msg)

	var parts []string
	for _, a := range h.attrs {
		parts = append(parts, formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, formatAttr(a))
		return true
	})

	if len(parts) > 0 {
		length := messageJustWidth(msg)
		if length < termMsgJust {
			buf.WriteString(spaces(termMsgJust - length))
		} else {
			buf.WriteByte(' ')
		}
		for i, p := range parts {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(p)
		}
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

func formatAttr(a slog.Attr) string {
	return escapeString(a.Key) + "=" + FormatLogfmtValue(a.Value.Any(), true)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

func levelColor(lvl slog.Level) *color.Color {
	switch {
	case lvl >= LevelCrit:
		return color.New(color.FgMagenta)
	case lvl >= slog.LevelError:
		return color.New(color.FgRed)
	case lvl >= slog.LevelWarn:
		return color.New(color.FgYellow)
	case lvl >= slog.LevelInfo:
		return color.New(color.FgGreen)
	case lvl >= slog.LevelDebug:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgWhite)
	}
}

// JSONHandler returns a handler that writes JSON-formatted records to wr,
// emitting all levels including Debug.
func JSONHandler(wr io.Writer) slog.Handler {
	return JSONHandlerWithLevel(wr, slog.LevelDebug)
}

// JSONHandlerWithLevel is like JSONHandler but drops records below level.
func JSONHandlerWithLevel(wr io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: builtinReplaceJSON,
		Level:       level,
	})
}

func builtinReplaceJSON(_ []string, a slog.Attr) slog.Attr {
	switch v := a.Value.Any().(type) {
	case time.Time:
		a.Value = slog.StringValue(v.Format(timeFormat))
	case *big.Int:
		if v == nil {
			a.Value = slog.StringValue("<nil>")
		} else {
			a.Value = slog.StringValue(v.String())
		}
	case *uint256.Int:
		if v == nil {
			a.Value = slog.StringValue("<nil>")
		} else {
			a.Value = slog.StringValue(v.Dec())
		}
	case error:
		a.Value = slog.StringValue(v.Error())
	}
	return a
}

// logfmtHandler writes plain key=value lines without terminal padding or
// coloring.
type logfmtHandler struct {
	mu    sync.Mutex
	wr    io.Writer
	attrs []slog.Attr
}

// LogfmtHandler returns a handler that writes logfmt-encoded records to wr.
func LogfmtHandler(wr io.Writer) slog.Handler {
	return &logfmtHandler{wr: wr}
}

func (h *logfmtHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *logfmtHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)
	buf.WriteString("t=")
	buf.WriteString(r.Time.Format(timeFormat))
	buf.WriteString(" lvl=")
	buf.WriteString(LevelString(r.Level))
	buf.WriteString(" msg=")
	buf.WriteString(escapeString(r.Message))
	for _, a := range h.attrs {
		buf.WriteByte(' ')
		buf.WriteString(formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteByte(' ')
		buf.WriteString(formatAttr(a))
		return true
	})
	buf.WriteByte('\n')
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.wr.Write(buf.Bytes())
	return err
}

func (h *logfmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &logfmtHandler{wr: h.wr, attrs: append(slices.Clone(h.attrs), attrs...)}
}

func (h *logfmtHandler) WithGroup(_ string) slog.Handler {
	return h
}

// DiscardHandler returns a handler that drops every record, used as a
// quiet default before a real handler is installed.
func DiscardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}
