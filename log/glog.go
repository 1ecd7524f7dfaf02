package log

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// GlogHandler wraps another handler and applies glog-style verbosity
// control: a single global level plus optional per-file overrides set
// through Vmodule, e.g. "client.go=5,server.go=3".
type GlogHandler struct {
	origin slog.Handler

	level    atomic.Int32
	override atomic.Bool

	mu       sync.RWMutex
	patterns []pattern
}

type pattern struct {
	file  string
	level slog.Level
}

// NewGlogHandler wraps h with glog-style verbosity filtering.
func NewGlogHandler(h slog.Handler) *GlogHandler {
	g := &GlogHandler{origin: h}
	g.level.Store(int32(LevelCrit))
	return g
}

// Verbosity sets the global logging threshold.
func (g *GlogHandler) Verbosity(level slog.Level) {
	g.level.Store(int32(level))
}

// Vmodule sets the per-file verbosity overrides, using glog's legacy
// numeric levels: 0=crit .. 5=trace.
func (g *GlogHandler) Vmodule(ruleset string) error {
	var patterns []pattern
	for _, rule := range strings.Split(ruleset, ",") {
		if rule == "" {
			continue
		}
		parts := strings.Split(rule, "=")
		if len(parts) != 2 {
			return fmt.Errorf("invalid vmodule rule %q", rule)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("invalid vmodule level in %q: %v", rule, err)
		}
		patterns = append(patterns, pattern{file: parts[0], level: legacyLevel(n)})
	}
	g.mu.Lock()
	g.patterns = patterns
	g.mu.Unlock()
	g.override.Store(len(patterns) > 0)
	return nil
}

func legacyLevel(n int) slog.Level {
	switch n {
	case 0:
		return LevelCrit
	case 1:
		return LevelError
	case 2:
		return LevelWarn
	case 3:
		return LevelInfo
	case 4:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// Enabled is permissive whenever a vmodule override is active, since the
// real decision requires looking at the call site's source file, which is
// only available from the record in Handle.
func (g *GlogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if g.override.Load() {
		return true
	}
	return level >= slog.Level(g.level.Load())
}

func (g *GlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if g.override.Load() {
		if file := callerFile(r); file != "" {
			if lvl, ok := g.matchFile(file); ok {
				if r.Level < lvl {
					return nil
				}
				return g.origin.Handle(ctx, r)
			}
		}
	}
	if r.Level < slog.Level(g.level.Load()) {
		return nil
	}
	return g.origin.Handle(ctx, r)
}

func (g *GlogHandler) matchFile(file string) (slog.Level, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, p := range g.patterns {
		if p.file == file {
			return p.level, true
		}
	}
	return 0, false
}

func callerFile(r slog.Record) string {
	if r.PC == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{r.PC})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return filepath.Base(frame.File)
}

func (g *GlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := &GlogHandler{origin: g.origin.WithAttrs(attrs)}
	clone.level.Store(g.level.Load())
	clone.override.Store(g.override.Load())
	g.mu.RLock()
	clone.patterns = append([]pattern(nil), g.patterns...)
	g.mu.RUnlock()
	return clone
}

func (g *GlogHandler) WithGroup(name string) slog.Handler {
	clone := &GlogHandler{origin: g.origin.WithGroup(name)}
	clone.level.Store(g.level.Load())
	clone.override.Store(g.override.Load())
	g.mu.RLock()
	clone.patterns = append([]pattern(nil), g.patterns...)
	g.mu.RUnlock()
	return clone
}
