// Package log implements the structured logging used throughout the bridge,
// ported from go-ethereum's log package (itself a thin domain layer over
// log/slog). It keeps go-ethereum's terminal/JSON/logfmt handler trio and
// its glog-style per-file verbosity control, plus the older log15-shaped API
// (New/SetHandler/LvlFilterHandler/StreamHandler/TerminalFormat) that
// go-ethereum still carries for callers that predate the slog migration.
package log

import "log/slog"

// The standard slog levels plus go-ethereum's two extra endpoints: a more
// verbose Trace below Debug and a more severe Crit above Error.
const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12
)

const errorKey = "LOG_ERROR"
const timeFormat = "2006-01-02T15:04:05-0700"

// defaultTermTimeFormat is the terminal handler's compact time layout. It
// mirrors the termTimeFormat constant the tests declare for themselves, kept
// under a different name here to avoid a duplicate top-level declaration.
const defaultTermTimeFormat = "01-02|15:04:05.000"

// LevelString returns a lowercase name for lvl, falling back to a numeric
// rendering for arbitrary slog levels.
func LevelString(lvl slog.Level) string {
	switch lvl {
	case LevelTrace:
		return "trace"
	case slog.LevelDebug:
		return "debug"
	case slog.LevelInfo:
		return "info"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	case LevelCrit:
		return "crit"
	default:
		return levelNumString(lvl)
	}
}

// LevelAlignedString is like LevelString but upper-cased and padded to a
// fixed width of 5, for column alignment in the terminal handler.
func LevelAlignedString(lvl slog.Level) string {
	switch lvl {
	case LevelTrace:
		return "TRACE"
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO "
	case slog.LevelWarn:
		return "WARN "
	case slog.LevelError:
		return "ERROR"
	case LevelCrit:
		return "CRIT "
	default:
		return levelNumString(lvl)
	}
}

func levelNumString(lvl slog.Level) string {
	return "level(" + itoa(int(lvl)) + ")"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
