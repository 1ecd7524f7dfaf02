package log

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

var root atomic.Pointer[Logger]

func init() {
	usecolor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"
	var wr = io.Writer(os.Stderr)
	if usecolor {
		wr = colorable.NewColorableStderr()
	}
	defaultLogger := NewLogger(NewTerminalHandler(wr, usecolor))
	root.Store(&defaultLogger)
}

// Root returns the root logger.
func Root() Logger {
	return *root.Load()
}

// SetDefault sets the logger returned by Root.
func SetDefault(l Logger) {
	root.Store(&l)
}

func Trace(msg string, ctx ...interface{}) {
	Root().Write(LevelTrace, msg, ctx...)
}

func Debug(msg string, ctx ...interface{}) {
	Root().Write(LevelDebug, msg, ctx...)
}

func Info(msg string, ctx ...interface{}) {
	Root().Write(LevelInfo, msg, ctx...)
}

func Warn(msg string, ctx ...interface{}) {
	Root().Write(LevelWarn, msg, ctx...)
}

func Error(msg string, ctx ...interface{}) {
	Root().Write(LevelError, msg, ctx...)
}

func Crit(msg string, ctx ...interface{}) {
	Root().Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}
