package log

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewRotatingFileWriter returns a writer suitable for passing to
// NewTerminalHandler or JSONHandler when log output should be persisted to
// disk and rotated once it grows too large, instead of accumulating in a
// single ever-growing file the way AsyncFileWriter does.
func NewRotatingFileWriter(path string, maxSizeMB, maxBackups, maxAgeDays int) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
}
