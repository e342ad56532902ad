package log

import (
	stdlog "log"
	"strings"
)

// stdlogWriter adapts a Logger to an io.Writer for the standard library log
// package. Each write becomes one Info entry.
type stdlogWriter struct {
	logger Logger
}

func (w stdlogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if msg != "" {
		w.logger.Info(msg)
	}
	return len(p), nil
}

// ToStdLogger returns a *log.Logger that forwards into logger.
func ToStdLogger(logger Logger) *stdlog.Logger {
	return stdlog.New(stdlogWriter{logger: logger}, "", 0)
}

// RedirectStdLog routes the default standard library logger (used by some
// dependencies, e.g. Pebble's event listener) through logger.
func RedirectStdLog(logger Logger) {
	stdlog.SetFlags(0)
	stdlog.SetPrefix("")
	stdlog.SetOutput(stdlogWriter{logger: logger})
}
