// Package log provides the prefixed, colored, leveled logger shared by the
// application's components.
package log

import (
	"errors"
	"fmt"
	"io"
	"log"
)

const (
	errorColor = "\033[31m"
	warnColor  = "\033[33m"
	infoColor  = "\033[32m"
	resetColor = "\033[0m"
)

// Logger writes "[PREFIX] [LEVEL] message" lines with the prefix painted in
// the component's color.
type Logger struct {
	out *log.Logger
}

// New creates a Logger writing to w.
func New(prefix, color string, w io.Writer) (*Logger, error) {
	if w == nil {
		return nil, errors.New("nil writer")
	}
	if prefix == "" {
		return nil, errors.New("empty prefix")
	}

	return &Logger{
		out: log.New(w, fmt.Sprintf("%s[%s]%s ", color, prefix, resetColor), log.LstdFlags),
	}, nil
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.print(infoColor, "INFO", msg)
}

// Warning logs a recoverable problem.
func (l *Logger) Warning(msg string) {
	l.print(warnColor, "WARNING", msg)
}

// Error logs a failure.
func (l *Logger) Error(msg string) {
	l.print(errorColor, "ERROR", msg)
}

func (l *Logger) print(color, level, msg string) {
	l.out.Printf("%s[%s]%s %s", color, level, resetColor, msg)
}
