// Package logger builds the colour-tagged loggers used across the service.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/beka-birhanu/gridnav/config"
)

var (
	ErrNilWriter = errors.New("logger needs a writer")
)

// New returns a logger whose lines start with the component name in the given colour,
// e.g. "[WORKER] 2025/01/02 15:04:05 ...".
func New(component, color string, w io.Writer) (*log.Logger, error) {
	if w == nil {
		return nil, ErrNilWriter
	}
	prefix := fmt.Sprintf("%s[%s]%s ", color, component, config.ColorReset)
	return log.New(w, prefix, log.LstdFlags|log.Lmsgprefix), nil
}

// Info writes an info line tagged [INFO].
func Info(l *log.Logger, format string, args ...any) {
	l.Printf("%s[INFO]%s %s", config.LogInfoColor, config.LogColorReset, fmt.Sprintf(format, args...))
}

// Warn writes a warning line.
func Warn(l *log.Logger, format string, args ...any) {
	l.Printf("%s[WARN]%s %s", config.LogWarnColor, config.LogColorReset, fmt.Sprintf(format, args...))
}

// Error writes an error line.
func Error(l *log.Logger, format string, args ...any) {
	l.Printf("%s[ERROR]%s %s", config.LogErrorColor, config.LogColorReset, fmt.Sprintf(format, args...))
}
