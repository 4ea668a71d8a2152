// Package logger wraps zerolog.Logger with the constructor used by the
// netcall binary.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger embeds zerolog.Logger so the full zerolog API is available.
type Logger struct {
	zerolog.Logger
}

// New builds a JSON logger writing to w with a "role" field and timestamps.
// An unknown level falls back to info.
func New(role, level string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	l := zerolog.New(w).Level(lvl).With().
		Str("role", role).
		Timestamp().
		Logger()
	return &Logger{l}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// Zero exposes the embedded zerolog.Logger by pointer.
func (l *Logger) Zero() *zerolog.Logger {
	return &l.Logger
}
