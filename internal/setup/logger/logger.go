package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds the process logger. JSON goes to stdout for log shippers,
// anything else is a human readable console writer on stderr.
func New(level string, format string) zerolog.Logger {
	return build(level, format, os.Stdout, os.Stderr)
}

func build(level string, format string, stdout io.Writer, stderr io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
	if format == FormatJSON {
		out = stdout
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()
}
