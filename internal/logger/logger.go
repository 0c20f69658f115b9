// Package logger holds the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.New(io.Discard)

// Init configures the global logger. format is "console" or "json"; a nil
// writer means stderr.
func Init(level, format string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", level, err)
	}
	if w == nil {
		w = os.Stderr
	}

	var out io.Writer = w
	switch strings.ToLower(format) {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "json":
	default:
		return fmt.Errorf("invalid log format '%s'", format)
	}

	log = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return nil
}

// L returns the configured logger. Before Init it discards everything.
func L() *zerolog.Logger {
	return &log
}

// With returns a child logger tagged with a component name.
func With(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
