// Package logging builds the process logger. Logs always go to stderr:
// stdout carries the MCP protocol stream when serving.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options controls logger construction.
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string
	// Format is "auto", "console" or "json".
	Format string
	// Verbose forces debug level.
	Verbose bool
	// Out overrides the destination (default os.Stderr).
	Out io.Writer
}

// New returns a configured logger. An unknown level falls back to info and
// is reported through the returned logger.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	if useConsole(opts.Format, out) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if err != nil {
		logger.Warn().Str("level", opts.Level).Msg("unknown log level, using info")
	}
	return logger
}

func useConsole(format string, out io.Writer) bool {
	switch strings.ToLower(format) {
	case "console", "text":
		return true
	case "json":
		return false
	}
	f, ok := out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
