// Package logging configures the zerolog diagnostics logger. User-facing
// progress lines are printed separately with fatih/color.
package logging

import (
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	LogTimeFormat = "15:04:05.000"
)

// Options selects the log level and destination
type Options struct {
	Verbose bool
	Silent  bool
	NoColor bool
	// Out defaults to stderr so stdout stays clean for `sinkprobe payloads`
	Out io.Writer
}

// Setup replaces the global zerolog logger.
func Setup(opts Options) zerolog.Logger {
	switch {
	case opts.Silent:
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case opts.Verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
		if runtime.GOOS == "windows" {
			out = colorable.NewColorableStderr()
		}
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    opts.NoColor,
		TimeFormat: LogTimeFormat,
	}).With().Timestamp().Logger()

	return log.Logger
}
