package main

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/rpgo/swr-montecarlo/internal/calculation"
)

// newLogger builds the CLI logger. Verbose runs get human-readable debug
// output; otherwise only warnings and errors are emitted as JSON lines.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	out := w
	if verbose {
		level = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// engineLogger adapts zerolog to calculation.Logger.
type engineLogger struct {
	log zerolog.Logger
}

var _ calculation.Logger = engineLogger{}

func (l engineLogger) Debugf(format string, args ...any) { l.log.Debug().Msgf(format, args...) }
func (l engineLogger) Infof(format string, args ...any)  { l.log.Info().Msgf(format, args...) }
func (l engineLogger) Warnf(format string, args ...any)  { l.log.Warn().Msgf(format, args...) }
func (l engineLogger) Errorf(format string, args ...any) { l.log.Error().Msgf(format, args...) }
