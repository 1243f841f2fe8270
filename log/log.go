// Package log provides the logging facility used across the service. It is a
// thin wrapper around zerolog exposing leveled printf-style and structured
// key-value helpers.
package log

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log levels accepted by Init.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

var (
	logger zerolog.Logger
	level  string
)

func init() {
	// A sane default so packages can log before Init is called (tests).
	Init(LogLevelInfo, "stderr")
}

// Init configures the global logger with the given level and output:
// "stdout", "stderr" or a file path (created or appended to). Unknown levels
// fall back to info; an unwritable file path falls back to stderr.
func Init(logLevel, output string) {
	var out *os.File
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr", "":
		out = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			out = os.Stderr
		} else {
			out = f
		}
	}
	zl, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		zl = zerolog.InfoLevel
		logLevel = LogLevelInfo
	}
	level = logLevel
	w := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: out != os.Stdout && out != os.Stderr}
	logger = zerolog.New(w).Level(zl).With().Timestamp().Logger()
}

// Level returns the level the logger was initialized with.
func Level() string {
	return level
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...any) {
	logger.Debug().Msgf(format, args...)
}

// Infof logs a formatted message at info level.
func Infof(format string, args ...any) {
	logger.Info().Msgf(format, args...)
}

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...any) {
	logger.Warn().Msgf(format, args...)
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...any) {
	logger.Error().Msgf(format, args...)
}

// Fatalf logs a formatted message at fatal level and exits with status 1.
func Fatalf(format string, args ...any) {
	logger.Fatal().Msgf(format, args...)
}

// Fatal logs the arguments at fatal level and exits with status 1.
func Fatal(args ...any) {
	logger.Fatal().Msg(fmt.Sprint(args...))
}

// Warn logs the arguments at warn level.
func Warn(args ...any) {
	logger.Warn().Msg(fmt.Sprint(args...))
}

// Debugw logs a message with structured key-value pairs at debug level.
func Debugw(msg string, keysAndValues ...any) {
	withFields(logger.Debug(), keysAndValues).Msg(msg)
}

// Infow logs a message with structured key-value pairs at info level.
func Infow(msg string, keysAndValues ...any) {
	withFields(logger.Info(), keysAndValues).Msg(msg)
}

// Warnw logs a message with structured key-value pairs at warn level.
func Warnw(msg string, keysAndValues ...any) {
	withFields(logger.Warn(), keysAndValues).Msg(msg)
}

// Errorw logs an error with a message at error level.
func Errorw(err error, msg string) {
	logger.Error().Err(err).Msg(msg)
}

func withFields(ev *zerolog.Event, keysAndValues []any) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		ev = ev.Interface(key, keysAndValues[i+1])
	}
	return ev
}
