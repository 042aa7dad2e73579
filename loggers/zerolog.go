package loggers

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to the licensing.Logger interface.
// The alternating key/value args of the interface map onto zerolog fields.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// NewDefaultLogger creates a logger writing JSON lines to stderr with
// timestamps, at the given level.
func NewDefaultLogger(level zerolog.Level) *ZerologLogger {
	return NewWriterLogger(os.Stderr, level)
}

// NewWriterLogger creates a logger writing JSON lines to w with timestamps,
// at the given level.
func NewWriterLogger(w io.Writer, level zerolog.Level) *ZerologLogger {
	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()

	return &ZerologLogger{logger: logger}
}

// Debug logs a message at debug level with alternating key/value args.
func (l *ZerologLogger) Debug(msg string, args ...any) {
	l.logger.Debug().Fields(args).Msg(msg)
}

// Info logs a message at info level with alternating key/value args.
func (l *ZerologLogger) Info(msg string, args ...any) {
	l.logger.Info().Fields(args).Msg(msg)
}

// Warn logs a message at warn level with alternating key/value args.
func (l *ZerologLogger) Warn(msg string, args ...any) {
	l.logger.Warn().Fields(args).Msg(msg)
}

// Error logs a message at error level with alternating key/value args.
func (l *ZerologLogger) Error(msg string, args ...any) {
	l.logger.Error().Fields(args).Msg(msg)
}
