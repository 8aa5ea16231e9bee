package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	// 未调用 Init 时（如测试）只输出警告以上
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)
}

// Init initializes the process logger
func Init(level string, pretty bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger().Level(lvl)

	LogInfo("Logger initialized, level: %s", lvl)
	return nil
}

// Room returns a child logger tagged with the room code
func Room(code string) *zerolog.Logger {
	l := log.With().Str("room", code).Logger()
	return &l
}

// LogDebug logs a debug message
func LogDebug(format string, args ...any) {
	log.Debug().Msgf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

// LogError logs an error message
func LogError(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

// LogPanic logs a panic with stack trace
func LogPanic(r any) {
	log.Error().Str("stack", string(debug.Stack())).Msgf("[PANIC] %v", r)
}
