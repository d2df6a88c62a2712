package logger

import (
	"log/slog"
	"os"
	"strings"
)

var globalLogger *slog.Logger

// InitSlog initializes the global slog logger with the given level and a
// JSON handler writing to stdout.
func InitSlog(levelStr string) {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(levelStr),
		AddSource: false,
	}
	globalLogger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(globalLogger)
}

// InitWithHandler installs a custom slog handler (the zap bridge in main)
// as the global logger.
func InitWithHandler(handler slog.Handler) {
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// ParseLevel maps a level string onto a slog level, defaulting to info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ensureInitialized() {
	if globalLogger == nil {
		InitSlog("INFO")
	}
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Debug(msg, args...)
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Info(msg, args...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Warn(msg, args...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Error(msg, args...)
}

// Fatal logs a message at ErrorLevel then exits.
func Fatal(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Error(msg, args...)
	os.Exit(1)
}
