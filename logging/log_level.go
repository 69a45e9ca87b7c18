package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// ParseLogLevelString parses a case-insensitive level name
// (debug, info, warn, warning, error). Unknown names return defaultLevel.
func ParseLogLevelString(levelStr string, defaultLevel zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return defaultLevel
	}
}

// LevelForMode returns the level named by levelStr, falling back to debug in
// development mode and info otherwise.
func LevelForMode(isDevelopment bool, levelStr string) zapcore.Level {
	fallback := zapcore.InfoLevel
	if isDevelopment {
		fallback = zapcore.DebugLevel
	}
	return ParseLogLevelString(levelStr, fallback)
}
