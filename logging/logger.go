package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger and redacts credentials from every field before
// it is written. Output is teed to the console and a rotated JSON file.
//
// Example:
//
//	logger, err := NewLogger(false, "app.log", "info")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("server started", zap.String("addr", "localhost:8501"))
type Logger struct {
	zap           *zap.Logger
	isDevelopment bool
	logFilePath   string
}

// NewLogger creates a Logger writing to stdout and to a rotated file at
// logFilePath. In development mode the console output is colored and the
// default level is debug; otherwise both outputs are JSON at info level.
// levelStr overrides the default level when it names a valid level.
func NewLogger(isDevelopment bool, logFilePath, levelStr string) (*Logger, error) {
	if logFilePath == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	level := LevelForMode(isDevelopment, levelStr)
	core := NewMultiCore(level, zapcore.Lock(os.Stdout), NewFileWriter(logFilePath), isDevelopment)
	return newLogger(core, isDevelopment, logFilePath), nil
}

// NewLoggerWithWriters creates a Logger over caller-supplied writers.
// Tests use it to capture output.
func NewLoggerWithWriters(level zapcore.Level, console, file zapcore.WriteSyncer, isDevelopment bool) *Logger {
	return newLogger(NewMultiCore(level, console, file, isDevelopment), isDevelopment, "")
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{zap: zap.NewNop()}
}

func newLogger(core zapcore.Core, isDevelopment bool, path string) *Logger {
	return &Logger{
		zap:           zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		isDevelopment: isDevelopment,
		logFilePath:   path,
	}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Debug logs a message at DebugLevel.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, redactFields(fields)...)
}

// Info logs a message at InfoLevel.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, redactFields(fields)...)
}

// Warn logs a message at WarnLevel.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, redactFields(fields)...)
}

// Error logs a message at ErrorLevel.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, redactFields(fields)...)
}

// Infof logs a formatted message at InfoLevel. The rendered message is
// scanned for credentials like any string field.
func (l *Logger) Infof(template string, args ...interface{}) {
	l.zap.Info(RedactSensitiveData(fmt.Sprintf(template, args...)))
}

// With creates a child logger carrying fields on every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{
		zap:           l.zap.With(redactFields(fields)...),
		isDevelopment: l.isDevelopment,
		logFilePath:   l.logFilePath,
	}
}

// Named adds a sub-logger name, e.g. "summarizer" or "http".
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		zap:           l.zap.Named(name),
		isDevelopment: l.isDevelopment,
		logFilePath:   l.logFilePath,
	}
}

// Zap returns the underlying zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// IsDevelopment returns true if the logger is configured for development mode.
func (l *Logger) IsDevelopment() bool {
	return l.isDevelopment
}

// LogFilePath returns the path to the log file.
func (l *Logger) LogFilePath() string {
	return l.logFilePath
}

func redactFields(fields []zap.Field) []zap.Field {
	if len(fields) == 0 {
		return fields
	}
	result := make([]zap.Field, len(fields))
	for i, field := range fields {
		result[i] = redactField(field)
	}
	return result
}

func redactField(field zap.Field) zap.Field {
	if IsSensitiveField(field.Key) {
		return zap.String(field.Key, RedactedPlaceholder)
	}
	if field.Type == zapcore.StringType {
		if redacted := RedactSensitiveData(field.String); redacted != field.String {
			return zap.String(field.Key, redacted)
		}
	}
	if field.Type == zapcore.ErrorType {
		if err, ok := field.Interface.(error); ok {
			if redacted := RedactSensitiveData(err.Error()); redacted != err.Error() {
				return zap.String(field.Key, redacted)
			}
		}
	}
	return field
}
