package logx

import (
	"fmt"
	"io"
)

// defaultLogger is the package-level logger instance.
var defaultLogger *Logger

func init() {
	defaultLogger = NewLogger(LoadFromEnv())
}

// SetDefaultLogger replaces the package-level logger.
func SetDefaultLogger(logger *Logger) { defaultLogger = logger }

// GetDefaultLogger returns the package-level logger.
func GetDefaultLogger() *Logger { return defaultLogger }

// SetLevel sets the level of the package-level logger.
func SetLevel(level Level) { defaultLogger.SetLevel(level) }

// SetOutput sets the output of the package-level logger.
func SetOutput(w io.Writer) { defaultLogger.SetOutput(w) }

// Debug logs a debug level message.
func Debug(msg string) { defaultLogger.log(LevelDebug, msg, nil, nil) }

// Info logs an info level message.
func Info(msg string) { defaultLogger.log(LevelInfo, msg, nil, nil) }

// Warn logs a warning level message.
func Warn(msg string) { defaultLogger.log(LevelWarn, msg, nil, nil) }

// Error logs an error level message.
func Error(msg string) { defaultLogger.log(LevelError, msg, nil, nil) }

// Fatal logs a fatal level message and exits.
func Fatal(msg string) {
	defaultLogger.log(LevelFatal, msg, nil, nil)
	defaultLogger.exit(1)
}

// Debugf logs a formatted debug message.
func Debugf(format string, args ...any) {
	defaultLogger.log(LevelDebug, fmt.Sprintf(format, args...), nil, nil)
}

// Infof logs a formatted info message.
func Infof(format string, args ...any) {
	defaultLogger.log(LevelInfo, fmt.Sprintf(format, args...), nil, nil)
}

// Warnf logs a formatted warning message.
func Warnf(format string, args ...any) {
	defaultLogger.log(LevelWarn, fmt.Sprintf(format, args...), nil, nil)
}

// Errorf logs a formatted error message.
func Errorf(format string, args ...any) {
	defaultLogger.log(LevelError, fmt.Sprintf(format, args...), nil, nil)
}

// Fatalf logs a formatted fatal message and exits.
func Fatalf(format string, args ...any) {
	defaultLogger.log(LevelFatal, fmt.Sprintf(format, args...), nil, nil)
	defaultLogger.exit(1)
}

// WithFields creates an entry with fields on the package-level logger.
func WithFields(fields Fields) *Entry { return defaultLogger.WithFields(fields) }

// WithField creates an entry with a single field on the package-level logger.
func WithField(key string, value any) *Entry { return defaultLogger.WithField(key, value) }

// WithError creates an entry with an error field on the package-level logger.
func WithError(err error) *Entry { return defaultLogger.WithError(err) }
