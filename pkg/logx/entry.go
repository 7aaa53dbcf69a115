package logx

import "fmt"

// Entry accumulates fields before emitting a log record.
type Entry struct {
	logger *Logger
	fields Fields
	err    error
}

func newEntry(logger *Logger) *Entry {
	return &Entry{
		logger: logger,
		fields: make(Fields),
	}
}

// WithField adds a field to the entry (chainable).
func (e *Entry) WithField(key string, value any) *Entry {
	e.fields[key] = value
	return e
}

// WithFields adds multiple fields to the entry (chainable).
func (e *Entry) WithFields(fields Fields) *Entry {
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithError adds an error field (chainable).
func (e *Entry) WithError(err error) *Entry {
	e.err = err
	if err != nil {
		e.fields["error"] = err.Error()
	}
	return e
}

// Debug logs at debug level.
func (e *Entry) Debug(msg string) { e.logger.log(LevelDebug, msg, e.fields, e.err) }

// Info logs at info level.
func (e *Entry) Info(msg string) { e.logger.log(LevelInfo, msg, e.fields, e.err) }

// Warn logs at warn level.
func (e *Entry) Warn(msg string) { e.logger.log(LevelWarn, msg, e.fields, e.err) }

// Error logs at error level.
func (e *Entry) Error(msg string) { e.logger.log(LevelError, msg, e.fields, e.err) }

// Fatal logs at fatal level and exits.
func (e *Entry) Fatal(msg string) {
	e.logger.log(LevelFatal, msg, e.fields, e.err)
	e.logger.exit(1)
}

// Debugf logs a formatted debug message.
func (e *Entry) Debugf(format string, args ...any) {
	e.logger.log(LevelDebug, fmt.Sprintf(format, args...), e.fields, e.err)
}

// Infof logs a formatted info message.
func (e *Entry) Infof(format string, args ...any) {
	e.logger.log(LevelInfo, fmt.Sprintf(format, args...), e.fields, e.err)
}

// Warnf logs a formatted warn message.
func (e *Entry) Warnf(format string, args ...any) {
	e.logger.log(LevelWarn, fmt.Sprintf(format, args...), e.fields, e.err)
}

// Errorf logs a formatted error message.
func (e *Entry) Errorf(format string, args ...any) {
	e.logger.log(LevelError, fmt.Sprintf(format, args...), e.fields, e.err)
}
