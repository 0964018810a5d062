// File: logger.go
// Title: Core Logger Implementation
// Description: Implements the Logger type: structured, levelled logging with
//              persistent context fields, per-run correlation and integration
//              with the cstkit error type.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation with structured logging

package log

import (
	"io"
	"os"
	"sync"

	ckerror "github.com/msto63/cstkit/pkg/core/error"
)

// Logger represents a structured logger with contextual information.
// With* methods return modified clones; a Logger is safe for concurrent use.
type Logger struct {
	level         Level
	formatter     Formatter
	output        io.Writer
	name          string
	runID         string
	contextFields Fields

	// guards writes to output, shared between clones
	writeMu *sync.Mutex
}

// Config represents logger configuration
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
	Name   string
}

// New creates a new logger writing JSON at info level to stderr
func New() *Logger {
	return NewWithConfig(Config{Level: LevelInfo, Format: FormatJSON})
}

// NewWithConfig creates a new logger with the specified configuration
func NewWithConfig(config Config) *Logger {
	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	return &Logger{
		level:         config.Level,
		formatter:     GetFormatter(config.Format),
		output:        output,
		name:          config.Name,
		contextFields: make(Fields),
		writeMu:       &sync.Mutex{},
	}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return NewWithConfig(Config{Level: LevelFatal + 1, Output: io.Discard})
}

// WithLevel returns a clone with the given minimum level
func (l *Logger) WithLevel(level Level) *Logger {
	clone := l.clone()
	clone.level = level
	return clone
}

// WithName returns a clone with the given logger name
func (l *Logger) WithName(name string) *Logger {
	clone := l.clone()
	clone.name = name
	return clone
}

// WithRunID returns a clone that tags every entry with a pipeline run ID
func (l *Logger) WithRunID(runID string) *Logger {
	clone := l.clone()
	clone.runID = runID
	return clone
}

// WithField adds a persistent field to all log entries
func (l *Logger) WithField(key string, value interface{}) *Logger {
	clone := l.clone()
	clone.contextFields[key] = value
	return clone
}

// WithFields adds persistent fields to all log entries
func (l *Logger) WithFields(fields Fields) *Logger {
	clone := l.clone()
	for k, v := range fields {
		clone.contextFields[k] = v
	}
	return clone
}

func (l *Logger) Trace(message string, fields ...Fields) { l.log(LevelTrace, message, nil, fields...) }
func (l *Logger) Debug(message string, fields ...Fields) { l.log(LevelDebug, message, nil, fields...) }
func (l *Logger) Info(message string, fields ...Fields)  { l.log(LevelInfo, message, nil, fields...) }
func (l *Logger) Warn(message string, fields ...Fields)  { l.log(LevelWarn, message, nil, fields...) }
func (l *Logger) Error(message string, fields ...Fields) { l.log(LevelError, message, nil, fields...) }

// Fatal logs a fatal level message and exits the program
func (l *Logger) Fatal(message string, fields ...Fields) {
	l.log(LevelFatal, message, nil, fields...)
	os.Exit(1)
}

// WarnWithErr logs a warning with an error object
func (l *Logger) WarnWithErr(message string, err error, fields ...Fields) {
	l.log(LevelWarn, message, err, fields...)
}

// ErrorWithErr logs an error with an error object
func (l *Logger) ErrorWithErr(message string, err error, fields ...Fields) {
	l.log(LevelError, message, err, fields...)
}

// LogError logs an error at a level derived from its severity. Bad input
// (low severity) is a warning; broken definitions and defects are errors.
func (l *Logger) LogError(message string, err error) {
	if err == nil {
		return
	}
	ckErr, ok := ckerror.AsError(err)
	if !ok {
		l.log(LevelError, message, err)
		return
	}

	fields := Fields{
		"error_code":     string(ckErr.Code()),
		"error_category": ckErr.Code().Category(),
		"error_severity": ckErr.Severity().String(),
	}
	if op := ckErr.Operation(); op != "" {
		fields["error_operation"] = op
	}

	switch ckErr.Severity() {
	case ckerror.SeverityLow, ckerror.SeverityMedium:
		l.log(LevelWarn, message, err, fields)
	default:
		l.log(LevelError, message, err, fields)
	}
}

// StartTimer creates and starts a new performance timer
func (l *Logger) StartTimer(operation string) *Timer {
	return NewTimer(l, operation)
}

// IsLevelEnabled returns true if the given level is enabled
func (l *Logger) IsLevelEnabled(level Level) bool {
	return level.ShouldLog(l.level)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	return l.level
}

func (l *Logger) log(level Level, message string, err error, fields ...Fields) {
	if !level.ShouldLog(l.level) {
		return
	}

	entry := NewEntry(level, message)
	entry.Logger = l.name
	entry.RunID = l.runID
	entry.Error = err
	for k, v := range l.contextFields {
		entry.Fields[k] = v
	}
	for _, fieldSet := range fields {
		for k, v := range fieldSet {
			entry.Fields[k] = v
		}
	}

	formatted, formatErr := l.formatter.Format(entry)
	if formatErr != nil {
		return
	}
	l.writeMu.Lock()
	_, _ = l.output.Write(formatted)
	l.writeMu.Unlock()
}

func (l *Logger) clone() *Logger {
	clone := *l
	clone.contextFields = make(Fields, len(l.contextFields))
	for k, v := range l.contextFields {
		clone.contextFields[k] = v
	}
	return &clone
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New()
)

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}
