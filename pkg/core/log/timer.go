// File: timer.go
// Title: Performance Timer
// Description: Measures and logs the duration of pipeline phases.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial timer

package log

import (
	"time"
)

// Timer represents a performance timer for measuring operation duration
type Timer struct {
	logger    *Logger
	operation string
	startTime time.Time
	fields    Fields
	level     Level
	stopped   bool
}

// NewTimer creates a new timer for the given operation
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		startTime: time.Now(),
		fields:    make(Fields),
		level:     LevelDebug,
	}
}

// WithLevel sets the log level for the completion message
func (t *Timer) WithLevel(level Level) *Timer {
	t.level = level
	return t
}

// WithField adds a field to be logged when the timer completes
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Elapsed returns the elapsed time since the timer was started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Stop stops the timer and logs the elapsed time. Stopping twice returns 0.
func (t *Timer) Stop() time.Duration {
	return t.finish(nil)
}

// StopWithError stops the timer and logs the failure with the elapsed time
func (t *Timer) StopWithError(err error) time.Duration {
	return t.finish(err)
}

func (t *Timer) finish(err error) time.Duration {
	if t.stopped {
		return 0
	}
	t.stopped = true
	elapsed := t.Elapsed()
	if t.logger == nil {
		return elapsed
	}

	fields := t.fields.Merge(Fields{
		"operation":   t.operation,
		"duration_ms": float64(elapsed.Nanoseconds()) / 1e6,
	})
	if err != nil {
		t.logger.log(LevelWarn, t.operation+" failed", err, fields)
		return elapsed
	}
	t.logger.log(t.level, t.operation+" completed", nil, fields)
	return elapsed
}
