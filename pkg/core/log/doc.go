// File: doc.go
// Title: Log Package Documentation
// Description: Structured logging for cstkit.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial package documentation

/*
Package log provides structured, levelled logging.

Loggers are immutable from the caller's point of view: WithField, WithName and
WithRunID return clones, so a pipeline can derive a per-run logger without
affecting the shared one.

	logger := cklog.NewWithConfig(cklog.Config{Level: cklog.LevelDebug, Format: cklog.FormatText})
	runLog := logger.WithRunID(runID)
	timer := runLog.StartTimer("parse")
	...
	timer.Stop()
*/
package log
