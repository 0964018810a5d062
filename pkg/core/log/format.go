// File: format.go
// Title: Log Format Definitions
// Description: Output formats for log messages: JSON for machines, text and
//              lipgloss-coloured console output for terminals, logfmt for
//              line-oriented tooling.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial formatters

package log

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Format represents the output format for log messages
type Format int

const (
	// FormatJSON outputs one JSON object per line
	FormatJSON Format = iota

	// FormatText outputs human-readable text logs
	FormatText

	// FormatConsole outputs coloured text logs for interactive use
	FormatConsole

	// FormatLogfmt outputs key=value pairs
	FormatLogfmt
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	case FormatConsole:
		return "console"
	case FormatLogfmt:
		return "logfmt"
	default:
		return "unknown"
	}
}

// ParseFormat parses a string into a log format
func ParseFormat(format string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	case "console":
		return FormatConsole, nil
	case "logfmt":
		return FormatLogfmt, nil
	default:
		return FormatJSON, &ParseError{Input: format, Type: "format"}
	}
}

// Formatter defines the interface for log formatters
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// GetFormatter returns a formatter for the specified format
func GetFormatter(format Format) Formatter {
	switch format {
	case FormatText:
		return NewTextFormatter()
	case FormatConsole:
		return NewConsoleFormatter()
	case FormatLogfmt:
		return &LogfmtFormatter{}
	default:
		return &JSONFormatter{}
	}
}

// fieldValue converts values that do not encode well into printable forms
func fieldValue(v interface{}) interface{} {
	switch val := v.(type) {
	case error:
		return val.Error()
	case time.Duration:
		return val.String()
	case fmt.Stringer:
		return val.String()
	default:
		return v
	}
}

// JSONFormatter formats log entries as JSON
type JSONFormatter struct {
	// PrettyPrint enables indented JSON output
	PrettyPrint bool
}

// Format formats a log entry as JSON
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Fields)+6)
	for k, v := range entry.Fields {
		data[k] = fieldValue(v)
	}

	data["timestamp"] = entry.Timestamp.Format(time.RFC3339Nano)
	data["level"] = entry.Level.String()
	data["message"] = entry.Message
	if entry.Logger != "" {
		data["logger"] = entry.Logger
	}
	if entry.RunID != "" {
		data["run_id"] = entry.RunID
	}
	if entry.Error != nil {
		data["error"] = entry.Error.Error()
		if m, ok := entry.Error.(interface{ MarshalJSON() ([]byte, error) }); ok {
			if raw, err := m.MarshalJSON(); err == nil {
				data["error_details"] = jsontext.Value(raw)
			}
		}
	}

	opts := []json.Options{json.Deterministic(true)}
	if f.PrettyPrint {
		opts = append(opts, jsontext.Multiline(true), jsontext.WithIndent("  "))
	}
	out, err := json.Marshal(data, opts...)
	if err != nil {
		// Fall back to printable values when a field type refuses to encode.
		for k, v := range data {
			if _, isRaw := v.(jsontext.Value); !isRaw {
				data[k] = fmt.Sprint(v)
			}
		}
		if out, err = json.Marshal(data, opts...); err != nil {
			return nil, err
		}
	}
	return append(out, '\n'), nil
}

// TextFormatter formats log entries as human-readable text
type TextFormatter struct {
	TimestampFormat  string
	DisableTimestamp bool

	// levelStyle renders the level badge; identity for plain text
	levelStyle func(Level, string) string
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{
		TimestampFormat: "15:04:05.000",
		levelStyle:      func(_ Level, s string) string { return s },
	}
}

// Format formats a log entry as text
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var parts []string

	if !f.DisableTimestamp {
		parts = append(parts, entry.Timestamp.Format(f.TimestampFormat))
	}
	parts = append(parts, f.levelStyle(entry.Level, "["+entry.Level.ShortString()+"]"))
	if entry.Logger != "" {
		parts = append(parts, fmt.Sprintf("{%s}", entry.Logger))
	}
	if entry.RunID != "" {
		parts = append(parts, fmt.Sprintf("(run=%s)", entry.RunID))
	}
	parts = append(parts, entry.Message)

	if len(entry.Fields) > 0 {
		fieldParts := make([]string, 0, len(entry.Fields))
		for _, k := range entry.Fields.Keys() {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, fieldValue(entry.Fields[k])))
		}
		parts = append(parts, fmt.Sprintf("[%s]", strings.Join(fieldParts, " ")))
	}
	if entry.Error != nil {
		parts = append(parts, fmt.Sprintf("error=%q", entry.Error.Error()))
	}

	return []byte(strings.Join(parts, " ") + "\n"), nil
}

var levelColors = map[Level]lipgloss.Color{
	LevelTrace: lipgloss.Color("#6B7280"),
	LevelDebug: lipgloss.Color("#3B82F6"),
	LevelInfo:  lipgloss.Color("#10B981"),
	LevelWarn:  lipgloss.Color("#F59E0B"),
	LevelError: lipgloss.Color("#EF4444"),
	LevelFatal: lipgloss.Color("#7C3AED"),
}

// NewConsoleFormatter creates a text formatter with coloured level badges
func NewConsoleFormatter() *TextFormatter {
	f := NewTextFormatter()
	f.levelStyle = func(level Level, s string) string {
		return lipgloss.NewStyle().Bold(true).Foreground(levelColors[level]).Render(s)
	}
	return f
}

// LogfmtFormatter formats log entries in logfmt format (key=value pairs)
type LogfmtFormatter struct{}

// Format formats a log entry in logfmt format
func (f *LogfmtFormatter) Format(entry *Entry) ([]byte, error) {
	parts := []string{
		"timestamp=" + entry.Timestamp.Format(time.RFC3339),
		"level=" + entry.Level.String(),
		fmt.Sprintf("message=%q", entry.Message),
	}
	if entry.Logger != "" {
		parts = append(parts, "logger="+entry.Logger)
	}
	if entry.RunID != "" {
		parts = append(parts, "run_id="+entry.RunID)
	}
	for _, k := range entry.Fields.Keys() {
		v := fieldValue(entry.Fields[k])
		if str, ok := v.(string); ok {
			parts = append(parts, fmt.Sprintf("%s=%q", k, str))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	if entry.Error != nil {
		parts = append(parts, fmt.Sprintf("error=%q", entry.Error.Error()))
	}
	return []byte(strings.Join(parts, " ") + "\n"), nil
}
