package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#10B981")
	colorAccent    = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
	colorFg        = lipgloss.Color("#F9FAFB")
)

// Styles
var (
	// Tree styles
	RuleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	KindStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	ImageStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	EnumeratorStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			PaddingRight(1)

	// Result styles
	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	MutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Table styles
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Padding(0, 1)

	CellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	BorderStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)
