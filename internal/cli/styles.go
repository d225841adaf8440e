// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// SuccessColor indicates clean transactions and completed steps.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates suspect verdicts.
	WarningColor = lipgloss.Color("#FFE66D")
	// AlertColor indicates confirmed offshore verdicts.
	AlertColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AlertColor).
			MarginBottom(1)

	// SuccessStyle formats clean verdicts.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats suspect verdicts.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// AlertStyle formats confirmed offshore verdicts.
	AlertStyle = lipgloss.NewStyle().
			Foreground(AlertColor).
			Bold(true)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoxStyle is used for the summary box.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)
)
