// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vrodiff/vro-diff/internal/report"
)

// CLI message colours. Table colours live in internal/report.
const (
	// ColorSuccess is green - used for success states.
	ColorSuccess = lipgloss.Color("#10B981")
	// ColorError is red - used for errors.
	ColorError = lipgloss.Color("#EF4444")
	// ColorHighlight is blue - used for keys and paths.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(report.ColorPrimary)

	// SubtitleStyle is for secondary text.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(report.ColorMuted)

	// SuccessStyle is for success messages and values.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(report.ColorWarning)

	// KeyStyle is for configuration keys and file paths.
	KeyStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)
