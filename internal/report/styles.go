// SPDX-License-Identifier: MPL-2.0

package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vrodiff/vro-diff/pkg/classify"
)

// Outcome colours, chosen for dark terminal backgrounds.
const (
	// ColorPrimary is purple - used for table titles.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray - used for borders and secondary text.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorNoUpgrade is turquoise.
	ColorNoUpgrade = lipgloss.Color("#2DD4BF")
	// ColorUpgrade is green.
	ColorUpgrade = lipgloss.Color("#84CC16")
	// ColorNew is yellow.
	ColorNew = lipgloss.Color("#FACC15")
	// ColorConflict is red.
	ColorConflict = lipgloss.Color("#EF4444")
	// ColorUnsupported is light gray.
	ColorUnsupported = lipgloss.Color("#C7C7C7")
	// ColorWarning is amber - used for the unexpected values table.
	ColorWarning = lipgloss.Color("#F59E0B")
)

// Symbols is the marker printed in the Result column for each outcome.
type Symbols map[classify.Outcome]string

var (
	// UnicodeSymbols are the default markers.
	UnicodeSymbols = Symbols{
		classify.NoUpgrade:        "⇄",
		classify.Unsupported:      "⇄",
		classify.New:              "+",
		classify.Upgrade:          "⇉",
		classify.Conflict:         "≠",
		classify.UnexpectedValues: "⚠",
	}

	// ASCIISymbols are used when the terminal cannot print the Unicode markers.
	ASCIISymbols = Symbols{
		classify.NoUpgrade:        "<=>",
		classify.Unsupported:      "<=>",
		classify.New:              "+",
		classify.Upgrade:          "=>",
		classify.Conflict:         "!=",
		classify.UnexpectedValues: "!",
	}

	outcomeColors = map[classify.Outcome]lipgloss.Color{
		classify.NoUpgrade:        ColorNoUpgrade,
		classify.Unsupported:      ColorUnsupported,
		classify.New:              ColorNew,
		classify.Upgrade:          ColorUpgrade,
		classify.Conflict:         ColorConflict,
		classify.UnexpectedValues: ColorWarning,
	}
)

// Symbol returns the marker for o.
func (s Symbols) Symbol(o classify.Outcome) string { return s[o] }
