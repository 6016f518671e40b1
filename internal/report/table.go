// SPDX-License-Identifier: MPL-2.0

// Package report presents a classification result: styled tables and a
// legend for terminals, or a serialized document for other tools.
package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/vrodiff/vro-diff/pkg/classify"
	"github.com/vrodiff/vro-diff/pkg/element"
)

// Column headers of the classification table.
var diffHeaders = []string{"ID", "Name", "Type", "Version B", "Result", "Version A"}

const resultColumn = 4

type (
	// Options configures a Renderer.
	Options struct {
		// ASCII uses ASCII symbols and borders.
		ASCII bool
		// NoColor disables all colours.
		NoColor bool
		// Width wraps the legend. Zero means 80.
		Width int
	}

	// Renderer turns results into terminal output. Presentation settings live
	// here rather than in the classification core.
	Renderer struct {
		opts    Options
		lip     *lipgloss.Renderer
		symbols Symbols
	}
)

// NewRenderer returns a Renderer whose colour profile follows w, or no colour
// at all when opts.NoColor is set.
func NewRenderer(w io.Writer, opts Options) *Renderer {
	lip := lipgloss.NewRenderer(w)
	if opts.NoColor {
		lip.SetColorProfile(termenv.Ascii)
	}
	symbols := UnicodeSymbols
	if opts.ASCII {
		symbols = ASCIISymbols
	}
	return &Renderer{opts: opts, lip: lip, symbols: symbols}
}

// DiffTable renders the classification table: one row per compared item,
// grouped as no_upgrade, unsupported, new, upgrade, conflict.
func (r *Renderer) DiffTable(res *classify.Result) string {
	var rows [][]string
	var outcomes []classify.Outcome
	for _, o := range classify.PrimaryOutcomes() {
		for _, it := range res.Items(o) {
			rows = append(rows, diffRow(it, o, r.symbols))
			outcomes = append(outcomes, o)
		}
	}

	t := r.newTable(diffHeaders, rows, func(row, col int) lipgloss.Style {
		style := r.lip.NewStyle().Padding(0, 1)
		if row >= 0 && col == resultColumn {
			style = style.Foreground(outcomeColors[outcomes[row]]).Align(lipgloss.Center)
		}
		return style
	})
	return r.title("Diff between packages") + "\n" + t.String()
}

// UnexpectedValuesTable renders the configuration elements carrying values.
// It returns the empty string when there are none.
func (r *Renderer) UnexpectedValuesTable(res *classify.Result) string {
	items := res.Items(classify.UnexpectedValues)
	if len(items) == 0 {
		return ""
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.ID, it.Name, it.Kind.String(), it.Version.String(), strconv.Itoa(it.ValuedAttributeCount)})
	}
	t := r.newTable([]string{"ID", "Name", "Type", "Version B", "Values"}, rows, func(row, col int) lipgloss.Style {
		style := r.lip.NewStyle().Padding(0, 1)
		if row >= 0 && col == 4 {
			style = style.Foreground(ColorWarning).Align(lipgloss.Right)
		}
		return style
	})
	return r.title("Configuration elements with values") + "\n" + t.String()
}

// ItemsTable renders the items of a single package.
func (r *Renderer) ItemsTable(title string, items []*element.Item) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			it.ID, it.Name, it.Kind.String(), it.Version.String(),
			it.Text.Encoding().String(), shortChecksum(it.Checksum),
		})
	}
	t := r.newTable([]string{"ID", "Name", "Type", "Version", "Encoding", "Checksum"}, rows, func(row, _ int) lipgloss.Style {
		style := r.lip.NewStyle().Padding(0, 1)
		if row >= 0 && !items[row].IsSupported() {
			style = style.Foreground(ColorUnsupported)
		}
		return style
	})
	return r.title(title) + "\n" + t.String()
}

// Summary is a one-line count per outcome.
func (r *Renderer) Summary(res *classify.Result) string {
	parts := make([]string, 0, len(classify.Outcomes()))
	for _, o := range classify.Outcomes() {
		n := res.Count(o)
		if o == classify.UnexpectedValues && n == 0 {
			continue
		}
		label := r.lip.NewStyle().Foreground(outcomeColors[o]).Render(o.String())
		parts = append(parts, label+": "+strconv.Itoa(n))
	}
	return strings.Join(parts, "  ")
}

func (r *Renderer) newTable(headers []string, rows [][]string, style table.StyleFunc) *table.Table {
	border := lipgloss.RoundedBorder()
	if r.opts.ASCII {
		border = lipgloss.ASCIIBorder()
	}
	return table.New().
		Border(border).
		BorderStyle(r.lip.NewStyle().Foreground(ColorMuted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.lip.NewStyle().Bold(true).Padding(0, 1)
			}
			return style(row, col)
		})
}

func (r *Renderer) title(s string) string {
	return r.lip.NewStyle().Bold(true).Foreground(ColorPrimary).Render(s)
}

func diffRow(it *element.Item, o classify.Outcome, symbols Symbols) []string {
	versionB, versionA := it.Version.String(), ""
	if it.ComparedVersion != nil {
		versionA = it.ComparedVersion.String()
	}
	if o == classify.Unsupported {
		versionB, versionA = "", ""
	}
	return []string{it.ID, it.Name, it.Kind.String(), versionB, symbols.Symbol(o), versionA}
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
