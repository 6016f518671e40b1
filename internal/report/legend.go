// SPDX-License-Identifier: MPL-2.0

package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/vrodiff/vro-diff/pkg/classify"
)

var legendEntries = []struct {
	outcome classify.Outcome
	text    string
}{
	{classify.NoUpgrade, "Items present in both packages with the same version and content. Nothing to import."},
	{classify.Unsupported, "Items of an unsupported type, or without a version. They are not compared."},
	{classify.New, "Items only present in file B. They will be created on import."},
	{classify.Upgrade, "Items with a higher version in file B. They will be upgraded on import."},
	{classify.Conflict, "Items with a version conflict."},
}

// LegendMarkdown returns the legend source for the given symbol set.
func LegendMarkdown(symbols Symbols, checkEmptyConfig bool) string {
	var sb strings.Builder
	sb.WriteString("# Legend\n\n")
	for _, e := range legendEntries {
		fmt.Fprintf(&sb, "- `%s` **%s**: %s\n", symbols.Symbol(e.outcome), e.outcome, e.text)
	}
	sb.WriteString("\n## Solving conflicts\n\n")
	sb.WriteString("- Check that the version in file A is lower than in file B.\n")
	sb.WriteString("- If versions are the same, the content is not. Upgrade the version in file B to overwrite.\n")
	if checkEmptyConfig {
		sb.WriteString("\n## Configuration elements with values\n\n")
		fmt.Fprintf(&sb, "- `%s` Configuration elements should be shipped empty. ", symbols.Symbol(classify.UnexpectedValues))
		sb.WriteString("Remove the values before exporting the package, or they will overwrite the target settings.\n")
	}
	return sb.String()
}

// Legend renders the legend with glamour. ASCII and no-colour modes use the
// plain "notty" style.
func (r *Renderer) Legend(checkEmptyConfig bool) (string, error) {
	width := r.opts.Width
	if width <= 0 {
		width = 80
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if r.opts.NoColor || r.opts.ASCII {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return renderer.Render(LegendMarkdown(r.symbols, checkEmptyConfig))
}
