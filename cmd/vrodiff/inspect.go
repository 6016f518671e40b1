// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vrodiff/vro-diff/internal/issue"
	"github.com/vrodiff/vro-diff/internal/report"
	"github.com/vrodiff/vro-diff/pkg/element"
	"github.com/vrodiff/vro-diff/pkg/vropackage"
)

// newInspectCommand creates the `vro-diff inspect` command.
func newInspectCommand(app *App, gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <package>",
		Short: "List the elements of a package",
		Long: `List the elements of a single package with their type, version, payload
encoding and checksum, as they are read before a comparison.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runInspect(cmd, gf, args[0])
		},
	}
}

func (a *App) runInspect(cmd *cobra.Command, gf *globalFlags, path string) error {
	ctx := cmd.Context()

	cfg, err := a.loadConfig(cmd, gf)
	if err != nil {
		return classifyError(err, gf.verbose)
	}
	logger, err := a.openLogger(gf, cfg)
	if err != nil {
		return classifyError(err, gf.verbose)
	}
	defer func() { _ = logger.Close() }()

	wrap := func(err error) error {
		return classifyError(issue.NewErrorContext().
			WithOperation(opReadPackage).
			WithResource(path).
			WithSuggestion("Check that the file is a vRO package export").
			Wrap(err).
			BuildError(), gf.verbose)
	}

	raws, err := vropackage.ReadRaw(ctx, path, logger.Logger)
	if err != nil {
		return wrap(err)
	}
	items, err := vropackage.ParseAll(ctx, raws, vropackage.ReadOptions{
		Parse: element.ParseOptions{
			Checksum: cfg.Checksum,
			Strict:   cfg.Strict,
			Logger:   logger.Logger,
		},
		Workers: cfg.Workers,
		Logger:  logger.Logger,
	})
	if err != nil {
		return wrap(err)
	}

	name := filepath.Base(path)
	if cfg.UI.Format != report.FormatTable {
		doc := report.InventoryDocument{Package: name, Items: report.Records(items)}
		if err := report.Export(a.stdout, cfg.UI.Format, doc); err != nil {
			return classifyError(issue.WrapWithOperation(err, opWriteReport), gf.verbose)
		}
		return nil
	}

	withHistory := 0
	for _, raw := range raws {
		if raw.History != nil {
			withHistory++
		}
	}

	r := report.NewRenderer(a.stdout, rendererOptions(cfg))
	fmt.Fprintln(a.stdout, r.ItemsTable(name, items))
	fmt.Fprintf(a.stdout, "%d element(s), %d with version history\n", len(items), withHistory)
	return nil
}
