// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vrodiff/vro-diff/internal/config"
	"github.com/vrodiff/vro-diff/internal/issue"
	"github.com/vrodiff/vro-diff/internal/logging"
	"github.com/vrodiff/vro-diff/internal/report"
	"github.com/vrodiff/vro-diff/pkg/classify"
	"github.com/vrodiff/vro-diff/pkg/element"
	"github.com/vrodiff/vro-diff/pkg/unidiff"
	"github.com/vrodiff/vro-diff/pkg/vropackage"
)

const opCheckOptions = "check options"

// compareFlags are the flags of the root (compare) command only.
type compareFlags struct {
	legend      bool
	test        bool
	diffDir     string
	diffContext int
	emptyConfig bool
}

func (a *App) runCompare(cmd *cobra.Command, gf *globalFlags, cf *compareFlags, referencePath, comparedPath string) error {
	ctx := cmd.Context()

	cfg, err := a.loadConfig(cmd, gf, func(cfg *config.Config) { applyCompareFlags(cmd, cf, cfg) })
	if err != nil {
		return classifyError(err, gf.verbose)
	}

	logger, err := a.openLogger(gf, cfg)
	if err != nil {
		return classifyError(err, gf.verbose)
	}
	defer func() { _ = logger.Close() }()

	reference, err := readPackage(ctx, referencePath, cfg, logger.Logger)
	if err != nil {
		return classifyError(err, gf.verbose)
	}
	compared, err := readPackage(ctx, comparedPath, cfg, logger.Logger)
	if err != nil {
		return classifyError(err, gf.verbose)
	}

	referenceName, comparedName := filepath.Base(referencePath), filepath.Base(comparedPath)
	opts := classify.Options{
		CheckEmptyConfig: cfg.Checks.EmptyConfig,
		Logger:           logger.Logger,
	}
	var diffs *unidiff.Writer
	if cfg.Diff.OutputDir != "" {
		diffs = unidiff.NewWriter(cfg.Diff.OutputDir, referenceName, comparedName,
			unidiff.WithContext(cfg.Diff.Context),
			unidiff.WithLogger(logger.Logger),
		)
		opts.Diff = diffs
	}

	res, err := classify.Classify(reference, compared, opts)
	if err != nil {
		return classifyError(issue.NewErrorContext().
			WithOperation(opWriteDiffs).
			WithResource(cfg.Diff.OutputDir).
			WithSuggestion("Check that the directory is writable").
			Wrap(err).
			BuildError(), gf.verbose)
	}

	if err := a.writeComparison(cfg, res, diffs, referenceName, comparedName); err != nil {
		return classifyError(err, gf.verbose)
	}

	if cf.test {
		code := res.ExitCode(cfg.Checks.EmptyConfig)
		logger.Info("Test mode", "exit", code)
		if !code.IsSuccess() {
			return &ExitError{Code: code}
		}
	}
	return nil
}

func (a *App) writeComparison(cfg *config.Config, res *classify.Result, diffs *unidiff.Writer, referenceName, comparedName string) error {
	out := a.stdout
	if cfg.UI.Format != report.FormatTable {
		if err := report.Export(out, cfg.UI.Format, report.NewDocument(referenceName, comparedName, res)); err != nil {
			return issue.WrapWithOperation(err, opWriteReport)
		}
		return nil
	}

	r := report.NewRenderer(out, rendererOptions(cfg))
	fmt.Fprintln(out, r.DiffTable(res))
	if cfg.Checks.EmptyConfig {
		if t := r.UnexpectedValuesTable(res); t != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, t)
		}
	}
	fmt.Fprintln(out, r.Summary(res))
	if diffs != nil {
		fmt.Fprintf(out, "%d diff file(s) written to %s\n", len(diffs.Written()), cfg.Diff.OutputDir)
	}
	if cfg.UI.Legend {
		legend, err := r.Legend(cfg.Checks.EmptyConfig)
		if err != nil {
			return issue.WrapWithOperation(err, "render legend")
		}
		fmt.Fprint(out, legend)
	}
	return nil
}

// loadConfig loads the configuration, applies the global flags that were set
// explicitly on the command line plus any command-specific overrides, and
// validates the result.
func (a *App) loadConfig(cmd *cobra.Command, gf *globalFlags, overrides ...func(*config.Config)) (*config.Config, error) {
	cfg, err := a.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: gf.configPath})
	if err != nil {
		return nil, err
	}
	applyGlobalFlags(cmd, gf, cfg)
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation(opCheckOptions).
			WithSuggestion("Run 'vro-diff --help' to list the accepted values").
			Wrap(err).
			BuildError()
	}
	return cfg, nil
}

func (a *App) openLogger(gf *globalFlags, cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.New(logging.Options{
		FilePath: cfg.Log.File,
		Level:    cfg.Log.Level.String(),
		Verbose:  gf.verbose,
		Stderr:   a.stderr,
	})
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation(opOpenLog).
			WithResource(cfg.Log.File).
			WithSuggestion(`Use --log-file "" to disable the log file`).
			Wrap(err).
			BuildError()
	}
	return logger, nil
}

func readPackage(ctx context.Context, path string, cfg *config.Config, logger *log.Logger) ([]*element.Item, error) {
	logger.Info("Reading package", "file", path)
	items, err := vropackage.Read(ctx, path, vropackage.ReadOptions{
		Parse: element.ParseOptions{
			Checksum: cfg.Checksum,
			Strict:   cfg.Strict,
			Logger:   logger,
		},
		Workers: cfg.Workers,
		Logger:  logger,
	})
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation(opReadPackage).
			WithResource(path).
			WithSuggestion("Check that the file is a vRO package export").
			WithSuggestion("Run 'vro-diff inspect " + path + "' to see which elements can be read").
			Wrap(err).
			BuildError()
	}
	return items, nil
}

func rendererOptions(cfg *config.Config) report.Options {
	return report.Options{ASCII: cfg.UI.ASCII, NoColor: !cfg.UI.Color}
}

// applyGlobalFlags overrides configuration values with the flags that were
// explicitly set.
func applyGlobalFlags(cmd *cobra.Command, gf *globalFlags, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("log-file") {
		cfg.Log.File = gf.logFile
	}
	if fs.Changed("ascii") {
		cfg.UI.ASCII = gf.ascii
	}
	if fs.Changed("no-color") {
		cfg.UI.Color = !gf.noColor
	}
	if fs.Changed("format") {
		cfg.UI.Format = report.Format(gf.format)
	}
	if fs.Changed("checksum") {
		cfg.Checksum = element.ChecksumAlgorithm(gf.checksum)
	}
	if fs.Changed("strict") {
		cfg.Strict = gf.strict
	}
	if fs.Changed("workers") {
		cfg.Workers = gf.workers
	}
}

func applyCompareFlags(cmd *cobra.Command, cf *compareFlags, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("legend") {
		cfg.UI.Legend = cf.legend
	}
	if fs.Changed("diff") {
		cfg.Diff.OutputDir = cf.diffDir
	}
	if fs.Changed("context") {
		cfg.Diff.Context = cf.diffContext
	}
	if fs.Changed("empty-config") {
		cfg.Checks.EmptyConfig = cf.emptyConfig
	}
}
