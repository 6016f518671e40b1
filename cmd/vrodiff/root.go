// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/vrodiff/vro-diff/internal/config"
	"github.com/vrodiff/vro-diff/internal/report"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
	logFile    string
	ascii      bool
	noColor    bool
	format     string
	checksum   string
	strict     bool
	workers    int
}

// NewRootCommand builds the command tree. The root command compares two packages.
func NewRootCommand(app *App) *cobra.Command {
	gf := &globalFlags{}
	cf := &compareFlags{}

	rootCmd := &cobra.Command{
		Use:   "vro-diff [flags] <file A> <file B>",
		Short: "Compare two vRO packages before an import",
		Long: TitleStyle.Render("vro-diff") + SubtitleStyle.Render(" - Compare two vRO packages before an import") + `

File A is the package currently imported on the target platform, file B the
package about to be imported. Every element of file B is classified:

  no_upgrade    same version and content as in file A
  upgrade       higher version than in file A
  conflict      lower version, or same version with different content
  new           not present in file A
  unsupported   unsupported type, or no version

` + SubtitleStyle.Render("Examples:") + `
  vro-diff current.package release.package
  vro-diff -l -d ./diffs current.package release.package
  vro-diff -t -e current.package release.package || echo "import blocked"
  vro-diff -f json current.package release.package > report.json
  vro-diff inspect release.package`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runCompare(cmd, gf, cf, args[0], args[1])
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&gf.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/vro-diff/config.cue)")
	pf.BoolVarP(&gf.verbose, "verbose", "v", false, "mirror the log to stderr at debug level")
	pf.StringVar(&gf.logFile, "log-file", config.DefaultLogFile, `log file, truncated on each run ("" disables it)`)
	pf.BoolVarP(&gf.ascii, "ascii", "a", false, "use ASCII symbols and table borders")
	pf.BoolVarP(&gf.noColor, "no-color", "b", false, "disable colours")
	pf.StringVarP(&gf.format, "format", "f", string(report.FormatTable), "output format: table, json, yaml, toml")
	pf.StringVar(&gf.checksum, "checksum", "", "item fingerprint: sha1, sha256, blake3 (default sha1)")
	pf.BoolVar(&gf.strict, "strict", false, "fail on malformed elements instead of reporting them unsupported")
	pf.IntVar(&gf.workers, "workers", 0, "parallel item parsers (0 means one per CPU)")

	f := rootCmd.Flags()
	f.BoolVarP(&cf.legend, "legend", "l", false, "print the legend after the table")
	f.BoolVarP(&cf.test, "test", "t", false, "exit with the number of conflicts (0 when the import is safe)")
	f.StringVarP(&cf.diffDir, "diff", "d", "", "write a unified diff per matched element into this directory")
	f.IntVar(&cf.diffContext, "context", config.DefaultDiffContext, "context lines in unified diffs")
	f.BoolVarP(&cf.emptyConfig, "empty-config", "e", false, "report configuration elements carrying values")

	rootCmd.AddCommand(newInspectCommand(app, gf))
	rootCmd.AddCommand(newConfigCommand(app, gf))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Run executes the CLI with os.Args and returns the process status.
func Run() int {
	app := NewApp(Dependencies{})
	err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	)
	return int(exitCodeFor(err))
}

// Execute runs the CLI and exits. It is called by main.main().
func Execute() {
	os.Exit(Run())
}

// handleError renders command errors. Test-mode exit statuses are results
// and print nothing; usage errors keep fang's default rendering.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(w, svcErr)
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
