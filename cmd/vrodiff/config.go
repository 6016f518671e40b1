// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vrodiff/vro-diff/internal/config"
)

// newConfigCommand creates the `vro-diff config` command tree.
func newConfigCommand(app *App, gf *globalFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vro-diff configuration",
		Long: `Manage vro-diff configuration.

Configuration is stored in:
  - Linux: ~/.config/vro-diff/config.cue
  - macOS: ~/Library/Application Support/vro-diff/config.cue
  - Windows: %APPDATA%\vro-diff\config.cue

A config.cue in the working directory is used when none exists there.
VRODIFF_* environment variables override file values (e.g. VRODIFF_CHECKSUM=sha256).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd, gf)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfigPath(gf)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd, gf)
			if err != nil {
				return classifyError(err, gf.verbose)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func (a *App) showConfig(cmd *cobra.Command, gf *globalFlags) error {
	cfg, err := a.loadConfig(cmd, gf)
	if err != nil {
		return classifyError(err, gf.verbose)
	}
	path, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: gf.configPath})
	if err != nil {
		return classifyError(err, gf.verbose)
	}

	out := a.stdout
	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if path != "" {
		fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	value := func(v any) string { return SuccessStyle.Render(fmt.Sprint(v)) }
	fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render("checksum"), value(cfg.Checksum))
	fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render("strict"), value(cfg.Strict))
	fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render("workers"), value(cfg.Workers))

	fmt.Fprintf(out, "\n%s:\n", KeyStyle.Render("ui"))
	fmt.Fprintf(out, "  ascii: %s\n", value(cfg.UI.ASCII))
	fmt.Fprintf(out, "  color: %s\n", value(cfg.UI.Color))
	fmt.Fprintf(out, "  legend: %s\n", value(cfg.UI.Legend))
	fmt.Fprintf(out, "  format: %s\n", value(cfg.UI.Format))

	fmt.Fprintf(out, "\n%s:\n", KeyStyle.Render("diff"))
	if cfg.Diff.OutputDir == "" {
		fmt.Fprintf(out, "  output_dir: %s\n", SubtitleStyle.Render("(disabled)"))
	} else {
		fmt.Fprintf(out, "  output_dir: %s\n", value(cfg.Diff.OutputDir))
	}
	fmt.Fprintf(out, "  context: %s\n", value(cfg.Diff.Context))

	fmt.Fprintf(out, "\n%s:\n", KeyStyle.Render("checks"))
	fmt.Fprintf(out, "  empty_config: %s\n", value(cfg.Checks.EmptyConfig))

	fmt.Fprintf(out, "\n%s:\n", KeyStyle.Render("log"))
	if cfg.Log.File == "" {
		fmt.Fprintf(out, "  file: %s\n", SubtitleStyle.Render("(disabled)"))
	} else {
		fmt.Fprintf(out, "  file: %s\n", value(cfg.Log.File))
	}
	fmt.Fprintf(out, "  level: %s\n", value(cfg.Log.Level))

	return nil
}

func (a *App) initConfig() error {
	path, created, err := config.CreateDefaultConfig("")
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(a.stdout, "%s %s\n", WarningStyle.Render("Configuration file already exists:"), path)
		return nil
	}
	fmt.Fprintf(a.stdout, "%s %s\n", SuccessStyle.Render("Created configuration file:"), path)
	return nil
}

func (a *App) showConfigPath(gf *globalFlags) error {
	path, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: gf.configPath})
	if err != nil {
		return classifyError(err, gf.verbose)
	}
	if path != "" {
		fmt.Fprintln(a.stdout, path)
		return nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s %s\n", filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt), SubtitleStyle.Render("(not created, using defaults)"))
	return nil
}
