// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for vro-diff.
//
// The root command compares two vRO packages. Subcommands list the items of a
// single package (inspect) and manage the configuration file (config).
package cmd
