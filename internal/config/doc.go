// SPDX-License-Identifier: MPL-2.0

// Package config handles vro-diff configuration using Viper with CUE as the file format.
//
// The configuration file is looked up in this order: the file given with
// --config, config.cue in the platform configuration directory
// (~/.config/vro-diff on Linux, ~/Library/Application Support/vro-diff on
// macOS, %APPDATA%\vro-diff on Windows), then config.cue in the working
// directory. Without a file the defaults apply. Environment variables with
// the VRODIFF_ prefix override both, for example VRODIFF_DIFF_CONTEXT=5.
//
// Files are validated against the embedded config_schema.cue before being
// merged, so a typo in a key or an unknown enum value is reported with its path.
package config
