// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vrodiff/vro-diff/internal/report"
	"github.com/vrodiff/vro-diff/pkg/element"
)

const (
	// LogLevelDebug logs parsing and decoding details.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs totals and conflicts.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs only warnings such as unsupported items.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs only errors.
	LogLevelError LogLevel = "error"

	// DefaultLogFile is the log file written in the working directory.
	DefaultLogFile = "diff.log"
	// DefaultDiffContext is the number of context lines around each change.
	DefaultDiffContext = 3
	// maxDiffContext mirrors the bound in config_schema.cue.
	maxDiffContext = 100
	// maxWorkers mirrors the bound in config_schema.cue.
	maxWorkers = 256
)

var (
	// ErrInvalidLogLevel is the sentinel error wrapped by InvalidLogLevelError.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level written to the log.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// Config is the complete vro-diff configuration.
	Config struct {
		// Checksum selects the item fingerprint algorithm.
		Checksum element.ChecksumAlgorithm `json:"checksum" mapstructure:"checksum"`
		// Strict aborts on malformed payloads instead of downgrading the item.
		Strict bool `json:"strict" mapstructure:"strict"`
		// Workers bounds parallel item parsing. 0 means one per CPU.
		Workers int `json:"workers" mapstructure:"workers"`
		// UI holds presentation settings.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Diff holds unified diff output settings.
		Diff DiffConfig `json:"diff" mapstructure:"diff"`
		// Checks holds optional checks.
		Checks ChecksConfig `json:"checks" mapstructure:"checks"`
		// Log holds the log sink settings.
		Log LogConfig `json:"log" mapstructure:"log"`
	}

	// UIConfig configures the terminal output.
	UIConfig struct {
		ASCII  bool          `json:"ascii" mapstructure:"ascii"`
		Color  bool          `json:"color" mapstructure:"color"`
		Legend bool          `json:"legend" mapstructure:"legend"`
		Format report.Format `json:"format" mapstructure:"format"`
	}

	// DiffConfig configures unified diff files.
	DiffConfig struct {
		// OutputDir receives the diffs. Empty disables them.
		OutputDir string `json:"output_dir" mapstructure:"output_dir"`
		Context   int    `json:"context" mapstructure:"context"`
	}

	// ChecksConfig toggles the optional checks.
	ChecksConfig struct {
		// EmptyConfig reports configuration elements that carry values.
		EmptyConfig bool `json:"empty_config" mapstructure:"empty_config"`
	}

	// LogConfig configures the log file.
	LogConfig struct {
		// File is the log path. Empty disables the file sink.
		File  string   `json:"file" mapstructure:"file"`
		Level LogLevel `json:"level" mapstructure:"level"`
	}

	// InvalidConfigError collects every invalid field of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Checksum: element.DefaultChecksum,
		Workers:  0,
		UI: UIConfig{
			Color:  true,
			Format: report.FormatTable,
		},
		Diff: DiffConfig{
			Context: DefaultDiffContext,
		},
		Log: LogConfig{
			File:  DefaultLogFile,
			Level: LogLevelInfo,
		},
	}
}

// Validate checks the values CUE cannot see, such as those coming from
// flags or environment variables.
func (c Config) Validate() error {
	var errs []error
	if err := c.Checksum.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 0 || c.Workers > maxWorkers {
		errs = append(errs, fmt.Errorf("workers must be between 0 and %d, got %d", maxWorkers, c.Workers))
	}
	if c.UI.Format != "" {
		if err := c.UI.Format.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Diff.Context < 0 || c.Diff.Context > maxDiffContext {
		errs = append(errs, fmt.Errorf("diff.context must be between 0 and %d, got %d", maxDiffContext, c.Diff.Context))
	}
	if strings.TrimSpace(c.Diff.OutputDir) == "" && c.Diff.OutputDir != "" {
		errs = append(errs, errors.New("diff.output_dir must not be whitespace-only"))
	}
	if c.Log.Level != "" {
		if err := c.Log.Level.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so callers
// can match either the category or a specific field failure.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// String returns the level name.
func (l LogLevel) String() string { return string(l) }

// Validate returns nil if l is a known level.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }
