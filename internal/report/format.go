// SPDX-License-Identifier: MPL-2.0

package report

import (
	"errors"
	"fmt"
)

const (
	// FormatTable renders styled tables for a terminal.
	FormatTable Format = "table"
	// FormatJSON writes the result as indented JSON.
	FormatJSON Format = "json"
	// FormatYAML writes the result as YAML.
	FormatYAML Format = "yaml"
	// FormatTOML writes the result as TOML.
	FormatTOML Format = "toml"
)

// ErrInvalidFormat is the sentinel error wrapped by InvalidFormatError.
var ErrInvalidFormat = errors.New("invalid output format")

type (
	// Format selects how a result is written.
	Format string

	// InvalidFormatError is returned when a Format value is not recognized.
	InvalidFormatError struct {
		Value Format
	}
)

// Error implements the error interface for InvalidFormatError.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: table, json, yaml, toml)", e.Value)
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// String returns the format name.
func (f Format) String() string { return string(f) }

// Validate returns nil if f is a known format.
func (f Format) Validate() error {
	switch f {
	case FormatTable, FormatJSON, FormatYAML, FormatTOML:
		return nil
	default:
		return &InvalidFormatError{Value: f}
	}
}
