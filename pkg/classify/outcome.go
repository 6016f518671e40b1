// SPDX-License-Identifier: MPL-2.0

package classify

import (
	"errors"
	"fmt"
)

const (
	// NoUpgrade is a matched item with the same version and identical content.
	NoUpgrade Outcome = "no_upgrade"
	// Upgrade is a matched item whose compared version is newer.
	Upgrade Outcome = "upgrade"
	// Conflict is a matched item that is older, or equal in version with different content.
	Conflict Outcome = "conflict"
	// New is a recognized item absent from the reference package.
	New Outcome = "new"
	// Unsupported is an item of an unrecognized kind, or one without a version.
	Unsupported Outcome = "unsupported"
	// UnexpectedValues is a configuration element carrying attribute values.
	// It is recorded in addition to the item's primary outcome.
	UnexpectedValues Outcome = "unexpected_values"
)

// ErrInvalidOutcome is returned when an Outcome value is not one of the defined outcomes.
var ErrInvalidOutcome = errors.New("invalid outcome")

type (
	// Outcome is the bucket an item is classified into.
	Outcome string

	// InvalidOutcomeError is returned when an Outcome value is not recognized.
	InvalidOutcomeError struct {
		Value Outcome
	}
)

// Error implements the error interface for InvalidOutcomeError.
func (e *InvalidOutcomeError) Error() string {
	return fmt.Sprintf("invalid outcome %q", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidOutcomeError) Unwrap() error { return ErrInvalidOutcome }

// PrimaryOutcomes returns the mutually exclusive outcomes in report order.
func PrimaryOutcomes() []Outcome {
	return []Outcome{NoUpgrade, Unsupported, New, Upgrade, Conflict}
}

// Outcomes returns every outcome, primary ones first.
func Outcomes() []Outcome {
	return append(PrimaryOutcomes(), UnexpectedValues)
}

// String returns the outcome name.
func (o Outcome) String() string { return string(o) }

// Validate returns nil if o is one of the defined outcomes.
func (o Outcome) Validate() error {
	switch o {
	case NoUpgrade, Upgrade, Conflict, New, Unsupported, UnexpectedValues:
		return nil
	default:
		return &InvalidOutcomeError{Value: o}
	}
}

// IsPrimary reports whether o is one of the mutually exclusive outcomes.
func (o Outcome) IsPrimary() bool {
	return o.Validate() == nil && o != UnexpectedValues
}
