// SPDX-License-Identifier: MPL-2.0

// Package element parses the per-item payloads of a package into Items.
//
// Each item in a package is described by an info descriptor (a small key/value
// XML document naming its type) and a data payload. Recognized kinds decode
// their payload to extract a display name, a version and the textual content
// used for diffs; everything else is kept as KindUnsupported with only its
// checksum. Parsing is free of shared state, so items may be parsed in parallel.
package element

import (
	"github.com/vrodiff/vro-diff/pkg/version"
)

// Item is one artifact extracted from a package.
//
// Items are built once by Parse. ComparedVersion and ValuedAttributeCount are
// the only fields written later, by the classification pass.
type Item struct {
	// ID is the item folder name inside the package, the identity key for matching.
	ID string
	// Kind is the normalized kind.
	Kind Kind
	// RawType is the type tag as written in the info descriptor.
	RawType string
	Name    string
	// Version is version.NotAvailable when no version was ever read.
	Version version.Version
	// Checksum is the hex digest of the raw payload bytes.
	Checksum string
	// Text is the decoded payload, NoText for binary or undecodable content.
	Text Text
	// ComparedVersion is the version of the matched reference item, nil until matched.
	ComparedVersion *version.Version
	// ValuedAttributeCount is the number of configuration attributes carrying a value.
	ValuedAttributeCount int
	// Issue explains why a recognized item was downgraded to KindUnsupported.
	Issue error
}

// String returns "[kind]id".
func (it *Item) String() string {
	return "[" + it.Kind.String() + "]" + it.ID
}

// IsSupported reports whether the item takes part in version classification.
func (it *Item) IsSupported() bool { return it.Kind.IsSupported() }

// UnsupportedName is the placeholder name of items whose payload was not read.
func UnsupportedName(kind Kind) string {
	return "Unsupported: " + kind.String()
}
