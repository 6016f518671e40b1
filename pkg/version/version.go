// SPDX-License-Identifier: MPL-2.0

// Package version models the release versions carried by package elements.
//
// A version is a dotted sequence of numeric segments compared left to right,
// numerically, with missing trailing segments treated as zero: "1.2" equals
// "1.2.0" and "1.2.0" sorts before "1.10.0". An optional pre-release suffix
// ("1.0.0-rc.1") sorts before the release it qualifies and pre-releases are
// ordered with semantic versioning precedence. Build metadata ("+build.5") is
// kept for display and ignored for ordering and equality, so any two versions
// are always comparable.
package version

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid version")

// versionRegex matches dotted numeric versions with optional pre-release and build suffixes.
var versionRegex = regexp.MustCompile(`^v?(\d+(?:\.\d+)*)(?:-([0-9A-Za-z\-.]+))?(?:\+([0-9A-Za-z\-.]+))?$`)

type (
	// Version is a parsed, totally ordered release version.
	// The zero value is not meaningful; use Parse, Zero or NotAvailable.
	Version struct {
		segments    []int
		prerelease  string
		build       string
		original    string
		unavailable bool
	}

	// InvalidVersionError is returned by ParseStrict when the input is not a
	// dotted numeric version. It wraps ErrInvalidVersion for errors.Is().
	InvalidVersionError struct {
		Value  string
		Reason string
	}
)

var (
	// Zero is the version assumed when a version string is absent or unparseable.
	Zero = Version{original: "0.0.0"}

	// NotAvailable marks an element whose kind never produced a version at all.
	// It is distinct from Zero and sorts below every parsed version.
	NotAvailable = Version{unavailable: true}
)

// Error implements the error interface for InvalidVersionError.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidVersion for errors.Is() compatibility.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Parse parses s and falls back to Zero when s is empty or unparseable.
func Parse(s string) Version {
	v, err := ParseStrict(s)
	if err != nil {
		return Zero
	}
	return v
}

// ParseStrict parses s and reports why it is not a valid version.
func ParseStrict(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, &InvalidVersionError{Value: s, Reason: "empty version"}
	}

	matches := versionRegex.FindStringSubmatch(trimmed)
	if matches == nil {
		return Version{}, &InvalidVersionError{Value: s, Reason: "expected dotted numeric segments"}
	}

	parts := strings.Split(matches[1], ".")
	segments := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, &InvalidVersionError{Value: s, Reason: fmt.Sprintf("segment %q out of range", part)}
		}
		segments[i] = n
	}

	prerelease := matches[2]
	if prerelease != "" && !semver.IsValid("v0.0.0-"+prerelease) {
		return Version{}, &InvalidVersionError{Value: s, Reason: fmt.Sprintf("malformed pre-release %q", prerelease)}
	}

	return Version{
		segments:   trimTrailingZeros(segments),
		prerelease: prerelease,
		build:      matches[3],
		original:   trimmed,
	}, nil
}

// Compare returns -1 if v < other, 0 if v == other and 1 if v > other.
func (v Version) Compare(other Version) int {
	switch {
	case v.unavailable && other.unavailable:
		return 0
	case v.unavailable:
		return -1
	case other.unavailable:
		return 1
	}

	n := max(len(v.segments), len(other.segments))
	for i := range n {
		if c := cmp.Compare(segmentAt(v.segments, i), segmentAt(other.segments, i)); c != 0 {
			return c
		}
	}

	// Numeric parts are equal: defer to semver pre-release precedence, where a
	// release sorts after any of its pre-releases.
	return semver.Compare(v.precedenceKey(), other.precedenceKey())
}

// Equal reports whether v and other have the same normalized value.
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

// Greater reports whether v sorts after other.
func (v Version) Greater(other Version) bool { return v.Compare(other) > 0 }

// IsAvailable reports whether v carries a version value (parsed or defaulted).
func (v Version) IsAvailable() bool { return !v.unavailable }

// IsZero reports whether v is an available version equal to 0.0.0.
func (v Version) IsZero() bool {
	return !v.unavailable && len(v.segments) == 0 && v.prerelease == ""
}

// Segments returns a copy of the normalized numeric segments, padded to three.
func (v Version) Segments() []int {
	out := make([]int, max(3, len(v.segments)))
	copy(out, v.segments)
	return out
}

// Prerelease returns the pre-release suffix without its leading dash.
func (v Version) Prerelease() string { return v.prerelease }

// Build returns the build metadata without its leading plus sign.
func (v Version) Build() string { return v.build }

// Canonical returns the normalized form: at least three segments plus pre-release.
func (v Version) Canonical() string {
	if v.unavailable {
		return "n/a"
	}
	parts := make([]string, 0, 3)
	for _, s := range v.Segments() {
		parts = append(parts, strconv.Itoa(s))
	}
	out := strings.Join(parts, ".")
	if v.prerelease != "" {
		out += "-" + v.prerelease
	}
	return out
}

// String returns the version as written in the package, "n/a" when unavailable.
func (v Version) String() string {
	if v.unavailable {
		return "n/a"
	}
	if v.original != "" {
		return v.original
	}
	return v.Canonical()
}

// MarshalText implements encoding.TextMarshaler for report exports.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v Version) precedenceKey() string {
	if v.prerelease == "" {
		return "v0.0.0"
	}
	return "v0.0.0-" + v.prerelease
}

func segmentAt(segments []int, i int) int {
	if i < len(segments) {
		return segments[i]
	}
	return 0
}

func trimTrailingZeros(segments []int) []int {
	end := len(segments)
	for end > 0 && segments[end-1] == 0 {
		end--
	}
	return segments[:end]
}
