// SPDX-License-Identifier: MPL-2.0

package element

import (
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security boundary
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"

	"github.com/zeebo/blake3"
)

const (
	// ChecksumSHA1 is the fingerprint historically used for package items.
	ChecksumSHA1 ChecksumAlgorithm = "sha1"
	// ChecksumSHA256 is SHA-256.
	ChecksumSHA256 ChecksumAlgorithm = "sha256"
	// ChecksumBLAKE3 is BLAKE3 with a 256-bit digest.
	ChecksumBLAKE3 ChecksumAlgorithm = "blake3"

	// DefaultChecksum is used when no algorithm is configured.
	DefaultChecksum = ChecksumSHA1
)

// ErrInvalidChecksumAlgorithm is returned when a ChecksumAlgorithm is not one of the defined algorithms.
var ErrInvalidChecksumAlgorithm = errors.New("invalid checksum algorithm")

type (
	// ChecksumAlgorithm selects the hash used to fingerprint raw payload bytes.
	ChecksumAlgorithm string

	// InvalidChecksumAlgorithmError is returned when a ChecksumAlgorithm value is not recognized.
	InvalidChecksumAlgorithmError struct {
		Value ChecksumAlgorithm
	}
)

// Error implements the error interface for InvalidChecksumAlgorithmError.
func (e *InvalidChecksumAlgorithmError) Error() string {
	return fmt.Sprintf("invalid checksum algorithm %q (valid: sha1, sha256, blake3)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidChecksumAlgorithmError) Unwrap() error { return ErrInvalidChecksumAlgorithm }

// String returns the algorithm name.
func (a ChecksumAlgorithm) String() string { return string(a) }

// Validate returns nil if a is a known algorithm. The empty value is accepted
// and means DefaultChecksum.
func (a ChecksumAlgorithm) Validate() error {
	switch a {
	case "", ChecksumSHA1, ChecksumSHA256, ChecksumBLAKE3:
		return nil
	default:
		return &InvalidChecksumAlgorithmError{Value: a}
	}
}

// Sum returns the hex digest of data.
func (a ChecksumAlgorithm) Sum(data []byte) (string, error) {
	var h hash.Hash
	switch a {
	case "", ChecksumSHA1:
		h = sha1.New() //nolint:gosec // see import
	case ChecksumSHA256:
		h = sha256.New()
	case ChecksumBLAKE3:
		h = blake3.New()
	default:
		return "", &InvalidChecksumAlgorithmError{Value: a}
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
