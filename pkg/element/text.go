// SPDX-License-Identifier: MPL-2.0

package element

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

const (
	// EncodingNone marks a payload that decoded under no attempted encoding.
	EncodingNone Encoding = "none"
	// EncodingUTF16BE is big-endian UTF-16, the export format of older platform releases.
	EncodingUTF16BE Encoding = "utf-16be"
	// EncodingUTF8 is UTF-8, with or without a byte order mark.
	EncodingUTF8 Encoding = "utf-8"
)

// ErrUndecodable is wrapped by every DecodeError.
var ErrUndecodable = errors.New("payload is not decodable")

// NoText is the decode result for binary or undecodable payloads.
var NoText = Text{encoding: EncodingNone}

type (
	// Encoding names the text encoding a payload was decoded with.
	Encoding string

	// Text is a decoded payload. A Text built by a failed decode carries no
	// value; use Value to tell the two cases apart.
	Text struct {
		value    string
		encoding Encoding
	}

	// DecodeError records why one decoding attempt rejected a payload.
	DecodeError struct {
		Encoding Encoding
		Reason   string
	}

	// decodeAttempt is one entry in the ordered list of encodings tried by Decode.
	decodeAttempt struct {
		encoding Encoding
		decode   func([]byte) (string, error)
	}
)

// decodeAttempts is tried in order; the first success wins.
var decodeAttempts = []decodeAttempt{
	{encoding: EncodingUTF16BE, decode: decodeUTF16BE},
	{encoding: EncodingUTF8, decode: decodeUTF8},
}

// Error implements the error interface for DecodeError.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s decoding failed: %s", e.Encoding, e.Reason)
}

// Unwrap returns ErrUndecodable for errors.Is() compatibility.
func (e *DecodeError) Unwrap() error { return ErrUndecodable }

// NewText wraps an already decoded string.
func NewText(value string, enc Encoding) Text {
	return Text{value: value, encoding: enc}
}

// Decode tries every supported encoding in order and returns NoText when all fail.
func Decode(data []byte) Text {
	text, _ := DecodeTrace(data)
	return text
}

// DecodeTrace is Decode that also returns the rejection of each failed attempt.
func DecodeTrace(data []byte) (Text, []error) {
	var rejected []error
	for _, attempt := range decodeAttempts {
		value, err := attempt.decode(data)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		return Text{value: value, encoding: attempt.encoding}, rejected
	}
	return NoText, rejected
}

// Value returns the decoded string and whether a decode succeeded.
func (t Text) Value() (string, bool) {
	return t.value, t.Present()
}

// Present reports whether the payload decoded to text.
func (t Text) Present() bool {
	return t.encoding != "" && t.encoding != EncodingNone
}

// Encoding returns the encoding that decoded the payload, EncodingNone otherwise.
func (t Text) Encoding() Encoding {
	if !t.Present() {
		return EncodingNone
	}
	return t.encoding
}

// String returns the decoded text, or the empty string for NoText.
func (t Text) String() string { return t.value }

// String returns the encoding label.
func (e Encoding) String() string { return string(e) }

// decodeUTF16BE accepts only payloads that look like UTF-16BE text: even length,
// a BOM or at least one zero byte, well-formed surrogate pairs and no control
// characters besides tab, LF and CR.
func decodeUTF16BE(data []byte) (string, error) {
	fail := func(reason string) (string, error) {
		return "", &DecodeError{Encoding: EncodingUTF16BE, Reason: reason}
	}
	if len(data) == 0 {
		return fail("empty payload")
	}
	if len(data)%2 != 0 {
		return fail("odd byte length")
	}
	hasBOM := data[0] == 0xFE && data[1] == 0xFF
	// Without this even-length ASCII would decode as UTF-16BE. The cost: BOM-less
	// text whose code units have no zero byte (e.g. CJK only) falls through to UTF-8.
	if !hasBOM && bytes.IndexByte(data, 0) < 0 {
		return fail("no byte order mark and no zero bytes")
	}

	start := 0
	if hasBOM {
		start = 2
	}
	for i := start; i < len(data); i += 2 {
		u := uint16(data[i])<<8 | uint16(data[i+1])
		switch {
		case u >= 0xD800 && u <= 0xDBFF:
			if i+3 >= len(data) {
				return fail("truncated surrogate pair")
			}
			next := uint16(data[i+2])<<8 | uint16(data[i+3])
			if next < 0xDC00 || next > 0xDFFF {
				return fail("unpaired high surrogate")
			}
			i += 2
		case u >= 0xDC00 && u <= 0xDFFF:
			return fail("unpaired low surrogate")
		case u < 0x20 && u != '\t' && u != '\n' && u != '\r':
			return fail(fmt.Sprintf("control character U+%04X", u))
		}
	}

	out, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(data)
	if err != nil {
		return fail(err.Error())
	}
	return string(out), nil
}

// decodeUTF8 accepts valid UTF-8 without NUL bytes and strips a leading BOM.
func decodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &DecodeError{Encoding: EncodingUTF8, Reason: "invalid UTF-8 sequence"}
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return "", &DecodeError{Encoding: EncodingUTF8, Reason: "NUL byte in payload"}
	}
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return "", &DecodeError{Encoding: EncodingUTF8, Reason: err.Error()}
	}
	return string(out), nil
}
