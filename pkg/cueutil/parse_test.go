// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Settings: {
	name:     string
	workers:  int & >=0
	strict:   bool
	format?:  "table" | "json"
}
`

// Optional fields are skipped when decoding a partial file.
const testPartialSchema = `
#Settings: {
	workers?: int & >=0
	strict?:  bool
}
`

type testSettings struct {
	Name    string `json:"name"`
	Workers int    `json:"workers"`
	Strict  bool   `json:"strict"`
	Format  string `json:"format,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid input decodes", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "nightly"
workers: 4
strict: true
format: "json"
`)
		res, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings")
		if err != nil {
			t.Fatalf("ParseAndDecode() error: %v", err)
		}
		want := testSettings{Name: "nightly", Workers: 4, Strict: true, Format: "json"}
		if *res.Value != want {
			t.Errorf("Value = %+v, want %+v", *res.Value, want)
		}
	})

	t.Run("constraint violation names the field", func(t *testing.T) {
		t.Parallel()

		data := []byte(`name: "x", workers: -1, strict: false`)
		_, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings", WithFilename("settings.cue"))
		if err == nil {
			t.Fatal("expected error for negative workers")
		}
		if !strings.Contains(err.Error(), "settings.cue") || !strings.Contains(err.Error(), "workers") {
			t.Errorf("error should name file and field, got: %v", err)
		}
	})

	t.Run("disallowed enum value", func(t *testing.T) {
		t.Parallel()

		data := []byte(`name: "x", workers: 1, strict: false, format: "xml"`)
		if _, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings"); err == nil {
			t.Fatal("expected error for format xml")
		}
	})

	t.Run("unknown field is rejected by closed definition", func(t *testing.T) {
		t.Parallel()

		data := []byte(`name: "x", workers: 1, strict: false, colour: true`)
		if _, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings"); err == nil {
			t.Fatal("expected error for unknown field")
		}
	})

	t.Run("non-concrete input decodes into a map", func(t *testing.T) {
		t.Parallel()

		data := []byte(`workers: 2`)
		res, err := ParseAndDecode[map[string]any]([]byte(testPartialSchema), data, "#Settings", WithConcrete(false))
		if err != nil {
			t.Fatalf("ParseAndDecode() error: %v", err)
		}
		m := *res.Value
		if _, ok := m["workers"]; !ok || len(m) != 1 {
			t.Errorf("decoded map = %v, want only workers", m)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testSettings]([]byte(testSchema), []byte(`name: `), "#Settings")
		if err == nil {
			t.Fatal("expected syntax error")
		}
		if !strings.Contains(err.Error(), "<input>") {
			t.Errorf("unnamed input should be reported as <input>, got: %v", err)
		}
	})

	t.Run("file size limit", func(t *testing.T) {
		t.Parallel()

		data := []byte(`name: "` + strings.Repeat("a", 64) + `", workers: 1, strict: false`)
		_, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings", WithMaxFileSize(16))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("expected size error, got %v", err)
		}
	})

	t.Run("missing definition", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testSettings]([]byte(testSchema), []byte(`name: "x"`), "#Nope")
		if err == nil || !strings.Contains(err.Error(), "#Nope") {
			t.Errorf("expected missing definition error, got %v", err)
		}
	})
}
