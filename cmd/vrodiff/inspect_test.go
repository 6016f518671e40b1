// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/vrodiff/vro-diff/internal/report"
	"github.com/vrodiff/vro-diff/internal/testutil/packagetest"
)

func TestInspect(t *testing.T) {
	t.Parallel()

	path := packagetest.New().
		AddWorkflow("W1", "Deploy VM", "1.0.0").
		AddEntry("elements/W1/version-history", []byte("<history/>")).
		AddAction("A1", "getName", "2.0.0").
		Add("X1", "CustomPlugin", []byte("opaque")).
		WriteFile(t, t.TempDir(), "inventory.package")

	t.Run("table", func(t *testing.T) {
		t.Parallel()

		out, _, err := runCLI(t, testConfig(), "inspect", "--no-color", path)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"inventory.package", "Deploy VM", "getName", "utf-16be", "Unsupported: Unsupported", "3 element(s), 1 with version history"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		out, _, err := runCLI(t, testConfig(), "inspect", "-f", "json", path)
		if err != nil {
			t.Fatal(err)
		}
		var doc report.InventoryDocument
		if err := json.Unmarshal([]byte(out), &doc); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if doc.Package != "inventory.package" || len(doc.Items) != 3 {
			t.Fatalf("document = %+v", doc)
		}
		byID := make(map[string]report.ItemRecord, len(doc.Items))
		for _, rec := range doc.Items {
			byID[rec.ID] = rec
		}
		if byID["W1"].Version != "1.0.0" || byID["W1"].Encoding != "utf-16be" {
			t.Errorf("W1 record = %+v", byID["W1"])
		}
		if byID["X1"].RawType != "CustomPlugin" {
			t.Errorf("X1 record = %+v", byID["X1"])
		}
	})
}

func TestConfigDump(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, testConfig(), "config", "dump", "--checksum", "blake3", "--ascii")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`checksum: "blake3"`, "ascii: true", `format: "table"`, "context: 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, testConfig(), "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Current Configuration", "checksum", "sha1", "empty_config", "(disabled)"} {
		if !strings.Contains(out, want) {
			t.Errorf("show missing %q:\n%s", want, out)
		}
	}
}
