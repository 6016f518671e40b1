// SPDX-License-Identifier: MPL-2.0

package unidiff

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/vrodiff/vro-diff/pkg/element"
	"github.com/vrodiff/vro-diff/pkg/version"
)

func textItem(id string, kind element.Kind, ver, text string) *element.Item {
	return &element.Item{
		ID:      id,
		Kind:    kind,
		Name:    id + "-name",
		Version: version.Parse(ver),
		Text:    element.NewText(text, element.EncodingUTF8),
	}
}

func TestLines(t *testing.T) {
	t.Parallel()

	a := Side{Package: "a.package", Item: textItem("A1", element.KindAction, "1.0.0", "one\ntwo\nthree\n")}
	b := Side{Package: "b.package", Item: textItem("A1", element.KindAction, "1.1.0", "one\n2\nthree\n")}

	lines, ok, err := Lines(a, b, DefaultContext)
	if err != nil || !ok {
		t.Fatalf("Lines() = %v, %v", ok, err)
	}
	want := []string{
		"--- a.package/Action/A1-name (1.0.0)\n",
		"+++ b.package/Action/A1-name (1.1.0)\n",
		"@@ -1,3 +1,3 @@\n",
		" one\n",
		"-two\n",
		"+2\n",
		" three\n",
	}
	if !slices.Equal(lines, want) {
		t.Errorf("Lines() =\n%q\nwant\n%q", lines, want)
	}

	again, _, _ := Lines(a, b, DefaultContext)
	if !slices.Equal(lines, again) {
		t.Error("diff emission must be deterministic")
	}
}

func TestLinesContext(t *testing.T) {
	t.Parallel()

	var before, after strings.Builder
	for i := range 20 {
		line := "line " + string(rune('a'+i)) + "\n"
		before.WriteString(line)
		if i == 10 {
			line = "changed\n"
		}
		after.WriteString(line)
	}
	a := Side{Package: "a", Item: textItem("X", element.KindWorkflow, "1", before.String())}
	b := Side{Package: "b", Item: textItem("X", element.KindWorkflow, "1", after.String())}

	lines, _, err := Lines(a, b, DefaultContext)
	if err != nil {
		t.Fatal(err)
	}
	// two headers, one hunk header, 3+3 context lines, one removal, one addition
	if len(lines) != 11 {
		t.Errorf("got %d lines, want 11:\n%s", len(lines), strings.Join(lines, ""))
	}
	if lines[2] != "@@ -8,7 +8,7 @@\n" {
		t.Errorf("hunk header = %q", lines[2])
	}
}

func TestLinesMissingTrailingNewline(t *testing.T) {
	t.Parallel()

	a := Side{Package: "a", Item: textItem("X", element.KindAction, "1", "x\ny\n")}
	b := Side{Package: "b", Item: textItem("X", element.KindAction, "1", "x\ny")}

	out, ok, err := Unified(a, b, DefaultContext)
	if err != nil || !ok {
		t.Fatalf("Unified() = %v, %v", ok, err)
	}
	if !strings.Contains(out, "+y\n\\ No newline at end of file\n") {
		t.Errorf("missing no-newline marker:\n%s", out)
	}
}

func TestLinesIdenticalAndSkipped(t *testing.T) {
	t.Parallel()

	same := textItem("X", element.KindAction, "1", "same\n")
	lines, ok, err := Lines(Side{Package: "a", Item: same}, Side{Package: "b", Item: same}, DefaultContext)
	if err != nil || !ok || len(lines) != 0 {
		t.Errorf("identical texts: lines=%q ok=%v err=%v", lines, ok, err)
	}

	binary := &element.Item{ID: "X", Kind: element.KindResource, Version: version.Zero, Text: element.NoText}
	for _, pair := range [][2]*element.Item{{binary, same}, {same, binary}} {
		lines, ok, err := Lines(Side{Item: pair[0]}, Side{Item: pair[1]}, DefaultContext)
		if err != nil || ok || lines != nil {
			t.Errorf("binary side must skip: lines=%q ok=%v err=%v", lines, ok, err)
		}
	}
}

func TestWriterEmit(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := NewWriter(root, "a.package", "b.package", WithContext(1))

	ref := textItem("abc-123", element.KindConfiguration, "1.0.0", "k=v\n")
	cmp := textItem("abc-123", element.KindConfiguration, "1.1.0", "k=w\n")
	if err := w.Emit("upgrade", ref, cmp); err != nil {
		t.Fatalf("Emit() error: %v", err)
	}

	path := filepath.Join(root, "upgrade", "configurationelement", "abc-123.diff")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("diff file not written: %v", err)
	}
	if !strings.Contains(string(content), "-k=v\n+k=w\n") {
		t.Errorf("diff content:\n%s", content)
	}
	if got := w.Written(); !slices.Equal(got, []string{path}) {
		t.Errorf("Written() = %v", got)
	}

	binary := &element.Item{ID: "bin", Kind: element.KindResource, Version: version.Zero, Text: element.NoText}
	if err := w.Emit("conflict", binary, binary); err != nil {
		t.Fatalf("Emit() binary error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "conflict")); !os.IsNotExist(err) {
		t.Error("binary pairs must not create output")
	}
}

func TestWriterConcurrentSameDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := NewWriter(root, "a", "b")

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := "item-" + string(rune('a'+i))
			ref := textItem(id, element.KindAction, "1.0.0", "a\n")
			cmp := textItem(id, element.KindAction, "1.0.0", "b\n")
			if err := w.Emit("conflict", ref, cmp); err != nil {
				t.Errorf("Emit(%s) error: %v", id, err)
			}
		}()
	}
	wg.Wait()

	entries, err := os.ReadDir(filepath.Join(root, "conflict", "action"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 16 || len(w.Written()) != 16 {
		t.Errorf("got %d files, %d recorded, want 16", len(entries), len(w.Written()))
	}
}

func TestWriterPathSanitizesID(t *testing.T) {
	t.Parallel()

	w := NewWriter("/out", "a", "b")
	got := w.Path("new", element.KindWorkflow, "../evil")
	want := filepath.Join("/out", "new", "workflow", ".._evil.diff")
	if got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}
