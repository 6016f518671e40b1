// SPDX-License-Identifier: MPL-2.0

// Package unidiff renders unified diffs between the decoded text of two
// matched items and files them under a per-bucket, per-kind directory tree.
package unidiff

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/vrodiff/vro-diff/internal/logging"
	"github.com/vrodiff/vro-diff/pkg/element"
)

const (
	// DefaultContext is the number of unchanged lines around each hunk.
	DefaultContext = 3

	noNewlineMarker = "\\ No newline at end of file\n"
)

type (
	// Side is one half of a diff: an item and the package it came from.
	Side struct {
		Package string
		Item    *element.Item
	}

	// Writer is a classify.DiffSink writing one .diff file per matched pair.
	// It is safe for concurrent use.
	Writer struct {
		root          string
		referenceName string
		comparedName  string
		context       int
		logger        *log.Logger

		mu      sync.Mutex
		written []string
	}

	// WriterOption configures a Writer.
	WriterOption func(*Writer)
)

// Lines returns the unified diff from a to b as a line sequence, each line
// ending in a newline. It reports false, with no lines, when either side has
// no decoded text. Identical texts yield an empty, non-skipped diff.
func Lines(a, b Side, context int) ([]string, bool, error) {
	aText, aOK := a.Item.Text.Value()
	bText, bOK := b.Item.Text.Value()
	if !aOK || !bOK {
		return nil, false, nil
	}

	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(aText),
		B:        splitLines(bText),
		FromFile: Label(a),
		ToFile:   Label(b),
		Context:  context,
	})
	if err != nil {
		return nil, true, err
	}
	lines := strings.SplitAfter(out, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, true, nil
}

// Unified is Lines joined into a single string.
func Unified(a, b Side, context int) (string, bool, error) {
	lines, ok, err := Lines(a, b, context)
	if err != nil || !ok {
		return "", ok, err
	}
	return strings.Join(lines, ""), true, nil
}

// Label is the ---/+++ header of one side: package, kind, name and version.
func Label(s Side) string {
	return fmt.Sprintf("%s/%s/%s (%s)", s.Package, s.Item.Kind, s.Item.Name, s.Item.Version)
}

// WithContext sets the number of context lines.
func WithContext(n int) WriterOption {
	return func(w *Writer) {
		if n >= 0 {
			w.context = n
		}
	}
}

// WithLogger sets the logger for skipped pairs and written files.
func WithLogger(l *log.Logger) WriterOption {
	return func(w *Writer) { w.logger = l }
}

// NewWriter returns a Writer filing diffs under root. referenceName and
// comparedName label the two packages in diff headers.
func NewWriter(root, referenceName, comparedName string, opts ...WriterOption) *Writer {
	w := &Writer{
		root:          root,
		referenceName: referenceName,
		comparedName:  comparedName,
		context:       DefaultContext,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.OrDiscard(w.logger)
	return w
}

// Path returns the file a diff for the given bucket, kind and item id is written to.
func (w *Writer) Path(bucket string, kind element.Kind, id string) string {
	safeID := strings.NewReplacer("/", "_", `\`, "_").Replace(id)
	return filepath.Join(w.root, bucket, kind.DirName(), safeID+".diff")
}

// Emit writes the diff from reference to compared. Pairs where either side has
// no decoded text are skipped without error.
func (w *Writer) Emit(bucket string, reference, compared *element.Item) error {
	out, ok, err := Unified(
		Side{Package: w.referenceName, Item: reference},
		Side{Package: w.comparedName, Item: compared},
		w.context,
	)
	if err != nil {
		return err
	}
	if !ok {
		w.logger.Debug("Diff skipped, binary content", "item", compared.String())
		return nil
	}

	path := w.Path(bucket, compared.Kind, compared.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create diff directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write diff file: %w", err)
	}
	w.logger.Debug("Diff written", "item", compared.String(), "path", path)

	w.mu.Lock()
	w.written = append(w.written, path)
	w.mu.Unlock()
	return nil
}

// Written returns the paths written so far, in write order.
func (w *Writer) Written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.written...)
}

// splitLines splits s after each newline. A final line without a newline is
// terminated and followed by the conventional "no newline" marker so that a
// missing trailing newline shows up as a change.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	last := len(lines) - 1
	if lines[last] == "" {
		return lines[:last]
	}
	lines[last] += "\n" + noNewlineMarker
	return lines
}
