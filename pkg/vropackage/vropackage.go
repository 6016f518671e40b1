// SPDX-License-Identifier: MPL-2.0

// Package vropackage reads package archives and turns their item groups into
// parsed element Items.
//
// A package is a zip archive whose "elements" directory holds one folder per
// item. Each folder carries an "info" descriptor and a "data" payload, and
// older exports also carry a "version-history" entry.
package vropackage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"github.com/vrodiff/vro-diff/internal/logging"
	"github.com/vrodiff/vro-diff/pkg/element"
)

const (
	// ElementsDir is the top-level archive directory holding item folders.
	ElementsDir = "elements"
	// InfoEntry is the kind descriptor inside an item folder.
	InfoEntry = "info"
	// DataEntry is the payload inside an item folder.
	DataEntry = "data"
	// HistoryEntry is the optional version history inside an item folder.
	HistoryEntry = "version-history"
)

var (
	// ErrContainer is the sentinel error wrapped by ContainerError.
	ErrContainer = errors.New("package container error")
	// ErrMissingEntry is returned when a required item entry is absent.
	ErrMissingEntry = errors.New("missing required entry")
)

type (
	// RawElement is the unparsed content of one item folder.
	RawElement struct {
		ID   string
		Info []byte
		Data []byte
		// History is nil when the folder has no version-history entry.
		History []byte
	}

	// ReadOptions configures Read.
	ReadOptions struct {
		// Parse is passed to element.Parse for every item.
		Parse element.ParseOptions
		// Workers bounds concurrent item parsing. Zero or less means one per CPU.
		Workers int
		// Logger receives reader diagnostics. Nil discards them.
		Logger *log.Logger
	}

	// ContainerError is returned when a package cannot be opened or a required
	// entry is missing or unreadable. It is fatal for the package.
	ContainerError struct {
		Path  string
		Entry string
		Err   error
	}
)

// Error implements the error interface for ContainerError.
func (e *ContainerError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("package %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("package %s: entry %s: %v", e.Path, e.Entry, e.Err)
}

// Unwrap returns ErrContainer and the underlying cause.
func (e *ContainerError) Unwrap() []error { return []error{ErrContainer, e.Err} }

// Read opens the package at path and parses every item group it contains, in
// the order the groups first appear in the archive.
func Read(ctx context.Context, path string, opts ReadOptions) ([]*element.Item, error) {
	raws, err := ReadRaw(ctx, path, opts.Logger)
	if err != nil {
		return nil, err
	}
	return ParseAll(ctx, raws, opts)
}

// ReadRaw opens the package at path and returns the raw content of each item group.
func ReadRaw(ctx context.Context, path string, logger *log.Logger) ([]RawElement, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &ContainerError{Path: path, Err: err}
	}
	defer zr.Close()

	return readArchive(ctx, path, &zr.Reader, logging.OrDiscard(logger))
}

// ReadRawFrom is ReadRaw for an archive already held in memory or another io.ReaderAt.
// The name is only used in error messages.
func ReadRawFrom(ctx context.Context, name string, r io.ReaderAt, size int64, logger *log.Logger) ([]RawElement, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &ContainerError{Path: name, Err: err}
	}
	return readArchive(ctx, name, zr, logging.OrDiscard(logger))
}

// ParseAll parses raw item groups concurrently and returns the items in input order.
func ParseAll(ctx context.Context, raws []RawElement, opts ReadOptions) ([]*element.Item, error) {
	parseOpts := opts.Parse
	if parseOpts.Logger == nil {
		parseOpts.Logger = opts.Logger
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	items := make([]*element.Item, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range raws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item, err := element.Parse(raws[i].ID, raws[i].Info, raws[i].Data, parseOpts)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// readArchive groups archive entries by item folder. The first entry with a
// given name wins and the first appearance of a folder fixes its position.
func readArchive(ctx context.Context, path string, zr *zip.Reader, logger *log.Logger) ([]RawElement, error) {
	var order []string
	groups := make(map[string]map[string]*zip.File)

	for _, f := range zr.File {
		id, entry, ok := splitEntryName(f.Name)
		if !ok {
			continue
		}
		group, seen := groups[id]
		if !seen {
			group = make(map[string]*zip.File)
			groups[id] = group
			order = append(order, id)
		}
		if entry == "" {
			continue
		}
		if _, dup := group[entry]; dup {
			logger.Debug("Duplicate archive entry ignored", "package", path, "entry", f.Name)
			continue
		}
		group[entry] = f
	}

	raws := make([]RawElement, 0, len(order))
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		group := groups[id]
		raw := RawElement{ID: id}

		var err error
		if raw.Info, err = readRequired(path, id, InfoEntry, group); err != nil {
			return nil, err
		}
		if raw.Data, err = readRequired(path, id, DataEntry, group); err != nil {
			return nil, err
		}
		if f, ok := group[HistoryEntry]; ok {
			if raw.History, err = readFile(f); err != nil {
				return nil, &ContainerError{Path: path, Entry: f.Name, Err: err}
			}
		}
		raws = append(raws, raw)
	}
	logger.Debug("Read package", "package", path, "items", len(raws))
	return raws, nil
}

// splitEntryName returns the item id and the entry name relative to the item
// folder for names under ElementsDir. Directory entries yield an empty entry.
func splitEntryName(name string) (id, entry string, ok bool) {
	name = strings.ReplaceAll(name, `\`, "/")
	rest, found := strings.CutPrefix(name, ElementsDir+"/")
	if !found {
		return "", "", false
	}
	id, entry, _ = strings.Cut(rest, "/")
	if id == "" {
		return "", "", false
	}
	return id, entry, true
}

func readRequired(path, id, entry string, group map[string]*zip.File) ([]byte, error) {
	name := ElementsDir + "/" + id + "/" + entry
	f, ok := group[entry]
	if !ok {
		return nil, &ContainerError{Path: path, Entry: name, Err: ErrMissingEntry}
	}
	content, err := readFile(f)
	if err != nil {
		return nil, &ContainerError{Path: path, Entry: name, Err: err}
	}
	return content, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if content == nil {
		content = []byte{}
	}
	return content, nil
}
