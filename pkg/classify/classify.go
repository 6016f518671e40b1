// SPDX-License-Identifier: MPL-2.0

// Package classify compares the items of two packages and assigns each item of
// the compared package to an outcome bucket.
//
// The reference package is the one already imported on the target platform
// (file A); the compared package is the one about to be imported (file B).
// Classification takes only data in and returns data out: the one side effect
// is the optional DiffSink invoked for matched pairs.
package classify

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vrodiff/vro-diff/internal/logging"
	"github.com/vrodiff/vro-diff/pkg/element"
	"github.com/vrodiff/vro-diff/pkg/types"
)

// ErrNotConfiguration is returned by CountValuedAttributes for other kinds.
var ErrNotConfiguration = errors.New("not a configuration element")

type (
	// DiffSink receives every matched pair that was not classified unsupported.
	DiffSink interface {
		Emit(bucket string, reference, compared *element.Item) error
	}

	// Options configures Classify.
	Options struct {
		// CheckEmptyConfig records configuration elements carrying values under UnexpectedValues.
		CheckEmptyConfig bool
		// Diff, when set, is called for every matched pair classified
		// no_upgrade, upgrade or conflict.
		Diff DiffSink
		// Logger receives per-item diagnostics and the totals. Nil discards them.
		Logger *log.Logger
	}

	// Result maps each outcome to the compared items classified into it.
	// Items keep the order of the compared collection within a bucket.
	Result struct {
		Buckets        map[Outcome][]*element.Item
		ReferenceCount int
		ComparedCount  int
	}
)

// Classify assigns every item of compared to exactly one primary outcome and,
// when opts.CheckEmptyConfig is set, records configuration elements carrying
// values under UnexpectedValues as well.
//
// Matched items get ComparedVersion set to the reference item's version. When
// the reference collection repeats an id, the first occurrence is used.
func Classify(reference, compared []*element.Item, opts Options) (*Result, error) {
	logger := logging.OrDiscard(opts.Logger)

	index := make(map[string]*element.Item, len(reference))
	for _, r := range reference {
		if _, dup := index[r.ID]; dup {
			logger.Warn("Duplicate item id in reference package, keeping the first", "id", r.ID)
			continue
		}
		index[r.ID] = r
	}

	res := &Result{
		Buckets:        make(map[Outcome][]*element.Item, len(Outcomes())),
		ReferenceCount: len(reference),
		ComparedCount:  len(compared),
	}

	for _, c := range compared {
		outcome, ref := classifyItem(c, index, logger)
		res.add(outcome, c)

		if ref != nil && opts.Diff != nil && outcome != Unsupported {
			if err := opts.Diff.Emit(outcome.String(), ref, c); err != nil {
				return nil, fmt.Errorf("diff for item %s: %w", c.ID, err)
			}
		}

		if opts.CheckEmptyConfig && c.Kind == element.KindConfiguration {
			count, err := CountValuedAttributes(c)
			if err != nil {
				logger.Warn("Cannot count configuration values", "item", c.String(), "error", err)
			}
			c.ValuedAttributeCount = count
			if count > 0 {
				res.add(UnexpectedValues, c)
			}
		}
	}

	res.logTotals(logger)
	return res, nil
}

// classifyItem returns the primary outcome of c and its matched reference item, if any.
func classifyItem(c *element.Item, index map[string]*element.Item, logger *log.Logger) (Outcome, *element.Item) {
	if !c.Kind.IsSupported() {
		return Unsupported, nil
	}

	r, found := index[c.ID]
	if !found {
		logger.Debug("Item is NOT IN reference package", "item", c.String())
		return New, nil
	}
	logger.Debug("Item is IN reference package", "item", c.String())

	refVersion := r.Version
	c.ComparedVersion = &refVersion

	switch {
	case !c.Version.IsAvailable():
		return Unsupported, r
	case c.Version.Greater(r.Version):
		return Upgrade, r
	case c.Version.Less(r.Version):
		logger.Warn("Conflict detected on item", "item", c.String(), "version", c.Version, "reference", r.Version)
		return Conflict, r
	case c.Checksum == r.Checksum:
		return NoUpgrade, r
	default:
		logger.Warn("Conflict detected on item", "item", c.String(), "reason", "same version, different content")
		return Conflict, r
	}
}

// CountValuedAttributes counts the direct attribute entries of a configuration
// element that carry a value sub-element.
func CountValuedAttributes(item *element.Item) (int, error) {
	if item.Kind != element.KindConfiguration {
		return 0, fmt.Errorf("item %s: %w", item, ErrNotConfiguration)
	}
	text, ok := item.Text.Value()
	if !ok {
		return 0, fmt.Errorf("item %s: %w", item, element.ErrUndecodable)
	}
	root, err := element.ParseXML(text)
	if err != nil {
		return 0, fmt.Errorf("item %s: %w", item, err)
	}

	count := 0
	for _, atts := range root.ChildrenNamed("atts") {
		for _, att := range atts.ChildrenNamed("att") {
			if len(att.ChildrenNamed("value")) > 0 {
				count++
			}
		}
	}
	return count, nil
}

// Items returns the items classified into o.
func (r *Result) Items(o Outcome) []*element.Item { return r.Buckets[o] }

// Count returns the number of items classified into o.
func (r *Result) Count(o Outcome) int { return len(r.Buckets[o]) }

// Conflicts returns the number of conflicting items.
func (r *Result) Conflicts() int { return r.Count(Conflict) }

// Total returns the number of items across primary outcomes, which equals
// the size of the compared collection.
func (r *Result) Total() int {
	total := 0
	for _, o := range PrimaryOutcomes() {
		total += r.Count(o)
	}
	return total
}

// ExitCode is the number of conflicts, plus the number of configuration
// elements carrying values when includeUnexpected is set, capped at 255.
func (r *Result) ExitCode(includeUnexpected bool) types.ExitCode {
	n := r.Conflicts()
	if includeUnexpected {
		n += r.Count(UnexpectedValues)
	}
	return types.ClampExitCode(n)
}

func (r *Result) add(o Outcome, item *element.Item) {
	r.Buckets[o] = append(r.Buckets[o], item)
}

func (r *Result) logTotals(logger *log.Logger) {
	logger.Info("File A", "elements", r.ReferenceCount)
	logger.Info("File B", "elements", r.ComparedCount)
	logger.Info("Items to upgrade", "count", r.Count(Upgrade))
	logger.Info("Items without upgrade", "count", r.Count(NoUpgrade))
	logger.Info("Items in upgrade conflict", "count", r.Count(Conflict))
	logger.Info("New items", "count", r.Count(New))
	if n := r.Count(Unsupported); n > 0 {
		logger.Warn("Unsupported items", "count", n)
	}
	if n := r.Count(UnexpectedValues); n > 0 {
		logger.Warn("Configuration elements with values", "count", n)
	}
	logger.Info("Total items", "count", r.Total())
}
