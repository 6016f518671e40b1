// SPDX-License-Identifier: MPL-2.0

package classify

import (
	"errors"
	"slices"
	"testing"

	"github.com/vrodiff/vro-diff/internal/testutil/packagetest"
	"github.com/vrodiff/vro-diff/pkg/element"
	"github.com/vrodiff/vro-diff/pkg/version"
)

type (
	emitted struct {
		bucket      string
		reference   string
		compared    string
		refChecksum string
	}

	recordingSink struct {
		calls []emitted
		err   error
	}
)

func (s *recordingSink) Emit(bucket string, reference, compared *element.Item) error {
	s.calls = append(s.calls, emitted{bucket: bucket, reference: reference.ID, compared: compared.ID, refChecksum: reference.Checksum})
	return s.err
}

func newItem(id string, kind element.Kind, ver, checksum string) *element.Item {
	v := version.Parse(ver)
	if ver == "n/a" {
		v = version.NotAvailable
	}
	return &element.Item{
		ID:       id,
		Kind:     kind,
		RawType:  kind.String(),
		Name:     id + " name",
		Version:  v,
		Checksum: checksum,
		Text:     element.NoText,
	}
}

func ids(items []*element.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestClassifyScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		reference   []*element.Item
		compared    *element.Item
		want        Outcome
		wantCompVer string
	}{
		{
			name:        "newer version is an upgrade",
			reference:   []*element.Item{newItem("W1", element.KindWorkflow, "1.0.0", "H1")},
			compared:    newItem("W1", element.KindWorkflow, "1.1.0", "H2"),
			want:        Upgrade,
			wantCompVer: "1.0.0",
		},
		{
			name:        "same version same checksum",
			reference:   []*element.Item{newItem("A1", element.KindAction, "2.0.0", "H1")},
			compared:    newItem("A1", element.KindAction, "2.0.0", "H1"),
			want:        NoUpgrade,
			wantCompVer: "2.0.0",
		},
		{
			name:        "same version different checksum",
			reference:   []*element.Item{newItem("A1", element.KindAction, "2.0.0", "H1")},
			compared:    newItem("A1", element.KindAction, "2.0.0", "H9"),
			want:        Conflict,
			wantCompVer: "2.0.0",
		},
		{
			name:        "older version is a conflict",
			reference:   []*element.Item{newItem("A1", element.KindAction, "2.0.0", "H1")},
			compared:    newItem("A1", element.KindAction, "1.9.9", "H1"),
			want:        Conflict,
			wantCompVer: "2.0.0",
		},
		{
			name:        "numeric segment comparison",
			reference:   []*element.Item{newItem("A1", element.KindAction, "1.2.0", "H1")},
			compared:    newItem("A1", element.KindAction, "1.10.0", "H2"),
			want:        Upgrade,
			wantCompVer: "1.2.0",
		},
		{
			name:        "equal after padding",
			reference:   []*element.Item{newItem("A1", element.KindAction, "1.2", "H1")},
			compared:    newItem("A1", element.KindAction, "1.2.0", "H1"),
			want:        NoUpgrade,
			wantCompVer: "1.2",
		},
		{
			name:      "absent from reference is new",
			reference: []*element.Item{newItem("W1", element.KindWorkflow, "1.0.0", "H1")},
			compared:  newItem("R1", element.KindResource, "1.0.0", "H1"),
			want:      New,
		},
		{
			name:      "unsupported kind regardless of data",
			reference: []*element.Item{newItem("P1", element.KindUnsupported, "1.0.0", "H1")},
			compared:  newItem("P1", element.KindUnsupported, "9.0.0", "H2"),
			want:      Unsupported,
		},
		{
			name:        "matched item without version",
			reference:   []*element.Item{newItem("R1", element.KindResource, "1.0.0", "H1")},
			compared:    newItem("R1", element.KindResource, "n/a", "H1"),
			want:        Unsupported,
			wantCompVer: "1.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := Classify(tt.reference, []*element.Item{tt.compared}, Options{})
			if err != nil {
				t.Fatalf("Classify() error: %v", err)
			}
			for _, o := range PrimaryOutcomes() {
				wantLen := 0
				if o == tt.want {
					wantLen = 1
				}
				if got := res.Count(o); got != wantLen {
					t.Errorf("bucket %s has %d items, want %d", o, got, wantLen)
				}
			}

			c := tt.compared
			switch {
			case tt.wantCompVer == "" && c.ComparedVersion != nil:
				t.Errorf("ComparedVersion = %s, want unset", c.ComparedVersion)
			case tt.wantCompVer != "" && (c.ComparedVersion == nil || c.ComparedVersion.String() != tt.wantCompVer):
				t.Errorf("ComparedVersion = %v, want %s", c.ComparedVersion, tt.wantCompVer)
			}
		})
	}
}

func TestClassifyExactlyOnePrimaryBucket(t *testing.T) {
	t.Parallel()

	reference := []*element.Item{
		newItem("A", element.KindAction, "1.0.0", "h"),
		newItem("B", element.KindAction, "1.0.0", "h"),
		newItem("C", element.KindWorkflow, "2.0.0", "h"),
		newItem("D", element.KindConfiguration, "1.0.0", "h"),
	}
	compared := []*element.Item{
		newItem("D", element.KindConfiguration, "1.0.0", "h"),
		newItem("A", element.KindAction, "1.0.0", "h"),
		newItem("B", element.KindAction, "2.0.0", "x"),
		newItem("C", element.KindWorkflow, "1.0.0", "h"),
		newItem("E", element.KindPolicyTemplate, "1.0.0", "h"),
		newItem("F", element.KindUnsupported, "n/a", "h"),
	}

	res, err := Classify(reference, compared, Options{})
	if err != nil {
		t.Fatal(err)
	}

	seen := map[string]int{}
	for _, o := range PrimaryOutcomes() {
		for _, it := range res.Items(o) {
			seen[it.ID]++
		}
	}
	for _, c := range compared {
		if seen[c.ID] != 1 {
			t.Errorf("item %s appears in %d primary buckets", c.ID, seen[c.ID])
		}
	}
	if res.Total() != len(compared) {
		t.Errorf("Total() = %d, want %d", res.Total(), len(compared))
	}
	if got := ids(res.Items(NoUpgrade)); !slices.Equal(got, []string{"D", "A"}) {
		t.Errorf("no_upgrade order = %v, want compared order", got)
	}
	if res.Conflicts() != 1 || res.ExitCode(false) != 1 {
		t.Errorf("Conflicts() = %d, ExitCode = %d", res.Conflicts(), res.ExitCode(false))
	}
	if res.ReferenceCount != 4 || res.ComparedCount != 6 {
		t.Errorf("counts = %d/%d", res.ReferenceCount, res.ComparedCount)
	}
}

func TestClassifyDuplicateReferenceIDsFirstWins(t *testing.T) {
	t.Parallel()

	reference := []*element.Item{
		newItem("A", element.KindAction, "1.0.0", "first"),
		newItem("A", element.KindAction, "3.0.0", "second"),
	}
	compared := []*element.Item{newItem("A", element.KindAction, "1.0.0", "first")}

	res, err := Classify(reference, compared, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count(NoUpgrade) != 1 {
		t.Errorf("expected the first reference occurrence to be matched, got %v", res.Buckets)
	}
}

func TestClassifyDiffSink(t *testing.T) {
	t.Parallel()

	reference := []*element.Item{
		newItem("A", element.KindAction, "1.0.0", "h"),
		newItem("B", element.KindAction, "1.0.0", "h"),
		newItem("R", element.KindResource, "1.0.0", "h"),
	}
	compared := []*element.Item{
		newItem("A", element.KindAction, "1.0.0", "h"),
		newItem("B", element.KindAction, "1.1.0", "x"),
		newItem("R", element.KindResource, "n/a", "h"),
		newItem("N", element.KindAction, "1.0.0", "h"),
		newItem("U", element.KindUnsupported, "n/a", "h"),
	}

	sink := &recordingSink{}
	if _, err := Classify(reference, compared, Options{Diff: sink}); err != nil {
		t.Fatal(err)
	}
	want := []emitted{
		{bucket: "no_upgrade", reference: "A", compared: "A", refChecksum: "h"},
		{bucket: "upgrade", reference: "B", compared: "B", refChecksum: "h"},
	}
	if !slices.Equal(sink.calls, want) {
		t.Errorf("emitted %+v, want %+v", sink.calls, want)
	}

	boom := errors.New("disk full")
	_, err := Classify(reference, compared, Options{Diff: &recordingSink{err: boom}})
	if !errors.Is(err, boom) {
		t.Errorf("Classify() error = %v, want sink error", err)
	}
}

func TestClassifyUnexpectedValues(t *testing.T) {
	t.Parallel()

	withValues := parseConfig(t, "C1", packagetest.ConfigurationXML("Endpoints", "1.0.0",
		packagetest.ConfigAttr{Name: "host", Value: "vc01", HasValue: true},
		packagetest.ConfigAttr{Name: "port", Value: "443", HasValue: true},
		packagetest.ConfigAttr{Name: "user"},
	))
	empty := parseConfig(t, "C2", packagetest.ConfigurationXML("Empty", "1.0.0",
		packagetest.ConfigAttr{Name: "user"},
	))
	reference := []*element.Item{newItem("C1", element.KindConfiguration, "1.0.0", withValues.Checksum)}
	compared := []*element.Item{withValues, empty}

	res, err := Classify(reference, compared, Options{CheckEmptyConfig: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(res.Items(UnexpectedValues)); !slices.Equal(got, []string{"C1"}) {
		t.Fatalf("unexpected_values = %v, want [C1]", got)
	}
	if withValues.ValuedAttributeCount != 2 {
		t.Errorf("ValuedAttributeCount = %d, want 2", withValues.ValuedAttributeCount)
	}
	if got := ids(res.Items(NoUpgrade)); !slices.Equal(got, []string{"C1"}) {
		t.Errorf("C1 must stay in its primary bucket, no_upgrade = %v", got)
	}
	if got := ids(res.Items(New)); !slices.Equal(got, []string{"C2"}) {
		t.Errorf("new = %v", got)
	}
	if res.ExitCode(true) != 1 || res.ExitCode(false) != 0 {
		t.Errorf("ExitCode(true) = %d, ExitCode(false) = %d", res.ExitCode(true), res.ExitCode(false))
	}

	off, err := Classify(reference, []*element.Item{parseConfig(t, "C1", packagetest.ConfigurationXML("E", "1.0.0",
		packagetest.ConfigAttr{Name: "host", Value: "x", HasValue: true}))}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if off.Count(UnexpectedValues) != 0 {
		t.Error("unexpected_values must stay empty when the check is disabled")
	}
}

func TestCountValuedAttributes(t *testing.T) {
	t.Parallel()

	if _, err := CountValuedAttributes(newItem("A", element.KindAction, "1.0.0", "h")); !errors.Is(err, ErrNotConfiguration) {
		t.Errorf("error = %v, want ErrNotConfiguration", err)
	}
	if n, err := CountValuedAttributes(newItem("C", element.KindConfiguration, "1.0.0", "h")); n != 0 || err == nil {
		t.Errorf("configuration without text = %d, %v", n, err)
	}
	cfg := parseConfig(t, "C", packagetest.ConfigurationXML("None", "1.0.0"))
	if n, err := CountValuedAttributes(cfg); n != 0 || err != nil {
		t.Errorf("configuration without attributes = %d, %v", n, err)
	}
}

func TestExitCodeCapped(t *testing.T) {
	t.Parallel()

	res := &Result{Buckets: map[Outcome][]*element.Item{}}
	for range 300 {
		res.add(Conflict, newItem("x", element.KindAction, "1.0.0", "h"))
	}
	if got := res.ExitCode(false); got != 255 {
		t.Errorf("ExitCode() = %d, want 255", got)
	}
	if err := res.ExitCode(true).Validate(); err != nil {
		t.Errorf("capped exit code must be valid: %v", err)
	}
}

func TestOutcomeValidate(t *testing.T) {
	t.Parallel()

	for _, o := range Outcomes() {
		if err := o.Validate(); err != nil {
			t.Errorf("%s.Validate() = %v", o, err)
		}
	}
	if UnexpectedValues.IsPrimary() {
		t.Error("unexpected_values is not a primary outcome")
	}
	if err := Outcome("ignored").Validate(); !errors.Is(err, ErrInvalidOutcome) {
		t.Errorf("Validate(ignored) = %v", err)
	}
}

func parseConfig(t *testing.T, id, doc string) *element.Item {
	t.Helper()
	item, err := element.Parse(id, packagetest.InfoXML("ConfigurationElement"), []byte(doc), element.ParseOptions{Strict: true})
	if err != nil {
		t.Fatalf("parse configuration %s: %v", id, err)
	}
	return item
}
