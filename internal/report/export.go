// SPDX-License-Identifier: MPL-2.0

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/vrodiff/vro-diff/pkg/classify"
	"github.com/vrodiff/vro-diff/pkg/element"
)

type (
	// Document is the serialized form of a comparison.
	Document struct {
		Reference string                  `json:"reference" yaml:"reference" toml:"reference"`
		Compared  string                  `json:"compared" yaml:"compared" toml:"compared"`
		Totals    map[string]int          `json:"totals" yaml:"totals" toml:"totals"`
		Buckets   map[string][]ItemRecord `json:"buckets" yaml:"buckets" toml:"buckets"`
	}

	// InventoryDocument is the serialized form of a single package listing.
	InventoryDocument struct {
		Package string       `json:"package" yaml:"package" toml:"package"`
		Items   []ItemRecord `json:"items" yaml:"items" toml:"items"`
	}

	// ItemRecord is one item in an exported document.
	ItemRecord struct {
		ID                   string `json:"id" yaml:"id" toml:"id"`
		Name                 string `json:"name" yaml:"name" toml:"name"`
		Kind                 string `json:"kind" yaml:"kind" toml:"kind"`
		RawType              string `json:"raw_type,omitempty" yaml:"raw_type,omitempty" toml:"raw_type,omitempty"`
		Version              string `json:"version" yaml:"version" toml:"version"`
		ComparedVersion      string `json:"compared_version,omitempty" yaml:"compared_version,omitempty" toml:"compared_version,omitempty"`
		Checksum             string `json:"checksum" yaml:"checksum" toml:"checksum"`
		Encoding             string `json:"encoding" yaml:"encoding" toml:"encoding"`
		ValuedAttributeCount int    `json:"valued_attribute_count,omitempty" yaml:"valued_attribute_count,omitempty" toml:"valued_attribute_count,omitempty"`
		Issue                string `json:"issue,omitempty" yaml:"issue,omitempty" toml:"issue,omitempty"`
	}
)

// NewDocument converts a result into its exported form. Every outcome is
// present in Buckets, empty or not.
func NewDocument(referenceName, comparedName string, res *classify.Result) Document {
	doc := Document{
		Reference: referenceName,
		Compared:  comparedName,
		Totals:    map[string]int{"reference": res.ReferenceCount, "compared": res.ComparedCount},
		Buckets:   make(map[string][]ItemRecord, len(classify.Outcomes())),
	}
	for _, o := range classify.Outcomes() {
		doc.Totals[o.String()] = res.Count(o)
		doc.Buckets[o.String()] = Records(res.Items(o))
	}
	return doc
}

// Records converts items into export records, keeping their order.
func Records(items []*element.Item) []ItemRecord {
	out := make([]ItemRecord, 0, len(items))
	for _, it := range items {
		rec := ItemRecord{
			ID:                   it.ID,
			Name:                 it.Name,
			Kind:                 it.Kind.String(),
			Version:              it.Version.String(),
			Checksum:             it.Checksum,
			Encoding:             it.Text.Encoding().String(),
			ValuedAttributeCount: it.ValuedAttributeCount,
		}
		if it.RawType != it.Kind.String() {
			rec.RawType = it.RawType
		}
		if it.ComparedVersion != nil {
			rec.ComparedVersion = it.ComparedVersion.String()
		}
		if it.Issue != nil {
			rec.Issue = it.Issue.Error()
		}
		out = append(out, rec)
	}
	return out
}

// Export writes v in the given machine-readable format.
func Export(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(v)
	case FormatTable:
		return fmt.Errorf("%s is not a serialization format", format)
	default:
		return &InvalidFormatError{Value: format}
	}
}
