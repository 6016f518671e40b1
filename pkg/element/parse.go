// SPDX-License-Identifier: MPL-2.0

package element

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zip"

	"github.com/vrodiff/vro-diff/internal/logging"
	"github.com/vrodiff/vro-diff/pkg/version"
)

const (
	// WorkflowNamespace qualifies the display-name element of workflow documents.
	WorkflowNamespace = "http://vmware.com/vco/workflow"

	// ResourceNameEntry holds the display name inside a resource element archive.
	ResourceNameEntry = "VSO-RESOURCE-INF/attribute_name"
	// ResourceVersionEntry holds the optional version inside a resource element archive.
	ResourceVersionEntry = "VSO-RESOURCE-INF/attribute_version"
	// ResourceDataEntry holds the resource content inside a resource element archive.
	ResourceDataEntry = "VSO-RESOURCE-INF/data"

	// typeKey is the info descriptor entry carrying the raw type tag.
	typeKey = "type"
)

// ErrMalformedPayload is the sentinel error wrapped by MalformedPayloadError.
var ErrMalformedPayload = errors.New("malformed payload")

type (
	// ParseOptions configures Parse.
	ParseOptions struct {
		// Checksum selects the fingerprint algorithm. Empty means DefaultChecksum.
		Checksum ChecksumAlgorithm
		// Strict makes a malformed payload fail the parse instead of
		// downgrading the item to KindUnsupported.
		Strict bool
		// Logger receives parse warnings. Nil discards them.
		Logger *log.Logger
	}

	// MalformedPayloadError is returned when a recognized item's payload cannot
	// be read structurally. It wraps ErrMalformedPayload for errors.Is().
	MalformedPayloadError struct {
		ID     string
		Kind   Kind
		Reason string
		Err    error
	}

	// nameRule says where a text document keeps its display name: either a
	// root attribute or a direct child element.
	nameRule struct {
		attr  string
		child xml.Name
	}

	// extracted is the result of a kind-specific payload read.
	extracted struct {
		name    string
		version version.Version
		text    Text
	}
)

// documentRules lists the text document kinds and where each keeps its name.
// Every document kind reads its version from the root "version" attribute.
var documentRules = map[Kind]nameRule{
	KindWorkflow:       {child: xml.Name{Space: WorkflowNamespace, Local: "display-name"}},
	KindAction:         {attr: "name"},
	KindPolicyTemplate: {attr: "name"},
	KindConfiguration:  {child: xml.Name{Local: "display-name"}},
}

// Error implements the error interface for MalformedPayloadError.
func (e *MalformedPayloadError) Error() string {
	msg := fmt.Sprintf("malformed %s payload for item %s: %s", e.Kind, e.ID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrMalformedPayload and the underlying cause.
func (e *MalformedPayloadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedPayload}
	}
	return []error{ErrMalformedPayload, e.Err}
}

// Parse builds the Item for one package entry group from its info descriptor
// and data payload.
//
// An unknown or missing type tag is not an error: the item is returned as
// KindUnsupported. A recognized item whose payload cannot be read is also
// returned as KindUnsupported, with Issue set, unless opts.Strict is true, in
// which case the *MalformedPayloadError is returned instead.
func Parse(id string, info, data []byte, opts ParseOptions) (*Item, error) {
	logger := logging.OrDiscard(opts.Logger)

	checksum, err := opts.Checksum.Sum(data)
	if err != nil {
		return nil, err
	}

	rawType, err := readTypeTag(info)
	if err != nil {
		if opts.Strict {
			return nil, &MalformedPayloadError{ID: id, Kind: KindUnsupported, Reason: "unreadable info descriptor", Err: err}
		}
		logger.Warn("Unreadable info descriptor for item", "id", id, "error", err)
	}

	kind := KindFromTag(rawType)
	item := &Item{
		ID:       id,
		Kind:     kind,
		RawType:  rawType,
		Name:     UnsupportedName(kind),
		Version:  version.NotAvailable,
		Checksum: checksum,
		Text:     NoText,
	}
	if !kind.IsSupported() {
		logger.Warn("Unsupported element type for item", "id", id, "type", rawType)
		return item, nil
	}

	var out extracted
	if kind == KindResource {
		out, err = readResource(id, data, logger)
	} else {
		out, err = readDocument(id, data, documentRules[kind], logger)
	}
	if err != nil {
		malformed := &MalformedPayloadError{ID: id, Kind: kind, Reason: "cannot extract name and version", Err: err}
		if opts.Strict {
			return nil, malformed
		}
		logger.Warn("Malformed payload, item treated as unsupported", "id", id, "type", rawType, "error", err)
		item.Kind = KindUnsupported
		item.Issue = malformed
		return item, nil
	}

	item.Name = out.name
	item.Version = out.version
	item.Text = out.text
	return item, nil
}

// readTypeTag returns the text of the entry keyed "type" in an info descriptor.
// A descriptor without such an entry yields an empty tag and no error.
func readTypeTag(info []byte) (string, error) {
	text := Decode(info)
	value, ok := text.Value()
	if !ok {
		return "", errors.New("info descriptor is not text")
	}
	root, err := ParseXML(value)
	if err != nil {
		return "", err
	}
	tag := ""
	for _, entry := range root.ChildrenNamed("entry") {
		if key, _ := entry.Attr("key"); key == typeKey {
			tag = strings.TrimSpace(entry.Text)
		}
	}
	return tag, nil
}

func readDocument(id string, data []byte, rule nameRule, logger *log.Logger) (extracted, error) {
	text := decodeLogged(id, data, logger)
	value, ok := text.Value()
	if !ok {
		return extracted{}, errors.New("payload is not text")
	}
	root, err := ParseXML(value)
	if err != nil {
		return extracted{}, err
	}

	out := extracted{version: version.Zero, text: text}
	if raw, ok := root.Attr("version"); ok {
		out.version = version.Parse(raw)
	}

	switch {
	case rule.attr != "":
		name, ok := root.Attr(rule.attr)
		if !ok {
			logger.Debug("No name attribute for item", "id", id, "attribute", rule.attr)
		}
		out.name = strings.TrimSpace(name)
	default:
		child := root.Child(rule.child)
		if child == nil {
			return extracted{}, fmt.Errorf("missing %s element", rule.child.Local)
		}
		out.name = strings.TrimSpace(child.Text)
	}
	return out, nil
}

// readResource reads a resource element: its payload is a nested archive with
// a required name entry, an optional version entry and the content entry.
func readResource(id string, data []byte, logger *log.Logger) (extracted, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return extracted{}, fmt.Errorf("open nested archive: %w", err)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, `\`, "/")
		if _, seen := entries[name]; !seen {
			entries[name] = f
		}
	}

	rawName, err := readEntry(entries, ResourceNameEntry)
	if err != nil {
		return extracted{}, err
	}
	if rawName == nil {
		return extracted{}, fmt.Errorf("missing %s entry", ResourceNameEntry)
	}
	name, err := decodeUTF8(rawName)
	if err != nil {
		return extracted{}, fmt.Errorf("resource name: %w", err)
	}

	out := extracted{name: strings.TrimSpace(name), version: version.Zero, text: NoText}

	rawVersion, err := readEntry(entries, ResourceVersionEntry)
	if err != nil {
		return extracted{}, err
	}
	if rawVersion != nil {
		if v, decErr := decodeUTF8(rawVersion); decErr == nil {
			out.version = version.Parse(v)
		}
	}

	content, err := readEntry(entries, ResourceDataEntry)
	if err != nil {
		return extracted{}, err
	}
	// A resource without content still classifies by version and checksum.
	if content == nil {
		logger.Debug("No data entry in resource element", "id", id)
		return out, nil
	}
	out.text = decodeLogged(id, content, logger)
	return out, nil
}

// readEntry returns the content of the named entry, or nil when it is absent.
func readEntry(entries map[string]*zip.File, name string) ([]byte, error) {
	f, ok := entries[name]
	if !ok {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if content == nil {
		content = []byte{}
	}
	return content, nil
}

func decodeLogged(id string, data []byte, logger *log.Logger) Text {
	text, rejected := DecodeTrace(data)
	switch text.Encoding() {
	case EncodingUTF16BE:
		logger.Debug("UTF-16 decoding for item", "id", id)
	case EncodingUTF8:
		logger.Debug("UTF-8 decoding for item", "id", id, "rejected", errors.Join(rejected...))
	default:
		logger.Warn("Both UTF-16 and UTF-8 decoding failed for item", "id", id, "error", errors.Join(rejected...))
	}
	return text
}
