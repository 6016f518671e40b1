// SPDX-License-Identifier: MPL-2.0

package packagetest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/klauspost/compress/zip"
)

type (
	// Entry is one file inside an archive.
	Entry struct {
		Name string
		Data []byte
	}

	// Builder accumulates the entries of a package archive in insertion order.
	Builder struct {
		entries []Entry
	}

	// ConfigAttr is one attribute of a configuration element document.
	// Value is written only when HasValue is true.
	ConfigAttr struct {
		Name     string
		Value    string
		HasValue bool
	}
)

// New returns an empty package builder.
func New() *Builder { return &Builder{} }

// Add appends an item group with the given type tag and raw data payload.
func (b *Builder) Add(id, tag string, data []byte) *Builder {
	b.entries = append(b.entries,
		Entry{Name: "elements/" + id + "/info", Data: InfoXML(tag)},
		Entry{Name: "elements/" + id + "/data", Data: data},
	)
	return b
}

// AddEntry appends an arbitrary archive entry.
func (b *Builder) AddEntry(name string, data []byte) *Builder {
	b.entries = append(b.entries, Entry{Name: name, Data: data})
	return b
}

// AddWorkflow appends a UTF-16BE encoded workflow, as the platform exports them.
func (b *Builder) AddWorkflow(id, name, version string) *Builder {
	return b.Add(id, "Workflow", UTF16BE(WorkflowXML(name, version), true))
}

// AddAction appends a UTF-8 encoded action.
func (b *Builder) AddAction(id, name, version string) *Builder {
	return b.Add(id, "ScriptModule", []byte(ActionXML(name, version, "return 1;")))
}

// AddResource appends a resource element whose nested archive carries name, version and data.
func (b *Builder) AddResource(id, name, version string, data []byte) *Builder {
	return b.Add(id, "ResourceElement", ResourceArchive(name, version, data))
}

// AddConfiguration appends a UTF-8 encoded configuration element.
func (b *Builder) AddConfiguration(id, name, version string, attrs ...ConfigAttr) *Builder {
	return b.Add(id, "ConfigurationElement", []byte(ConfigurationXML(name, version, attrs...)))
}

// Bytes returns the package as a zip archive.
func (b *Builder) Bytes(t testing.TB) []byte {
	t.Helper()
	data, err := Zip(b.entries...)
	if err != nil {
		t.Fatalf("failed to build package archive: %v", err)
	}
	return data
}

// WriteFile writes the package to dir/name and returns its path.
func (b *Builder) WriteFile(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.Bytes(t), 0o644); err != nil {
		t.Fatalf("failed to write package %s: %v", path, err)
	}
	return path
}

// Zip builds a zip archive holding entries in order.
func Zip(entries ...Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// InfoXML returns an info descriptor declaring the given type tag.
// An empty tag produces a descriptor without a type entry.
func InfoXML(tag string) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>` + "\n")
	sb.WriteString(`<!DOCTYPE properties SYSTEM "http://java.sun.com/dtd/properties.dtd">` + "\n")
	sb.WriteString("<properties>\n<comment>UTF-16</comment>\n")
	if tag != "" {
		fmt.Fprintf(&sb, "<entry key=\"type\">%s</entry>\n", tag)
	}
	sb.WriteString("<entry key=\"valid\">true</entry>\n</properties>\n")
	return []byte(sb.String())
}

// WorkflowXML returns a workflow document. An empty version omits the attribute.
func WorkflowXML(name, version string) string {
	return `<?xml version="1.0" encoding="UTF-16"?>` + "\n" +
		`<ns2:workflow xmlns:ns2="http://vmware.com/vco/workflow" root-name="item1"` + versionAttr(version) + ` api-version="6.0.0">` + "\n" +
		`<ns2:display-name><![CDATA[` + name + `]]></ns2:display-name>` + "\n" +
		`<ns2:position y="50.0" x="100.0"/>` + "\n" +
		`</ns2:workflow>` + "\n"
}

// ActionXML returns an action document with the given script body.
func ActionXML(name, version, script string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<dunes-script-module name="` + name + `" result-type="string" api-version="6.0.0"` + versionAttr(version) + ` allowed-operations="vef">` + "\n" +
		`<script encoded="false"><![CDATA[` + script + `]]></script>` + "\n" +
		`</dunes-script-module>` + "\n"
}

// PolicyTemplateXML returns a policy template document.
func PolicyTemplateXML(name, version string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<policy-template name="` + name + `"` + versionAttr(version) + ` api-version="6.0.0">` + "\n" +
		`<description><![CDATA[test policy]]></description>` + "\n" +
		`</policy-template>` + "\n"
}

// ConfigurationXML returns a configuration element document.
func ConfigurationXML(name, version string, attrs ...ConfigAttr) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<config-element id="c0ffee"` + versionAttr(version) + ">\n")
	sb.WriteString("<display-name><![CDATA[" + name + "]]></display-name>\n")
	sb.WriteString("<atts>\n")
	for _, a := range attrs {
		fmt.Fprintf(&sb, "<att name=%q type=\"string\" read-only=\"false\">", a.Name)
		if a.HasValue {
			fmt.Fprintf(&sb, "<value encoded=\"n\"><![CDATA[%s]]></value>", a.Value)
		}
		sb.WriteString("<description><![CDATA[]]></description></att>\n")
	}
	sb.WriteString("</atts>\n</config-element>\n")
	return sb.String()
}

// ResourceArchive returns the nested archive of a resource element.
// An empty version omits the version entry; nil data omits the data entry.
func ResourceArchive(name, version string, data []byte) []byte {
	entries := []Entry{{Name: "VSO-RESOURCE-INF/attribute_name", Data: []byte(name)}}
	if version != "" {
		entries = append(entries, Entry{Name: "VSO-RESOURCE-INF/attribute_version", Data: []byte(version)})
	}
	if data != nil {
		entries = append(entries, Entry{Name: "VSO-RESOURCE-INF/data", Data: data})
	}
	out, err := Zip(entries...)
	if err != nil {
		// Writing to a bytes.Buffer cannot fail.
		panic(err)
	}
	return out
}

// UTF16BE encodes s as big-endian UTF-16, optionally with a byte order mark.
func UTF16BE(s string, bom bool) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, 2*len(units)+2)
	if bom {
		out = append(out, 0xFE, 0xFF)
	}
	for _, u := range units {
		out = append(out, byte(u>>8), byte(u))
	}
	return out
}

func versionAttr(version string) string {
	if version == "" {
		return ""
	}
	return ` version="` + version + `"`
}
