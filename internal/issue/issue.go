// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	PackageNotFoundId Id = iota + 1
	PackageUnreadableId
	MalformedPayloadId
	ConfigLoadFailedId
	DiffOutputFailedId
	InvalidOptionId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# Package not found!

One of the two package files given on the command line does not exist.

## Things you can try:
- Check the path and the file extension (usually ` + "`.package`" + `)
- Pass the reference package first and the compared package second:
~~~
$ vro-diff current.package release.package
~~~`,
	}

	packageUnreadableIssue = &Issue{
		id: PackageUnreadableId,
		mdMsg: `
# Package could not be read!

The file is not a valid vRO package archive, or an element is missing its
` + "`info`" + ` or ` + "`data`" + ` entry.

## Things you can try:
- Export the package again from the vRO client
- Check that the file was not truncated during the download:
~~~
$ unzip -t release.package
~~~
- List what can be read with:
~~~
$ vro-diff inspect release.package
~~~`,
	}

	malformedPayloadIssue = &Issue{
		id: MalformedPayloadId,
		mdMsg: `
# Malformed element!

An element of a supported type has a payload that cannot be parsed: invalid
XML, or a resource element without its nested archive or name entry.

## Things you can try:
- Run without ` + "`--strict`" + ` to report the element as unsupported and continue
- Open the element in the vRO client and save it again before exporting`,
		extLinks: []HttpLink{"https://docs.vmware.com/en/vRealize-Orchestrator/"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file contains invalid CUE or values outside the schema.

## Things you can try:
- Print a valid configuration with all defaults:
~~~
$ vro-diff config dump
~~~
- Show which file is being loaded:
~~~
$ vro-diff config path
~~~
- Check VRODIFF_* environment variables for typos`,
	}

	diffOutputFailedIssue = &Issue{
		id: DiffOutputFailedId,
		mdMsg: `
# Failed to write diffs!

The directory given with ` + "`--diff`" + ` could not be created or written.

## Things you can try:
- Check that the parent directory exists and is writable
- Choose another directory:
~~~
$ vro-diff -d ./diffs current.package release.package
~~~`,
	}

	invalidOptionIssue = &Issue{
		id: InvalidOptionId,
		mdMsg: `
# Invalid option!

A flag or configuration value is not one of the accepted values.

## Accepted values:
- ` + "`--format`" + `: table, json, yaml, toml
- ` + "`--checksum`" + `: sha1, sha256, blake3
- ` + "`--workers`" + `: 0 (one per CPU) to 256`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

A package, the log file or the diff directory cannot be accessed.

## Things you can try:
- Check the file permissions
- Disable the log file with ` + "`--log-file \"\"`" + ` when the working directory is read-only`,
	}

	issues = map[Id]*Issue{
		packageNotFoundIssue.Id():   packageNotFoundIssue,
		packageUnreadableIssue.Id(): packageUnreadableIssue,
		malformedPayloadIssue.Id():  malformedPayloadIssue,
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		diffOutputFailedIssue.Id():  diffOutputFailedIssue,
		invalidOptionIssue.Id():     invalidOptionIssue,
		permissionDeniedIssue.Id():  permissionDeniedIssue,
	}
)

// Values returns every issue ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for v := range maps.Values(issues) {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
