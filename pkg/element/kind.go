// SPDX-License-Identifier: MPL-2.0

package element

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// KindWorkflow is a workflow definition.
	KindWorkflow Kind = "Workflow"
	// KindAction is a scriptable action. The legacy ScriptModule tag maps here.
	KindAction Kind = "Action"
	// KindResource is a resource element whose payload is a nested archive.
	KindResource Kind = "ResourceElement"
	// KindConfiguration is a configuration element.
	KindConfiguration Kind = "ConfigurationElement"
	// KindPolicyTemplate is a policy template.
	KindPolicyTemplate Kind = "PolicyTemplate"
	// KindUnsupported is any tag outside the recognized set.
	KindUnsupported Kind = "Unsupported"

	// TagScriptModule is the legacy raw tag for actions.
	TagScriptModule = "ScriptModule"
)

// ErrInvalidKind is returned when a Kind value is not one of the defined kinds.
var ErrInvalidKind = errors.New("invalid element kind")

type (
	// Kind is the closed set of element kinds a package can carry.
	Kind string

	// InvalidKindError is returned when a Kind value is not recognized.
	// It wraps ErrInvalidKind for errors.Is() compatibility.
	InvalidKindError struct {
		Value Kind
	}
)

// Error implements the error interface for InvalidKindError.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid element kind %q (valid: %s)", e.Value, strings.Join(kindNames(), ", "))
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }

// KindFromTag maps a raw type tag from an info descriptor to a Kind.
// Tags are case-sensitive; anything unrecognized becomes KindUnsupported.
func KindFromTag(tag string) Kind {
	switch tag {
	case TagScriptModule:
		return KindAction
	case string(KindWorkflow), string(KindAction), string(KindResource),
		string(KindConfiguration), string(KindPolicyTemplate):
		return Kind(tag)
	default:
		return KindUnsupported
	}
}

// Kinds returns every kind in display order.
func Kinds() []Kind {
	return []Kind{KindWorkflow, KindAction, KindResource, KindConfiguration, KindPolicyTemplate, KindUnsupported}
}

// String returns the external label of the kind.
func (k Kind) String() string { return string(k) }

// Validate returns nil if k is one of the defined kinds.
func (k Kind) Validate() error {
	switch k {
	case KindWorkflow, KindAction, KindResource, KindConfiguration, KindPolicyTemplate, KindUnsupported:
		return nil
	default:
		return &InvalidKindError{Value: k}
	}
}

// IsSupported reports whether items of this kind take part in version classification.
func (k Kind) IsSupported() bool {
	return k.Validate() == nil && k != KindUnsupported
}

// DirName is the lowercased label used for diff output directories.
func (k Kind) DirName() string { return strings.ToLower(string(k)) }

func kindNames() []string {
	kinds := Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}
