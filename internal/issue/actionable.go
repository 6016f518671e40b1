// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError describes a failure the user can act on: the step that
	// failed (reading a package, writing diffs), the path it was working on,
	// and hints printed below the message.
	//
	//	return issue.NewErrorContext().
	//		WithOperation("read package").
	//		WithResource("./release.package").
	//		WithSuggestion("Check that the file is a vRO package export").
	//		Wrap(err).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase completing "failed to ...".
		Operation string
		// Resource is the package, directory or file involved. Optional.
		Resource string
		// Suggestions are shown as a hint block under the error.
		Suggestions []string
		// Cause is the wrapped error. Optional.
		Cause error
	}

	// ErrorContext accumulates the fields of an ActionableError. The CLI
	// creates one per failing step.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext returns an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WrapWithOperation is the short form for failures that need no resource
// and no hints. A nil err yields nil.
func WrapWithOperation(err error, operation string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Cause: err}
}

// Error renders "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := make([]string, 0, 3)
	parts = append(parts, "failed to "+e.Operation)
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// HasSuggestions reports whether a hint block should be printed.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// Hints renders the suggestions as an indented bullet list, one per line.
func (e *ActionableError) Hints() string {
	var sb strings.Builder
	for _, s := range e.Suggestions {
		sb.WriteString("  • ")
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Format returns Error. In verbose mode the numbered cause chain follows,
// which is where the zip and XML errors behind a package failure show up.
func (e *ActionableError) Format(verbose bool) string {
	msg := e.Error()
	if !verbose || e.Cause == nil {
		return msg
	}

	var sb strings.Builder
	sb.WriteString(msg)
	sb.WriteString("\n\nError chain:")
	for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
		fmt.Fprintf(&sb, "\n  %d. %s", depth, err)
	}
	return sb.String()
}

// WithOperation sets the failing step, e.g. "write diffs".
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

// WithResource sets the path the step was working on.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithSuggestion appends one hint.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sug)
	return c
}

// Wrap records the underlying error.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns a copy of the accumulated error, or nil when no operation
// was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	out := c.err
	out.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &out
}

// BuildError is Build typed as error, so that a missing operation gives an
// untyped nil rather than a nil *ActionableError.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
