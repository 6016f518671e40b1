// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/vrodiff/vro-diff/internal/config"
	"github.com/vrodiff/vro-diff/internal/issue"
	"github.com/vrodiff/vro-diff/pkg/element"
	"github.com/vrodiff/vro-diff/pkg/vropackage"
)

// Operations used when wrapping errors in ActionableError.
const (
	opLoadConfig     = "load configuration"
	opValidateConfig = "validate configuration"
	opReadPackage    = "read package"
	opWriteDiffs     = "write diffs"
	opOpenLog        = "open log file"
	opWriteReport    = "write report"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before the issue help page.
// Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError maps a failure to an issue catalog ID and wraps it in a
// ServiceError carrying the styled message.
func classifyError(err error, verbose bool) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	var issueID issue.Id
	var ae *issue.ActionableError
	isAE := errors.As(err, &ae)

	switch {
	case isAE && (ae.Operation == opLoadConfig || ae.Operation == opValidateConfig):
		issueID = issue.ConfigLoadFailedId
	case errors.Is(err, os.ErrPermission):
		issueID = issue.PermissionDeniedId
	case isAE && ae.Operation == opWriteDiffs:
		issueID = issue.DiffOutputFailedId
	case errors.Is(err, element.ErrMalformedPayload):
		issueID = issue.MalformedPayloadId
	case errors.Is(err, os.ErrNotExist):
		issueID = issue.PackageNotFoundId
	case errors.Is(err, vropackage.ErrContainer):
		issueID = issue.PackageUnreadableId
	case errors.Is(err, config.ErrInvalidConfig):
		issueID = issue.InvalidOptionId
	}

	return newServiceError(err, issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose)))
}

// renderServiceError prints any styled message first, then the hints carried
// by the error, then the optional issue help page.
func renderServiceError(stderr io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	var ae *issue.ActionableError
	if errors.As(svcErr.Err, &ae) && ae.HasSuggestions() {
		fmt.Fprintf(stderr, "\n%s\n%s", WarningStyle.Render("Hints:"), ae.Hints())
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render("dark")
		if renderErr != nil {
			log.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// formatErrorForDisplay uses ActionableError.Format when available so that
// verbose mode shows the full cause chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
