// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions. The Issue catalog holds longer Markdown help pages, rendered
// with glamour, for the failures users hit most: unreadable packages,
// malformed elements and invalid configuration.
package issue
