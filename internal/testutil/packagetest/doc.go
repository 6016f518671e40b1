// SPDX-License-Identifier: MPL-2.0

// Package packagetest builds synthetic package archives for tests.
//
// This package is separate from testutil and does not import pkg/element, so
// element and vropackage tests can use it without an import cycle. The payload
// helpers therefore spell out the on-disk layout themselves.
//
// # Usage
//
//	import "github.com/vrodiff/vro-diff/internal/testutil/packagetest"
//
//	path := packagetest.New().
//	    AddWorkflow("W1", "Deploy VM", "1.0.0").
//	    AddAction("A1", "com.example/getHost", "2.0.0").
//	    WriteFile(t, t.TempDir(), "a.package")
package packagetest
