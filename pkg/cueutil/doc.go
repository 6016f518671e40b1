// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles user CUE files against an embedded schema.
//
// The flow is always the same: compile the schema, compile the user data and
// unify it with a root definition, then validate and decode.
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[map[string]any](
//	    schema, data, "#Config",
//	    cueutil.WithFilename(path),
//	    cueutil.WithConcrete(false),
//	)
//
// Errors carry the file name and a JSON-style path to the offending field.
package cueutil
