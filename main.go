// SPDX-License-Identifier: MPL-2.0

// vro-diff compares two vRO packages and reports, for every element of the
// package about to be imported, whether it is new, an upgrade, unchanged or in
// conflict with the package already imported.
package main

import cmd "github.com/vrodiff/vro-diff/cmd/vrodiff"

func main() {
	cmd.Execute()
}
