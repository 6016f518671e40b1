// SPDX-License-Identifier: MPL-2.0

// Package cli contains CLI integration tests using testscript.
//
// Each script builds its packages from plain files with the mkpackage
// command and runs the real vro-diff binary against them.
package cli

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/vrodiff/vro-diff/internal/testutil/packagetest"
)

// utf16Suffix marks fixture files that mkpackage stores as UTF-16BE with a
// byte order mark, the way the platform exports workflows.
const utf16Suffix = ".utf16"

var (
	// binaryPath is the path to the built vro-diff binary.
	binaryPath string
	// projectRoot is the path to the module root.
	projectRoot string
)

func TestMain(m *testing.M) {
	wd, err := os.Getwd()
	if err != nil {
		panic("failed to get working directory: " + err.Error())
	}

	// Walk up to find go.mod
	projectRoot = wd
	for {
		if _, err := os.Stat(filepath.Join(projectRoot, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(projectRoot)
		if parent == projectRoot {
			panic("could not find project root (go.mod)")
		}
		projectRoot = parent
	}

	binDir := filepath.Join(projectRoot, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		panic("failed to create bin directory: " + err.Error())
	}

	binaryName := "vro-diff"
	if runtime.GOOS == "windows" {
		binaryName = "vro-diff.exe"
	}
	binaryPath = filepath.Join(binDir, binaryName)

	cmd := exec.CommandContext(context.Background(), "go", "build", "-o", binaryPath, ".")
	cmd.Dir = projectRoot
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build vro-diff: " + err.Error())
	}

	os.Exit(m.Run())
}

// TestCLI runs all testscript tests in the testdata directory.
func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			binDir := filepath.Dir(binaryPath)
			env.Setenv("PATH", binDir+string(os.PathListSeparator)+env.Getenv("PATH"))

			// Keep the user's configuration out of the scripts.
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(env.WorkDir, ".config"))
			env.Setenv("APPDATA", filepath.Join(env.WorkDir, ".config"))
			return nil
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"mkpackage": cmdMkpackage,
		},
		// Continue running all tests even if one fails
		ContinueOnError: true,
	})
}

// cmdMkpackage zips a directory tree into a package archive.
//
//	mkpackage <source dir> <package file>
//
// A directory named "data" becomes a nested archive, as resource elements
// are stored. Files ending in .utf16 are re-encoded and lose the suffix.
func cmdMkpackage(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! mkpackage")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: mkpackage <source dir> <package file>")
	}

	data, err := zipTree(ts.MkAbs(args[0]))
	ts.Check(err)
	ts.Check(os.WriteFile(ts.MkAbs(args[1]), data, 0o644))
}

func zipTree(root string) ([]byte, error) {
	var entries []packagetest.Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() != "data" {
				return nil
			}
			nested, err := zipTree(path)
			if err != nil {
				return err
			}
			entries = append(entries, packagetest.Entry{Name: name, Data: nested})
			return filepath.SkipDir
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if trimmed, ok := strings.CutSuffix(name, utf16Suffix); ok {
			name, content = trimmed, packagetest.UTF16BE(string(content), true)
		}
		entries = append(entries, packagetest.Entry{Name: name, Data: content})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return packagetest.Zip(entries...)
}
