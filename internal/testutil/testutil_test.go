// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestMustWriteFileCreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "c.txt")
	MustWriteFile(t, path, []byte("hello"))
	if got := string(MustReadFile(t, path)); got != "hello" {
		t.Errorf("MustReadFile() = %q, want %q", got, "hello")
	}
}

func TestSetHomeDir(t *testing.T) {
	key := "HOME"
	if runtime.GOOS == "windows" {
		key = "USERPROFILE"
	}
	original, had := os.LookupEnv(key)

	dir := t.TempDir()
	restore := SetHomeDir(t, dir)
	if got := os.Getenv(key); got != dir {
		t.Errorf("%s = %q, want %q", key, got, dir)
	}
	restore()

	got, has := os.LookupEnv(key)
	if has != had || got != original {
		t.Errorf("%s not restored: got %q (set=%v), want %q (set=%v)", key, got, has, original, had)
	}
}

func TestMustSetenvAndUnsetenv(t *testing.T) {
	const key = "VRODIFF_TESTUTIL_PROBE"

	restore := MustSetenv(t, key, "1")
	if os.Getenv(key) != "1" {
		t.Fatalf("%s not set", key)
	}
	restoreUnset := MustUnsetenv(t, key)
	if _, ok := os.LookupEnv(key); ok {
		t.Fatalf("%s still set", key)
	}
	restoreUnset()
	if os.Getenv(key) != "1" {
		t.Errorf("%s not restored after unset", key)
	}
	restore()
	if _, ok := os.LookupEnv(key); ok {
		t.Errorf("%s should be unset after restore", key)
	}
}
