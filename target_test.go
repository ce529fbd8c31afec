// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestSecurityCheck(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		traverse    bool
		expectError bool
	}{
		{name: "plain file", path: "file.txt"},
		{name: "nested file", path: "sub/file.txt"},
		{name: "absolute path is re-rooted", path: "/sub/file.txt"},
		{name: "traversal", path: "../file.txt", expectError: true},
		{name: "hidden traversal", path: "sub/../../file.txt", expectError: true},
		{name: "symlink in path", path: "link/file.txt", expectError: true},
		{name: "symlink in path, traverse", path: "link/file.txt", traverse: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if runtime.GOOS == "windows" {
				t.Skip("symlinks require privileges on windows")
			}

			dst := t.TempDir()
			if err := os.Mkdir(filepath.Join(dst, "sub"), 0750); err != nil {
				t.Fatal(err)
			}
			if err := os.Symlink("sub", filepath.Join(dst, "link")); err != nil {
				t.Fatal(err)
			}

			cfg := NewConfig(WithInsecureTraverseSymlinks(test.traverse))
			err := securityCheck(NewTargetDisk(), dst, test.path, cfg)
			if (err != nil) != test.expectError {
				t.Errorf("securityCheck(%s) = %v, expectError %v", test.path, err, test.expectError)
			}
		})
	}
}

func TestCheckTraversal(t *testing.T) {
	dst := t.TempDir()
	if err := checkTraversal(dst, "a/b/../c"); err != nil {
		t.Errorf("checkTraversal() returned an error for a local path: %v", err)
	}
	if err := checkTraversal(dst, "a/../../c"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("checkTraversal() = %v, want %v", err, ErrPathTraversal)
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"data/readme.txt": "readme.txt",
		"readme.txt":      "readme.txt",
		"data":            "data",
		".":               "",
		"/":               "",
		"..":              "",
	}
	for name, want := range tests {
		if got := displayName(name); got != want {
			t.Errorf("displayName(%q) = %q, want %q", name, got, want)
		}
	}
}

// FuzzSecurityCheckDisk is a fuzzer for the securityCheck function
func FuzzSecurityCheckDisk(f *testing.F) {
	f.Add("name")
	f.Add("../name")
	d := NewTargetDisk()
	f.Fuzz(func(t *testing.T, name string) {
		tmp := t.TempDir()
		_ = securityCheck(d, tmp, name, NewConfig())
	})
}

func TestResolveWithin(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		expectError bool
		traversal   bool
	}{
		{name: "missing path", path: "missing/file"},
		{name: "plain directory", path: "sub/file"},
		{name: "relative link", path: "rel/file"},
		{name: "chain of links", path: "chain/file"},
		{name: "link back to the destination", path: "sub/up/sub"},
		{name: "lexically local, resolved outside", path: "sub/up/../file", expectError: true, traversal: true},
		{name: "absolute link", path: "abs/file", expectError: true, traversal: true},
		{name: "link pointing outside", path: "out/file", expectError: true, traversal: true},
		{name: "link cycle", path: "loop/file", expectError: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if runtime.GOOS == "windows" {
				t.Skip("symlinks require privileges on windows")
			}

			tmp := t.TempDir()
			dst := filepath.Join(tmp, "dst")
			if err := os.MkdirAll(filepath.Join(dst, "sub"), 0750); err != nil {
				t.Fatal(err)
			}
			links := map[string]string{
				"rel":    "sub",
				"chain":  "rel",
				"sub/up": "..",
				"abs":    tmp,
				"out":    "sub/up/..",
				"loop":   "loop2",
				"loop2":  "loop",
			}
			for name, target := range links {
				if err := os.Symlink(target, filepath.Join(dst, filepath.FromSlash(name))); err != nil {
					t.Fatal(err)
				}
			}

			err := resolveWithin(NewTargetDisk(), dst, test.path)
			if (err != nil) != test.expectError {
				t.Errorf("resolveWithin(%s) = %v, expectError %v", test.path, err, test.expectError)
			}
			if test.traversal && !errors.Is(err, ErrPathTraversal) {
				t.Errorf("resolveWithin(%s) = %v, want %v", test.path, err, ErrPathTraversal)
			}
		})
	}
}
