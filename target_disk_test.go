// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/go-tarx/tarx"
)

func TestTargetDiskCreateFile(t *testing.T) {
	tests := []struct {
		name        string
		exists      bool
		overwrite   bool
		maxSize     int64
		expectError error
		expectData  string
	}{
		{name: "new file", maxSize: -1, expectData: "content"},
		{name: "overwrite existing", exists: true, overwrite: true, maxSize: -1, expectData: "content"},
		{name: "keep existing", exists: true, expectError: os.ErrExist, maxSize: -1, expectData: "old"},
		{name: "size limit", maxSize: 3, expectError: tarx.ErrMaxExtractionSizeExceeded, expectData: "con"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "file")
			if test.exists {
				if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
					t.Fatal(err)
				}
			}

			d := tarx.NewTargetDisk()
			_, err := d.CreateFile(path, strings.NewReader("content"), 0644, test.overwrite, test.maxSize)
			if test.expectError == nil && err != nil {
				t.Fatalf("CreateFile() returned an error, but no error was expected: %v", err)
			}
			if test.expectError != nil && err == nil {
				t.Fatalf("CreateFile() returned no error, want %v", test.expectError)
			}
			if test.expectError == tarx.ErrMaxExtractionSizeExceeded && !errors.Is(err, test.expectError) {
				t.Errorf("CreateFile() error = %v, want %v", err, test.expectError)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("cannot read file: %v", err)
			}
			if string(data) != test.expectData {
				t.Errorf("file content = %q, want %q", data, test.expectData)
			}
		})
	}
}

func TestTargetDiskCreateSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	tmp := t.TempDir()
	link := filepath.Join(tmp, "link")
	d := tarx.NewTargetDisk()

	if err := d.CreateSymlink("first", link, false); err != nil {
		t.Fatalf("CreateSymlink() returned an error, but no error was expected: %v", err)
	}
	if err := d.CreateSymlink("second", link, false); err == nil {
		t.Errorf("CreateSymlink() replaced a link without overwrite")
	}
	if err := d.CreateSymlink("second", link, true); err != nil {
		t.Fatalf("CreateSymlink() with overwrite returned an error: %v", err)
	}
	if target, _ := os.Readlink(link); target != "second" {
		t.Errorf("link target = %q, want %q", target, "second")
	}
}

func TestTargetDiskCreateDir(t *testing.T) {
	tmp := t.TempDir()
	d := tarx.NewTargetDisk()

	path := filepath.Join(tmp, "a", "b", "c")
	if err := d.CreateDir(path, 0750); err != nil {
		t.Fatalf("CreateDir() returned an error, but no error was expected: %v", err)
	}

	// existing directories are fine
	if err := d.CreateDir(path, 0750); err != nil {
		t.Fatalf("CreateDir() on existing directory returned an error: %v", err)
	}

	if stat, err := d.Stat(path); err != nil || !stat.IsDir() {
		t.Errorf("Stat() = %v, %v; want a directory", stat, err)
	}
}
