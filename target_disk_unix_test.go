// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package tarx

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestUnixTimeval(t *testing.T) {
	tests := []struct {
		input time.Time
		want  unix.Timeval
	}{
		{time.Unix(0, 0), unix.Timeval{Sec: 0, Usec: 0}},
		{time.Unix(0, 1), unix.Timeval{Sec: 0, Usec: 1}},
		{time.Unix(0, 1000), unix.Timeval{Sec: 0, Usec: 1}},
		{time.Unix(0, 1001), unix.Timeval{Sec: 0, Usec: 2}},
		{time.Unix(1577934245, 0), unix.Timeval{Sec: 1577934245, Usec: 0}},
	}

	for _, test := range tests {
		t.Run(test.input.UTC().String(), func(t *testing.T) {
			if got := unixTimeval(test.input); got != test.want {
				t.Errorf("unixTimeval(%v) = %v; want %v", test.input, got, test.want)
			}
		})
	}
}

func TestLchtimes(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target")
	link := filepath.Join(tmp, "link")
	if err := os.WriteFile(target, []byte("target"), 0640); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("target", link); err != nil {
		t.Fatal(err)
	}
	targetInfo, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}

	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := NewTargetDisk().Lchtimes(link, mtime, mtime); err != nil {
		t.Fatalf("Lchtimes() returned an error, but no error was expected: %v", err)
	}

	linkInfo, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if !linkInfo.ModTime().Equal(mtime) {
		t.Errorf("link mtime = %v, want %v", linkInfo.ModTime(), mtime)
	}

	// the link target is untouched
	after, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(targetInfo.ModTime()) {
		t.Errorf("target mtime changed to %v", after.ModTime())
	}
}
