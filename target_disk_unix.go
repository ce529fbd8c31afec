// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package tarx

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// canMaintainSymlinkTimestamps reports if [TargetDisk.Lchtimes] changes the
// link itself. os.Chtimes follows symlinks, so unix.Lutimes is used.
const canMaintainSymlinkTimestamps = true

// Chown changes the numeric uid and gid of name without following
// symlinks. Only root may give files away, for everybody else the owner
// stays the extracting user and nothing is done.
func (d *TargetDisk) Chown(name string, uid, gid int) error {
	if os.Geteuid() != 0 {
		return nil
	}
	if err := os.Lchown(name, uid, gid); err != nil {
		return fmt.Errorf("chown failed: %w", err)
	}
	return nil
}

// lchtimes sets the timestamps of the symlink name.
func lchtimes(name string, atime, mtime time.Time) error {
	tv := []unix.Timeval{unixTimeval(atime), unixTimeval(mtime)}
	if err := unix.Lutimes(name, tv); err != nil {
		return fmt.Errorf("lutimes failed: %w", err)
	}
	return nil
}

// unixTimeval converts t with microsecond precision. Partial microseconds
// are rounded up, see unix.NsecToTimeval.
func unixTimeval(t time.Time) unix.Timeval {
	return unix.NsecToTimeval(t.UnixNano())
}
