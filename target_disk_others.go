// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package tarx

import (
	"fmt"
	"runtime"
	"time"
)

// canMaintainSymlinkTimestamps is false, the timestamps of extracted
// symlinks are left as created.
const canMaintainSymlinkTimestamps = false

// Chown is not available, owners cannot be preserved on this platform.
func (d *TargetDisk) Chown(name string, uid, gid int) error {
	return fmt.Errorf("cannot change owner of %s: not supported on %s", name, runtime.GOOS)
}

// lchtimes is never called, see canMaintainSymlinkTimestamps.
func lchtimes(name string, _, _ time.Time) error {
	return fmt.Errorf("cannot change symlink timestamps of %s: not supported on %s", name, runtime.GOOS)
}
