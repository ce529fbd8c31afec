// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// TargetDisk writes entries to the local filesystem.
type TargetDisk struct{}

// NewTargetDisk returns a [Target] for the local filesystem.
func NewTargetDisk() *TargetDisk {
	return &TargetDisk{}
}

func (d *TargetDisk) CreateDir(path string, mode fs.FileMode) error {
	if err := os.MkdirAll(path, mode.Perm()); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// CreateFile writes src to path. The content is not removed when maxSize
// is exceeded, the returned error wraps [ErrMaxExtractionSizeExceeded].
func (d *TargetDisk) CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	} else if fi, err := os.Lstat(path); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		// replace the link, never write through it
		if err := os.Remove(path); err != nil {
			return 0, fmt.Errorf("failed to overwrite file: %w", err)
		}
	}

	f, err := os.OpenFile(path, flags, mode.Perm())
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(limitWriter(f, maxSize), src)
	if err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}
	return n, nil
}

func (d *TargetDisk) CreateSymlink(oldname string, newname string, overwrite bool) error {
	if err := replaceable(newname, overwrite); err != nil {
		return err
	}
	if err := os.Symlink(oldname, newname); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}
	return nil
}

func (d *TargetDisk) CreateHardlink(oldname string, newname string, overwrite bool) error {
	if err := replaceable(newname, overwrite); err != nil {
		return err
	}
	if err := os.Link(oldname, newname); err != nil {
		return fmt.Errorf("failed to create hard link: %w", err)
	}
	return nil
}

// replaceable removes name if overwrite is set. A missing name is fine,
// an existing one without overwrite is an [fs.ErrExist] error.
func replaceable(name string, overwrite bool) error {
	_, err := os.Lstat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if !overwrite {
		return fmt.Errorf("%w: %s", fs.ErrExist, name)
	}
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("failed to overwrite file: %w", err)
	}
	return nil
}

func (d *TargetDisk) Lstat(name string) (fs.FileInfo, error) { return os.Lstat(name) }

func (d *TargetDisk) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

func (d *TargetDisk) Readlink(name string) (string, error) { return os.Readlink(name) }

func (d *TargetDisk) Chmod(name string, mode fs.FileMode) error { return os.Chmod(name, mode.Perm()) }

func (d *TargetDisk) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(name, atime, mtime)
}

// Lchtimes does nothing on platforms that cannot change the times of a
// symlink.
func (d *TargetDisk) Lchtimes(name string, atime, mtime time.Time) error {
	if !canMaintainSymlinkTimestamps {
		return nil
	}
	return lchtimes(name, atime, mtime)
}
