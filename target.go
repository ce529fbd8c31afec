// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Target is the filesystem that entries are written to. Paths passed to a
// Target are already joined with the destination and checked for
// traversal.
type Target interface {
	// CreateFile writes src to path and returns the number of bytes
	// written. An existing file is replaced only if overwrite is true.
	// Writing more than maxSize bytes fails, maxSize -1 is unlimited.
	CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir creates path and its missing parents. An existing
	// directory is not an error.
	CreateDir(path string, mode fs.FileMode) error

	// CreateSymlink creates newname pointing to oldname.
	CreateSymlink(oldname string, newname string, overwrite bool) error

	// CreateHardlink creates newname as another name of the file oldname.
	CreateHardlink(oldname string, newname string, overwrite bool) error

	// Lstat and Stat behave like [os.Lstat] and [os.Stat].
	Lstat(path string) (fs.FileInfo, error)
	Stat(path string) (fs.FileInfo, error)

	// Readlink returns the destination of the symlink name, see [os.Readlink].
	Readlink(name string) (string, error)

	// Chmod, Chtimes and Chown behave like their [os] counterparts.
	Chmod(name string, mode fs.FileMode) error
	Chtimes(name string, atime, mtime time.Time) error
	Chown(name string, uid, gid int) error

	// Lchtimes changes the times of a symlink, not of the file it points to.
	Lchtimes(name string, atime, mtime time.Time) error
}

// createFile writes the archive member name below dst. Missing parent
// directories are created with the configured default mode.
func createFile(t Target, dst string, name string, src io.Reader, mode fs.FileMode, maxSize int64, cfg *Config) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("cannot create file without name")
	}
	name = toOSPath(name)

	if err := createDir(t, dst, filepath.Dir(name), cfg.CustomCreateDirMode(), cfg); err != nil {
		return 0, fmt.Errorf("cannot create directory: %w", err)
	}

	// the file itself must not be a symlink
	if err := securityCheck(t, dst, name, cfg); err != nil {
		return 0, fmt.Errorf("security check path failed: %w", err)
	}
	return t.CreateFile(filepath.Join(dst, name), src, mode, cfg.Overwrite(), maxSize)
}

// createDir creates the archive directory name and its parents below dst.
func createDir(t Target, dst string, name string, mode fs.FileMode, cfg *Config) error {
	if name == "" || name == "." {
		return nil
	}
	if err := securityCheck(t, dst, name, cfg); err != nil {
		return fmt.Errorf("security check path failed: %w", err)
	}
	return t.CreateDir(filepath.Join(dst, toOSPath(name)), mode)
}

// createSymlink creates the archive symlink name below dst. Absolute link
// targets and targets that resolve outside of dst are refused.
func createSymlink(t Target, dst string, name string, linkTarget string, cfg *Config) error {
	if cfg.DenySymlinkExtraction() {
		return unsupportedFile(name)
	}
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if filepath.IsAbs(linkTarget) || strings.HasPrefix(linkTarget, "/") {
		return fmt.Errorf("%w: symlink with absolute path as target: %s", ErrPathTraversal, linkTarget)
	}

	name = toOSPath(name)
	linkDir := filepath.Dir(name)
	if err := createDir(t, dst, linkDir, cfg.CustomCreateDirMode(), cfg); err != nil {
		return fmt.Errorf("cannot create directory %s for symlink: %w", linkDir, err)
	}

	// an existing link of the same name may be replaced, so only the
	// position is checked
	if err := checkTraversal(dst, name); err != nil {
		return fmt.Errorf("security check path failed: %w", err)
	}

	// the target is relative to the directory of the link and may pass
	// through links extracted before, as long as it stays inside dst
	if err := checkTraversal(dst, filepath.Join(linkDir, toOSPath(linkTarget))); err != nil {
		return fmt.Errorf("symlink target security check path failed: %w", err)
	}
	if err := resolveWithin(t, dst, filepath.ToSlash(linkDir)+"/"+linkTarget); err != nil {
		return fmt.Errorf("symlink target security check path failed: %w", err)
	}

	return t.CreateSymlink(linkTarget, filepath.Join(dst, name), cfg.Overwrite())
}

// createHardlink links name to linkTarget. Both are archive paths, relative
// to dst.
func createHardlink(t Target, dst string, name string, linkTarget string, cfg *Config) error {
	if name == "" || linkTarget == "" {
		return fmt.Errorf("empty name")
	}
	name = toOSPath(name)
	linkTarget = toOSPath(linkTarget)

	if err := createDir(t, dst, filepath.Dir(name), cfg.CustomCreateDirMode(), cfg); err != nil {
		return fmt.Errorf("cannot create directory for hard link: %w", err)
	}
	if err := checkTraversal(dst, name); err != nil {
		return fmt.Errorf("security check path failed: %w", err)
	}
	if err := securityCheck(t, dst, linkTarget, cfg); err != nil {
		return fmt.Errorf("hard link target security check path failed: %w", err)
	}

	return t.CreateHardlink(filepath.Join(dst, linkTarget), filepath.Join(dst, name), cfg.Overwrite())
}

// toOSPath turns a slash separated archive path into a platform path.
func toOSPath(name string) string {
	return filepath.Join(strings.Split(name, "/")...)
}

// securityCheck fails if path leaves dst, or if one of its existing
// components below dst is a symlink. With [WithInsecureTraverseSymlinks]
// symlinks are only logged.
func securityCheck(t Target, dst string, path string, cfg *Config) error {
	if err := checkTraversal(dst, path); err != nil {
		return err
	}

	elems := strings.Split(toOSPath(path), string(os.PathSeparator))
	for i := range elems {
		sub := filepath.Join(elems[:i+1]...)
		if sub == "" || sub == "." {
			continue
		}
		link, err := isSymlink(t, filepath.Join(dst, sub))
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
		if !link {
			continue
		}
		if !cfg.TraverseSymlinks() {
			return fmt.Errorf("symlink in path: %s", sub)
		}
		cfg.Logger().Warn("traverse symlink", "sub-dir", sub)
	}
	return nil
}

// checkTraversal returns [ErrPathTraversal] if path, joined with dst, is
// not located within dst.
func checkTraversal(dst string, path string) error {
	if dst == "" && filepath.IsAbs(path) {
		return fmt.Errorf("%w: absolute path", ErrPathTraversal)
	}
	rel, err := filepath.Rel(dst, filepath.Join(dst, toOSPath(path)))
	if err != nil {
		return fmt.Errorf("failed to get relative path: %w", err)
	}
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("%w: %s", ErrPathTraversal, path)
	}
	return nil
}

// maxLinkHops limits the symlinks followed by [resolveWithin], links may
// form cycles.
const maxLinkHops = 255

// resolveWithin follows the existing symlinks along the slash separated
// path name, relative to dst, and returns [ErrPathTraversal] if the
// resolved location leaves dst. Components that do not exist are taken
// as they are.
func resolveWithin(t Target, dst string, name string) error {
	pending := strings.Split(name, "/")
	var resolved []string
	var hops int

	for len(pending) > 0 {
		elem := pending[0]
		pending = pending[1:]

		switch elem {
		case "", ".":
			continue
		case "..":
			if len(resolved) == 0 {
				return fmt.Errorf("%w: %s", ErrPathTraversal, name)
			}
			resolved = resolved[:len(resolved)-1]
			continue
		}

		current := filepath.Join(dst, filepath.Join(resolved...), elem)
		fi, err := t.Lstat(current)
		if errors.Is(err, fs.ErrNotExist) || (err == nil && fi.Mode()&fs.ModeSymlink == 0) {
			resolved = append(resolved, elem)
			continue
		}
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}

		if hops++; hops > maxLinkHops {
			return fmt.Errorf("too many levels of symbolic links: %s", name)
		}
		link, err := t.Readlink(current)
		if err != nil {
			return fmt.Errorf("cannot read symlink: %w", err)
		}
		if filepath.IsAbs(link) || strings.HasPrefix(link, "/") {
			return fmt.Errorf("%w: %s resolves to absolute path %s", ErrPathTraversal, name, link)
		}

		// the link content replaces elem and is relative to its directory
		pending = append(strings.Split(filepath.ToSlash(link), "/"), pending...)
	}
	return nil
}

// isSymlink reports if path exists and is a symlink.
func isSymlink(t Target, path string) (bool, error) {
	fi, err := t.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return fi.Mode()&fs.ModeSymlink != 0, nil
}
