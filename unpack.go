// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"time"
	"unicode/utf8"
)

// dirAttributes are the attributes of an extracted directory. They are
// applied after all entries have been extracted, otherwise restrictive modes
// would prevent writing the content of the directory.
type dirAttributes struct {
	path  string
	mode  fs.FileMode
	atime time.Time
	mtime time.Time
	uid   int
	gid   int
}

// extract drains src and materializes every entry below dst. Entries are
// processed strictly in stream order.
func extract(ctx context.Context, t Target, dst string, src archiveWalker, c *Config, td *TelemetryData, progress Progress) error {

	c.Logger().Info("start extraction", "type", src.Type(), "destination", dst)
	var objectCounter int64
	var extractedBytes int64
	var dirs []dirAttributes

	for {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			td.ExtractionErrors++
			td.LastExtractionError = err
			return fmt.Errorf("extraction canceled: %w", err)
		}

		// get next entry
		ae, err := src.Next()

		switch {

		// if no more entries are found exit loop
		case err == io.EOF:
			return restoreDirAttributes(t, dirs, c, td)

		// the stream is malformed, nothing after this point can be trusted
		case err != nil:
			return abort(td, ErrStreamFormat, "cannot read archive entry", err)

		// if the header is nil, just skip it
		case ae == nil:
			continue
		}

		// entries of any type count against the limit
		objectCounter++
		if err := c.CheckMaxFiles(objectCounter); err != nil {
			return abort(td, ErrUnpack, "max objects check failed", err)
		}

		// decode the raw name into a path relative to dst
		name := decodeName(c.FilenameDecoder(), ae.Name())
		if !utf8.Valid(ae.Name()) {
			td.DecodedNames++
			c.Logger().Debug("decoded name", "raw", fmt.Sprintf("%q", ae.Name()), "name", name)
		}

		// show the file name of the entry
		if fileName := displayName(name); len(fileName) > 0 {
			progress.SetMessage(c.Translator().Translate(keyExtractingFile, fileName))
		}

		if err := unpackEntry(t, dst, name, ae, c, td, &extractedBytes, &dirs); err != nil {
			return err
		}
		progress.Increment(1)
	}
}

// unpackEntry materializes a single entry. Errors are passed through
// [handleError], so a nil return value does not imply success.
func unpackEntry(t Target, dst string, name string, ae archiveEntry, c *Config, td *TelemetryData, extractedBytes *int64, dirs *[]dirAttributes) error {

	// check if file needs to match patterns
	match, err := checkPatterns(c.Patterns(), name)
	if err != nil {
		return handleError(c, td, ErrUnpack, "cannot check pattern", err)
	}
	if !match {
		c.Logger().Info("skipping file (pattern mismatch)", "name", name)
		td.PatternMismatches++
		return nil
	}

	c.Logger().Debug("extract", "name", name)
	switch {

	// if its a dir and it doesn't exist create it
	case ae.IsDir():

		// keep the directory writable until all entries are extracted
		mode := ae.Mode().Perm() | 0700
		if c.DropFileAttributes() {
			mode = c.CustomCreateDirMode()
		}
		if err := createDir(t, dst, name, mode, c); err != nil {
			return handleError(c, td, ErrUnpack, "failed to create safe directory", err)
		}

		if !c.DropFileAttributes() && name != "." {
			*dirs = append(*dirs, dirAttributes{
				path:  filepath.Join(dst, toOSPath(name)),
				mode:  ae.Mode().Perm(),
				atime: ae.AccessTime(),
				mtime: ae.ModTime(),
				uid:   ae.Uid(),
				gid:   ae.Gid(),
			})
		}

		// store telemetry and continue
		td.ExtractedDirs++
		return nil

	// if it's a file create it
	case ae.IsRegular():

		// check extraction size
		if err := c.CheckExtractionSize(*extractedBytes + ae.Size()); err != nil {
			return abort(td, ErrUnpack, "max extraction size exceeded", err)
		}

		// open file in archive
		fin, err := ae.Open()
		if err != nil {
			return handleError(c, td, ErrUnpack, "failed to open file", err)
		}
		defer fin.Close()

		mode := ae.Mode().Perm()
		if c.DropFileAttributes() {
			mode = c.CustomFileMode()
		}
		maxSize := int64(-1)
		if c.MaxExtractionSize() >= 0 {
			maxSize = c.MaxExtractionSize() - *extractedBytes
		}

		// create file
		writtenBytes, err := createFile(t, dst, name, fin, mode, maxSize, c)
		*extractedBytes += writtenBytes
		td.ExtractionSize = *extractedBytes
		if err != nil {
			if errors.Is(err, ErrMaxExtractionSizeExceeded) {
				return abort(td, ErrUnpack, "max extraction size exceeded", err)
			}
			return handleError(c, td, ErrUnpack, "failed to create file", err)
		}

		// restore attributes from the archive
		if err := setFileAttributes(t, filepath.Join(dst, toOSPath(name)), ae, c); err != nil {
			return handleError(c, td, ErrUnpack, "failed to set file attributes", err)
		}

		// store telemetry
		td.ExtractedFiles++
		return nil

	// symlinks are created as is, their target is not extracted
	case ae.IsSymlink():

		// check if symlinks are allowed
		if c.DenySymlinkExtraction() {

			// check for continue for unsupported files
			if c.ContinueOnUnsupportedFiles() {
				c.Logger().Info("skipped symlink extraction", "name", name)
				td.UnsupportedFiles++
				td.LastUnsupportedFile = name
				return nil
			}

			return handleError(c, td, ErrUnpack, "symlinks are not allowed", unsupportedFile(name))
		}

		// create link
		linkTarget := c.FilenameDecoder().Decode(ae.Linkname())
		if err := createSymlink(t, dst, name, linkTarget, c); err != nil {
			return handleError(c, td, ErrUnpack, "failed to create symlink", err)
		}

		// restore attributes from the archive
		if err := setSymlinkAttributes(t, filepath.Join(dst, toOSPath(name)), ae, c); err != nil {
			return handleError(c, td, ErrUnpack, "failed to set symlink attributes", err)
		}

		// store telemetry and continue
		td.ExtractedSymlinks++
		return nil

	// hard links point to a previous entry of the archive
	case ae.IsHardlink():

		linkTarget := decodeName(c.FilenameDecoder(), ae.Linkname())
		if err := createHardlink(t, dst, name, linkTarget, c); err != nil {
			return handleError(c, td, ErrUnpack, "failed to create hard link", err)
		}

		td.ExtractedHardlinks++
		return nil

	default:

		// global PAX headers carry no file, e.g. the commit id of git archive
		if ae.Type() == tar.TypeXGlobalHeader {
			return nil
		}

		// check if unsupported files should be skipped
		if c.ContinueOnUnsupportedFiles() {
			c.Logger().Info("skipped unsupported file", "name", name, "type", string(ae.Type()))
			td.UnsupportedFiles++
			td.LastUnsupportedFile = name
			return nil
		}

		// increase error counter, set error and end if necessary
		return handleError(c, td, ErrUnpack, "cannot extract file", fmt.Errorf("%w (%x)", unsupportedFile(name), ae.Type()))
	}
}

// decodeName decodes raw with decoder and cleans the result as slash
// separated path. Absolute names stay absolute, they are re-rooted below the
// destination when joined.
func decodeName(decoder FilenameDecoder, raw []byte) string {
	return path.Clean(decoder.Decode(raw))
}

// displayName returns the last element of name, or an empty string if name
// has no file name, e.g. "." or "/".
func displayName(name string) string {
	base := path.Base(name)
	switch base {
	case ".", "..", "/":
		return ""
	}
	return base
}

// checkPatterns checks if the given path matches any of the given patterns.
// If no patterns are given, the function returns true.
func checkPatterns(patterns []string, path string) (bool, error) {

	// no patterns given
	if len(patterns) == 0 {
		return true, nil
	}

	// check if path matches any pattern
	for _, pattern := range patterns {
		if match, err := filepath.Match(pattern, path); err != nil {
			return false, fmt.Errorf("failed to match pattern: %w", err)
		} else if match {
			return true, nil
		}
	}
	return false, nil
}

// setFileAttributes restores mode, timestamps and, if configured, the owner
// of an extracted file.
func setFileAttributes(t Target, path string, ae archiveEntry, c *Config) error {
	if c.DropFileAttributes() {
		return nil
	}
	if err := t.Chmod(path, ae.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod failed: %w", err)
	}
	if err := t.Chtimes(path, ae.AccessTime(), ae.ModTime()); err != nil {
		return fmt.Errorf("chtimes failed: %w", err)
	}
	if c.PreserveOwner() {
		return t.Chown(path, ae.Uid(), ae.Gid())
	}
	return nil
}

// setSymlinkAttributes restores the timestamps and, if configured, the
// owner of a symlink without following it.
func setSymlinkAttributes(t Target, path string, ae archiveEntry, c *Config) error {
	if c.DropFileAttributes() {
		return nil
	}
	if err := t.Lchtimes(path, ae.AccessTime(), ae.ModTime()); err != nil {
		return fmt.Errorf("lchtimes failed: %w", err)
	}
	if c.PreserveOwner() {
		return t.Chown(path, ae.Uid(), ae.Gid())
	}
	return nil
}

// restoreDirAttributes applies the attributes of extracted directories,
// children before their parents.
func restoreDirAttributes(t Target, dirs []dirAttributes, c *Config, td *TelemetryData) error {
	for i := len(dirs) - 1; i >= 0; i-- {
		d := dirs[i]
		if err := t.Chmod(d.path, d.mode); err != nil {
			if err := handleError(c, td, ErrUnpack, "failed to set directory mode", err); err != nil {
				return err
			}
			continue
		}
		if err := t.Chtimes(d.path, d.atime, d.mtime); err != nil {
			if err := handleError(c, td, ErrUnpack, "failed to set directory times", err); err != nil {
				return err
			}
			continue
		}
		if c.PreserveOwner() {
			if err := t.Chown(d.path, d.uid, d.gid); err != nil {
				if err := handleError(c, td, ErrUnpack, "failed to set directory owner", err); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
