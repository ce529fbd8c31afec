// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"errors"
	"fmt"
)

var (
	// ErrAccess is returned if the archive cannot be opened or the
	// destination cannot be created.
	ErrAccess = errors.New("access error")

	// ErrStreamFormat is returned if the bytes do not match the expected
	// envelope or the decompressed stream is not a valid tar stream.
	ErrStreamFormat = errors.New("stream format error")

	// ErrUnpack is returned if a single entry cannot be written to the destination.
	ErrUnpack = errors.New("unpack error")

	// ErrMaxFilesExceeded indicates that the maximum number of entries is exceeded.
	ErrMaxFilesExceeded = errors.New("maximum files exceeded")

	// ErrMaxExtractionSizeExceeded indicates that the maximum size of extracted content is exceeded.
	ErrMaxExtractionSizeExceeded = errors.New("maximum extraction size exceeded")

	// ErrMaxInputSizeExceeded indicates that more input was read than allowed.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")

	// ErrUnsupportedFile indicates an entry type that cannot be extracted.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrPathTraversal indicates an entry that would be written outside of the destination.
	ErrPathTraversal = errors.New("path traversal detected")
)

// unsupportedFile returns an error that indicates that the entry name is not supported.
func unsupportedFile(name string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFile, name)
}

// handleError increases the error counter, sets the latest error and
// decides if extraction should continue.
func handleError(c *Config, td *TelemetryData, kind error, msg string, err error) error {

	// increase error counter and set error
	td.ExtractionErrors++
	td.LastExtractionError = fmt.Errorf("%w: %s: %w", kind, msg, err)

	// do not end on error
	if c.ContinueOnError() {
		c.Logger().Error(msg, "error", err)
		return nil
	}

	// end extraction on error
	return td.LastExtractionError
}

// abort records err as the terminal error of the extraction. In contrast to
// [handleError], the configuration cannot turn it into a warning.
func abort(td *TelemetryData, kind error, msg string, err error) error {
	td.ExtractionErrors++
	td.LastExtractionError = fmt.Errorf("%w: %s: %w", kind, msg, err)
	return td.LastExtractionError
}
