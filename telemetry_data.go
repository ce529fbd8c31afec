// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"context"
	"encoding/json"
	"time"
)

// TelemetryData summarizes a single extraction call. It is passed to the
// [TelemetryHook] when the call returns, also on failure.
type TelemetryData struct {
	// DecodedNames counts entry names that were not valid UTF-8
	DecodedNames int64 `json:"decoded_names"`

	// ExtractedDirs counts created directory entries
	ExtractedDirs int64 `json:"extracted_dirs"`

	// ExtractionDuration is the wall time of the call
	ExtractionDuration time.Duration `json:"extraction_duration"`

	// ExtractionErrors counts failed entries, including the ones skipped
	// with [WithContinueOnError]
	ExtractionErrors int64 `json:"extraction_errors"`

	// ExtractedFiles counts written regular files
	ExtractedFiles int64 `json:"extracted_files"`

	// ExtractedHardlinks counts created hard links
	ExtractedHardlinks int64 `json:"extracted_hardlinks"`

	// ExtractionSize is the sum of bytes written to files
	ExtractionSize int64 `json:"extraction_size"`

	// ExtractedSymlinks counts created symlinks
	ExtractedSymlinks int64 `json:"extracted_symlinks"`

	// ExtractedType is the archive type, e.g. "tar.gz"
	ExtractedType string `json:"extracted_type"`

	// InputSize is the number of bytes read from the source
	InputSize int64 `json:"input_size"`

	// LastExtractionError is the most recent error, nil on success
	LastExtractionError error `json:"last_extraction_error"`

	// PatternMismatches counts entries skipped by [WithPatterns]
	PatternMismatches int64 `json:"pattern_mismatches"`

	// UnsupportedFiles counts skipped entries of unsupported types
	UnsupportedFiles int64 `json:"unsupported_files"`

	// LastUnsupportedFile is the name of the most recently skipped entry
	LastUnsupportedFile string `json:"last_unsupported_file"`
}

// String returns the JSON form of td.
func (td TelemetryData) String() string {
	b, _ := json.Marshal(td)
	return string(b)
}

// MarshalJSON encodes LastExtractionError as its message.
func (td TelemetryData) MarshalJSON() ([]byte, error) {
	type plain TelemetryData
	out := struct {
		LastExtractionError string `json:"last_extraction_error"`
		*plain
	}{plain: (*plain)(&td)}
	if td.LastExtractionError != nil {
		out.LastExtractionError = td.LastExtractionError.Error()
	}
	return json.Marshal(out)
}

// TelemetryHook receives the [TelemetryData] of every extraction call, e.g.
// to forward it to a metrics backend.
type TelemetryHook func(context.Context, *TelemetryData)

// now is the clock of the duration measurement
var now = time.Now

func captureExtractionDuration(td *TelemetryData, start time.Time) {
	td.ExtractionDuration = now().Sub(start)
}

func captureInputSize(td *TelemetryData, r *countingReader) {
	td.InputSize = r.ReadBytes()
}
