// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-tarx/tarx"
)

// TestDataString tests the String method of the data struct
func TestDataString(t *testing.T) {
	m := tarx.TelemetryData{
		DecodedNames:        3,
		ExtractedType:       "tar.xz",
		ExtractionDuration:  time.Duration(5 * time.Millisecond),
		ExtractionSize:      1024,
		ExtractedFiles:      5,
		ExtractedHardlinks:  1,
		ExtractedSymlinks:   2,
		ExtractedDirs:       1,
		ExtractionErrors:    1,
		LastExtractionError: fmt.Errorf("example error"),
		InputSize:           2048,
		UnsupportedFiles:    0,
	}

	expected := `{"last_extraction_error":"example error","decoded_names":3,"extracted_dirs":1,"extraction_duration":5000000,"extraction_errors":1,"extracted_files":5,"extracted_hardlinks":1,"extraction_size":1024,"extracted_symlinks":2,"extracted_type":"tar.xz","input_size":2048,"pattern_mismatches":0,"unsupported_files":0,"last_unsupported_file":""}`
	if m.String() != expected {
		t.Errorf("Expected '%s', but got '%s'", expected, m.String())
	}
}
