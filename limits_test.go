// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLimitErrorReader(t *testing.T) {
	tests := []struct {
		name       string
		limit      int64
		bufferSize int
		expectN    int64
		expectErr  error
	}{
		{name: "under limit", limit: 10, bufferSize: 5, expectN: 5},
		{name: "at limit", limit: 5, bufferSize: 5, expectN: 5},
		{name: "over limit", limit: 4, bufferSize: 5, expectN: 4, expectErr: ErrMaxInputSizeExceeded},
		{name: "small buffer", limit: 10, bufferSize: 2, expectN: 5},
		{name: "small buffer over limit", limit: 3, bufferSize: 2, expectN: 3, expectErr: ErrMaxInputSizeExceeded},
		{name: "unlimited", limit: -1, bufferSize: 5, expectN: 5},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l := newLimitErrorReader(strings.NewReader("12345"), test.limit)

			buf := make([]byte, test.bufferSize)
			var err error
			for err == nil {
				_, err = l.Read(buf)
			}

			if test.expectErr == nil && err != io.EOF {
				t.Errorf("Read() error = %v, want EOF", err)
			}
			if test.expectErr != nil && !errors.Is(err, test.expectErr) {
				t.Errorf("Read() error = %v, want %v", err, test.expectErr)
			}
			if l.ReadBytes() != test.expectN {
				t.Errorf("ReadBytes() = %v, want %v", l.ReadBytes(), test.expectN)
			}
		})
	}
}

func TestLimitWriter(t *testing.T) {
	tests := []struct {
		name      string
		limit     int64
		writes    []string
		expectOut string
		expectErr error
	}{
		{name: "within limit", limit: 10, writes: []string{"hello", "world"}, expectOut: "helloworld"},
		{name: "full then more", limit: 5, writes: []string{"hello", "world"}, expectOut: "hello", expectErr: ErrMaxExtractionSizeExceeded},
		{name: "partial write", limit: 3, writes: []string{"hello"}, expectOut: "hel", expectErr: ErrMaxExtractionSizeExceeded},
		{name: "unlimited", limit: -1, writes: []string{"hello", "world"}, expectOut: "helloworld"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := limitWriter(&buf, test.limit)

			var err error
			for _, s := range test.writes {
				if _, err = w.Write([]byte(s)); err != nil {
					break
				}
			}

			if !errors.Is(err, test.expectErr) {
				t.Errorf("Write() error = %v, want %v", err, test.expectErr)
			}
			if buf.String() != test.expectOut {
				t.Errorf("written = %q, want %q", buf.String(), test.expectOut)
			}
		})
	}
}
