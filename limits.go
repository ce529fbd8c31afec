// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package tarx

import "io"

// countingReader reads at most limit bytes from r. Reading past the limit
// fails with [ErrMaxInputSizeExceeded], unless r is exhausted exactly at
// the limit. A limit of -1 disables the check.
type countingReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func newLimitErrorReader(r io.Reader, limit int64) *countingReader {
	return &countingReader{r: r, limit: limit}
}

func (c *countingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if c.limit >= 0 {
		left := c.limit - c.read
		if left == 0 {
			var probe [1]byte
			if n, err := c.r.Read(probe[:]); n == 0 && err == io.EOF {
				return 0, io.EOF
			}
			return 0, ErrMaxInputSizeExceeded
		}
		if left < int64(len(p)) {
			p = p[:left]
		}
	}
	n, err := c.r.Read(p)
	c.read += int64(n)
	return n, err
}

// ReadBytes is the number of bytes consumed from the underlying reader.
func (c *countingReader) ReadBytes() int64 {
	return c.read
}

// cappedWriter forwards at most limit bytes to w and fails with
// [ErrMaxExtractionSizeExceeded] on the write that crosses the limit.
type cappedWriter struct {
	w       io.Writer
	limit   int64
	written int64
}

func (c *cappedWriter) Write(p []byte) (int, error) {
	left := c.limit - c.written
	if left <= 0 {
		return 0, ErrMaxExtractionSizeExceeded
	}
	truncated := int64(len(p)) > left
	if truncated {
		p = p[:left]
	}
	n, err := c.w.Write(p)
	c.written += int64(n)
	if err == nil && truncated {
		err = ErrMaxExtractionSizeExceeded
	}
	return n, err
}

// limitWriter caps w at maxSize bytes. A negative maxSize returns w.
func limitWriter(w io.Writer, maxSize int64) io.Writer {
	if maxSize < 0 {
		return w
	}
	return &cappedWriter{w: w, limit: maxSize}
}
