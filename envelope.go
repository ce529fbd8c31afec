// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Envelope is the outer compression format that wraps a tar stream.
type Envelope int

const (
	// EnvelopeNone is a plain, uncompressed tar stream.
	EnvelopeNone Envelope = iota

	// EnvelopeGzip is a gzip compressed tar stream.
	EnvelopeGzip

	// EnvelopeXz is a xz compressed tar stream.
	EnvelopeXz

	// EnvelopeBzip2 is a bzip2 compressed tar stream.
	EnvelopeBzip2
)

// decompressionFunc wraps src in a decompressing reader. If the returned
// reader implements io.Closer, it is closed after the extraction.
type decompressionFunc func(io.Reader) (io.Reader, error)

// headerCheck is a function that checks if the given header matches the expected magic bytes.
type headerCheck func([]byte) bool

// envelopeInfo holds everything that differs between the envelopes.
type envelopeInfo struct {
	Name        string
	Suffixes    []string
	MessageKey  string
	Decompress  decompressionFunc
	HeaderCheck headerCheck
	MagicBytes  [][]byte
	Offset      int
}

// plainStream returns src unchanged.
func plainStream(src io.Reader) (io.Reader, error) {
	return src, nil
}

// envelopes is the closed set of supported envelopes.
var envelopes = map[Envelope]envelopeInfo{
	EnvelopeNone: {
		Name:        "tar",
		Suffixes:    []string{".tar"},
		MessageKey:  keyExtractingTar,
		Decompress:  plainStream,
		HeaderCheck: isTar,
		MagicBytes:  magicBytesTar,
		Offset:      offsetTar,
	},
	EnvelopeGzip: {
		Name:        "tar.gz",
		Suffixes:    []string{".tar.gz", ".tgz", ".taz"},
		MessageKey:  keyExtractingTarGz,
		Decompress:  decompressGZipStream,
		HeaderCheck: isGZip,
		MagicBytes:  magicBytesGZip,
	},
	EnvelopeXz: {
		Name:        "tar.xz",
		Suffixes:    []string{".tar.xz", ".txz"},
		MessageKey:  keyExtractingTarXz,
		Decompress:  decompressXzStream,
		HeaderCheck: isXz,
		MagicBytes:  magicBytesXz,
	},
	EnvelopeBzip2: {
		Name:        "tar.bz2",
		Suffixes:    []string{".tar.bz2", ".tbz2", ".tbz", ".tz2"},
		MessageKey:  keyExtractingTarBz2,
		Decompress:  decompressBz2Stream,
		HeaderCheck: isBzip2,
		MagicBytes:  magicBytesBzip2,
	},
}

// detectionOrder is the order in which magic bytes are checked. The
// compressed envelopes come first, their magic bytes are at offset 0.
var detectionOrder = []Envelope{EnvelopeGzip, EnvelopeXz, EnvelopeBzip2, EnvelopeNone}

// maxHeaderLength is the maximum header length of all envelopes
var maxHeaderLength int

// init calculates the maximum header length
func init() {
	for _, env := range envelopes {
		needs := env.Offset
		for _, mb := range env.MagicBytes {
			if len(mb)+env.Offset > needs {
				needs = len(mb) + env.Offset
			}
		}
		if needs > maxHeaderLength {
			maxHeaderLength = needs
		}
	}
}

// String returns the archive type of the envelope, e.g. "tar.gz".
func (e Envelope) String() string {
	if info, ok := envelopes[e]; ok {
		return info.Name
	}
	return fmt.Sprintf("Envelope(%d)", int(e))
}

// info returns the registry entry of e.
func (e Envelope) info() (envelopeInfo, error) {
	info, ok := envelopes[e]
	if !ok {
		return envelopeInfo{}, fmt.Errorf("unknown envelope %d", int(e))
	}
	return info, nil
}

// ParseEnvelope parses the archive type names used by [Envelope.String] and
// common short forms like "tgz" or "bz2".
func ParseEnvelope(s string) (Envelope, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "tar", "none":
		return EnvelopeNone, nil
	case "tar.gz", "tgz", "gz", "gzip":
		return EnvelopeGzip, nil
	case "tar.xz", "txz", "xz":
		return EnvelopeXz, nil
	case "tar.bz2", "tbz2", "tbz", "bz2", "bzip2":
		return EnvelopeBzip2, nil
	}
	return 0, fmt.Errorf("unsupported archive type %q", s)
}

// EnvelopeFromName identifies the envelope based on the file name with
// longest suffix match.
func EnvelopeFromName(name string) (Envelope, bool) {
	name = strings.ToLower(name)

	var maxSuffixLength int
	var found Envelope
	for env, info := range envelopes {
		for _, suffix := range info.Suffixes {

			// skip non-matching suffixes
			if !strings.HasSuffix(name, suffix) {
				continue
			}

			// check for longest suffix
			if len(suffix) > maxSuffixLength {
				maxSuffixLength = len(suffix)
				found = env
			}
		}
	}
	return found, maxSuffixLength > 0
}

// DetectEnvelope identifies the envelope based on the magic bytes in header.
func DetectEnvelope(header []byte) (Envelope, bool) {
	for _, env := range detectionOrder {
		if envelopes[env].HeaderCheck(header) {
			return env, true
		}
	}
	return 0, false
}

// matchesMagicBytes checks if data contains one of the magic bytes at offset.
func matchesMagicBytes(data []byte, offset int, magicBytes [][]byte) bool {
	// check all possible magic bytes until match is found
	for _, mb := range magicBytes {
		// check if header is long enough
		if offset+len(mb) > len(data) {
			continue
		}

		// check for byte match
		if bytes.Equal(mb, data[offset:offset+len(mb)]) {
			return true
		}
	}

	// no match found
	return false
}
