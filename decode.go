// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
)

// FilenameDecoder converts the raw name bytes of an archive entry into a path.
// Implementations must not fail and must tolerate bytes that are not valid UTF-8.
type FilenameDecoder interface {
	Decode(raw []byte) string
}

// FilenameDecoderFunc is an adapter to use an ordinary function as [FilenameDecoder].
type FilenameDecoderFunc func(raw []byte) string

// Decode calls f(raw).
func (f FilenameDecoderFunc) Decode(raw []byte) string {
	return f(raw)
}

// defaultFallbackEncodings are tried in order for names that are not valid UTF-8.
var defaultFallbackEncodings = []encoding.Encoding{
	japanese.ShiftJIS,
	japanese.EUCJP,
}

// fallbackDecoder keeps valid UTF-8 and tries a list of legacy encodings
// for everything else.
type fallbackDecoder struct {
	fallbacks []encoding.Encoding
}

// NewFilenameDecoder returns a [FilenameDecoder] that keeps valid UTF-8 names.
// Other names are decoded with the first of fallbacks that decodes them
// without errors or replacement characters. If none does, invalid byte
// sequences are replaced with U+FFFD.
//
// Without fallbacks, Shift_JIS and EUC-JP are used.
func NewFilenameDecoder(fallbacks ...encoding.Encoding) FilenameDecoder {
	if len(fallbacks) == 0 {
		fallbacks = defaultFallbackEncodings
	}
	return &fallbackDecoder{fallbacks: fallbacks}
}

// Decode implements [FilenameDecoder].
func (d *fallbackDecoder) Decode(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}

	for _, enc := range d.fallbacks {
		decoded, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}

		// decoders replace invalid input instead of failing
		if bytes.ContainsRune(decoded, utf8.RuneError) {
			continue
		}
		return string(decoded)
	}

	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}

// LookupEncoding returns the encoding for a WHATWG encoding label,
// e.g. "shift_jis", "euc-jp", "gbk" or "windows-1252".
func LookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}
