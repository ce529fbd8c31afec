// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Magic bytes of the envelopes and of the tar stream itself.
//
// gzip: RFC 1952, xz: https://tukaani.org/xz/xz-file-format-1.0.4.txt,
// bzip2: "BZh" followed by the block size digit.
var (
	magicBytesGZip  = [][]byte{{0x1f, 0x8b}}
	magicBytesXz    = [][]byte{{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}}
	magicBytesBzip2 = func() [][]byte {
		mb := make([][]byte, 0, 9)
		for level := byte('1'); level <= '9'; level++ {
			mb = append(mb, []byte{'B', 'Z', 'h', level})
		}
		return mb
	}()

	// ustar (POSIX and PAX) and the GNU variant
	magicBytesTar = [][]byte{
		[]byte("ustar\x00"),
		[]byte("ustar  \x00"),
	}
)

// offsetTar is the offset of the magic field in a tar header block
const offsetTar = 257

func isGZip(header []byte) bool  { return matchesMagicBytes(header, 0, magicBytesGZip) }
func isXz(header []byte) bool    { return matchesMagicBytes(header, 0, magicBytesXz) }
func isBzip2(header []byte) bool { return matchesMagicBytes(header, 0, magicBytesBzip2) }
func isTar(header []byte) bool   { return matchesMagicBytes(header, offsetTar, magicBytesTar) }

// decompressGZipStream reads the gzip header of src. Concatenated gzip
// members are read as one stream.
func decompressGZipStream(src io.Reader) (io.Reader, error) {
	zr, err := gzip.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("cannot read gzip header: %w", err)
	}
	return zr, nil
}

// decompressXzStream reads the xz stream header of src.
func decompressXzStream(src io.Reader) (io.Reader, error) {
	zr, err := xz.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("cannot read xz header: %w", err)
	}
	return zr, nil
}

// decompressBz2Stream wraps src in a bzip2 decoder. The header is checked
// on the first read.
func decompressBz2Stream(src io.Reader) (io.Reader, error) {
	zr, err := bzip2.NewReader(src, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, fmt.Errorf("cannot create bzip2 reader: %w", err)
	}
	return zr, nil
}
