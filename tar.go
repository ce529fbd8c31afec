// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"archive/tar"
	"io"
	"io/fs"
	"time"
)

// archiveWalker yields the entries of an archive in stream order.
type archiveWalker interface {
	Type() string
	Next() (archiveEntry, error)
}

// archiveEntry is a single record of an archive. Names are returned as raw
// bytes, they are not guaranteed to be valid UTF-8.
type archiveEntry interface {
	AccessTime() time.Time
	Gid() int
	IsRegular() bool
	IsDir() bool
	IsSymlink() bool
	IsHardlink() bool
	Linkname() []byte
	Mode() fs.FileMode
	ModTime() time.Time
	Name() []byte
	Open() (io.ReadCloser, error)
	Size() int64
	Type() byte
	Uid() int
}

// tarWalker reads the records of a tar stream. Extended headers (PAX, GNU
// long names) are merged into the following record by [archive/tar].
type tarWalker struct {
	tr  *tar.Reader
	typ string
}

// newTarWalker returns a walker over the tar stream in src. typ is reported
// as the archive type, e.g. "tar.gz".
func newTarWalker(src io.Reader, typ string) *tarWalker {
	return &tarWalker{tr: tar.NewReader(src), typ: typ}
}

// Type returns the archive type
func (w *tarWalker) Type() string {
	return w.typ
}

// Next returns the next record. io.EOF marks the regular end of the stream.
func (w *tarWalker) Next() (archiveEntry, error) {
	hdr, err := w.tr.Next()
	if err != nil {
		return nil, err
	}
	return &tarEntry{hdr: hdr, content: w.tr}, nil
}

// tarEntry is a record of a tar stream. Its content is only readable until
// the walker advances.
type tarEntry struct {
	hdr     *tar.Header
	content io.Reader
}

// AccessTime falls back to the modification time, ustar headers do not
// carry an access time.
func (e *tarEntry) AccessTime() time.Time {
	if e.hdr.AccessTime.IsZero() {
		return e.hdr.ModTime
	}
	return e.hdr.AccessTime
}

func (e *tarEntry) Gid() int           { return e.hdr.Gid }
func (e *tarEntry) Uid() int           { return e.hdr.Uid }
func (e *tarEntry) Size() int64        { return e.hdr.Size }
func (e *tarEntry) ModTime() time.Time { return e.hdr.ModTime }
func (e *tarEntry) Type() byte         { return e.hdr.Typeflag }
func (e *tarEntry) Name() []byte       { return []byte(e.hdr.Name) }
func (e *tarEntry) Linkname() []byte   { return []byte(e.hdr.Linkname) }
func (e *tarEntry) Mode() fs.FileMode  { return e.hdr.FileInfo().Mode() }

// IsRegular reports regular files. Contiguous and sparse files are
// extracted as regular files, [archive/tar] expands the sparse holes.
func (e *tarEntry) IsRegular() bool {
	switch e.hdr.Typeflag {
	case tar.TypeReg, tar.TypeCont, tar.TypeGNUSparse:
		return true
	}
	return false
}

func (e *tarEntry) IsDir() bool      { return e.hdr.Typeflag == tar.TypeDir }
func (e *tarEntry) IsSymlink() bool  { return e.hdr.Typeflag == tar.TypeSymlink }
func (e *tarEntry) IsHardlink() bool { return e.hdr.Typeflag == tar.TypeLink }

// Open returns the content of the entry. Closing it does not close the
// archive stream, which is shared by all entries.
func (e *tarEntry) Open() (io.ReadCloser, error) {
	return io.NopCloser(e.content), nil
}
