// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx_test

import (
	"testing"

	"github.com/go-tarx/tarx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

func TestFilenameDecoder(t *testing.T) {
	tests := []struct {
		name      string
		fallbacks []encoding.Encoding
		raw       []byte
		want      string
	}{
		{
			name: "ascii",
			raw:  []byte("data/readme.txt"),
			want: "data/readme.txt",
		},
		{
			name: "utf-8 is kept",
			raw:  []byte("データ/テスト.txt"),
			want: "データ/テスト.txt",
		},
		{
			name: "shift_jis",
			raw:  []byte("\x83\x65\x83\x58\x83\x67.txt"),
			want: "テスト.txt",
		},
		{
			name:      "euc-jp",
			fallbacks: []encoding.Encoding{japanese.EUCJP},
			raw:       []byte("\xa5\xc6\xa5\xb9\xa5\xc8.txt"),
			want:      "テスト.txt",
		},
		{
			name: "shift_jis is tried before euc-jp",
			raw:  []byte("\xa5\xc6.txt"),
			want: "･ﾆ.txt",
		},
		{
			name:      "custom fallback",
			fallbacks: []encoding.Encoding{charmap.ISO8859_1},
			raw:       []byte("caf\xe9.txt"),
			want:      "café.txt",
		},
		{
			name:      "lossy replacement",
			fallbacks: []encoding.Encoding{japanese.ShiftJIS},
			raw:       []byte("bad\xff\xfe.txt"),
			want:      "bad�.txt",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			decoder := tarx.NewFilenameDecoder(test.fallbacks...)
			assert.Equal(t, test.want, decoder.Decode(test.raw))
		})
	}
}

func TestFilenameDecoderFunc(t *testing.T) {
	decoder := tarx.FilenameDecoderFunc(func(raw []byte) string {
		return "x-" + string(raw)
	})
	assert.Equal(t, "x-name", decoder.Decode([]byte("name")))
}

func TestLookupEncoding(t *testing.T) {
	enc, err := tarx.LookupEncoding("shift_jis")
	require.NoError(t, err)
	assert.Equal(t, japanese.ShiftJIS, enc)

	enc, err = tarx.LookupEncoding("EUC-JP")
	require.NoError(t, err)
	assert.Equal(t, japanese.EUCJP, enc)

	_, err = tarx.LookupEncoding("no-such-encoding")
	assert.Error(t, err)
}
