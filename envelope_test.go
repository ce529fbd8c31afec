// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx_test

import (
	"testing"

	"github.com/go-tarx/tarx"
)

func TestDetectEnvelope(t *testing.T) {
	for _, ec := range envelopeCases() {
		t.Run(ec.name, func(t *testing.T) {
			env, ok := tarx.DetectEnvelope(ec.compress(t, readmeArchive(t)))
			if !ok || env != ec.env {
				t.Errorf("DetectEnvelope() = %v, %v; want %v", env, ok, ec.env)
			}
		})
	}

	for _, header := range [][]byte{nil, []byte("Hello, World!"), []byte("BZh0"), make([]byte, 1024)} {
		if env, ok := tarx.DetectEnvelope(header); ok {
			t.Errorf("DetectEnvelope(%q) = %v, want no match", header, env)
		}
	}
}

func TestEnvelopeFromName(t *testing.T) {
	tests := []struct {
		name   string
		want   tarx.Envelope
		wantOk bool
	}{
		{"archive.tar", tarx.EnvelopeNone, true},
		{"archive.tar.gz", tarx.EnvelopeGzip, true},
		{"ARCHIVE.TGZ", tarx.EnvelopeGzip, true},
		{"dir/archive.tar.xz", tarx.EnvelopeXz, true},
		{"archive.txz", tarx.EnvelopeXz, true},
		{"archive.tar.bz2", tarx.EnvelopeBzip2, true},
		{"archive.tbz2", tarx.EnvelopeBzip2, true},
		{"archive.tbz", tarx.EnvelopeBzip2, true},
		{"archive.zip", 0, false},
		{"archive.gz", 0, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := tarx.EnvelopeFromName(test.name)
			if ok != test.wantOk || got != test.want {
				t.Errorf("EnvelopeFromName(%s) = %v, %v; want %v, %v", test.name, got, ok, test.want, test.wantOk)
			}
		})
	}
}

func TestParseEnvelope(t *testing.T) {
	for _, ec := range envelopeCases() {
		env, err := tarx.ParseEnvelope(ec.name)
		if err != nil || env != ec.env {
			t.Errorf("ParseEnvelope(%s) = %v, %v; want %v", ec.name, env, err, ec.env)
		}
		if env.String() != ec.name {
			t.Errorf("%v.String() = %s, want %s", ec.env, env.String(), ec.name)
		}
	}

	if _, err := tarx.ParseEnvelope("zip"); err == nil {
		t.Errorf("ParseEnvelope(zip) returned no error")
	}
	if s := tarx.Envelope(42).String(); s != "Envelope(42)" {
		t.Errorf("String() of unknown envelope = %s", s)
	}
}
