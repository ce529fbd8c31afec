// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

// ExtractTar extracts the plain tar archive src into dst. Missing
// directories of dst are created. If cfg is nil, the default [Config] is used.
func ExtractTar(ctx context.Context, src string, dst string, cfg *Config) error {
	return Extract(ctx, EnvelopeNone, src, dst, cfg)
}

// ExtractTarGz extracts the gzip compressed tar archive src into dst.
func ExtractTarGz(ctx context.Context, src string, dst string, cfg *Config) error {
	return Extract(ctx, EnvelopeGzip, src, dst, cfg)
}

// ExtractTarXz extracts the xz compressed tar archive src into dst.
func ExtractTarXz(ctx context.Context, src string, dst string, cfg *Config) error {
	return Extract(ctx, EnvelopeXz, src, dst, cfg)
}

// ExtractTarBz2 extracts the bzip2 compressed tar archive src into dst.
func ExtractTarBz2(ctx context.Context, src string, dst string, cfg *Config) error {
	return Extract(ctx, EnvelopeBzip2, src, dst, cfg)
}

// Extract opens the archive file src and extracts it into dst. The content
// of src must match env, the format is not detected.
func Extract(ctx context.Context, env Envelope, src string, dst string, cfg *Config) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: cannot open archive: %w", ErrAccess, err)
	}
	defer f.Close()

	return ExtractReader(ctx, env, bufio.NewReader(f), dst, cfg)
}

// ExtractReader extracts the archive stream src, wrapped in env, into dst
// on the local filesystem.
func ExtractReader(ctx context.Context, env Envelope, src io.Reader, dst string, cfg *Config) error {
	return ExtractTo(ctx, NewTargetDisk(), env, src, dst, cfg)
}

// ExtractTo extracts the archive stream src, wrapped in env, into dst on t.
//
// The destination is created after the envelope has been opened. Entries
// are processed in stream order and the first failing entry ends the
// extraction, unless [WithContinueOnError] is set. Entries written before
// a failure are not removed.
func ExtractTo(ctx context.Context, t Target, env Envelope, src io.Reader, dst string, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}
	info, err := env.info()
	if err != nil {
		return err
	}
	if len(dst) == 0 {
		dst = "."
	}

	// prepare telemetry capturing
	td := &TelemetryData{ExtractedType: info.Name}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	// limit input size
	limitedReader := newLimitErrorReader(src, cfg.MaxInputSize())
	defer captureInputSize(td, limitedReader)

	// start decompression
	stream, err := info.Decompress(limitedReader)
	if err != nil {
		return abort(td, ErrStreamFormat, "cannot start decompression", err)
	}
	defer func() {
		if closer, ok := stream.(io.Closer); ok {
			closer.Close()
		}
	}()

	// create destination and all missing parents
	if err := t.CreateDir(dst, cfg.CustomCreateDirMode()); err != nil {
		return abort(td, ErrAccess, "cannot create destination", err)
	}

	// spinner for the whole call, the number of entries is unknown in advance
	progress := cfg.Progress()(cfg.Translator().Translate(info.MessageKey))
	defer progress.Finish()

	return extract(ctx, t, dst, newTarWalker(stream, info.Name), cfg, td, progress)
}

// Unpack detects the envelope of src from its magic bytes and extracts it
// into dst on the local filesystem.
func Unpack(ctx context.Context, src io.Reader, dst string, cfg *Config) error {
	return UnpackTo(ctx, NewTargetDisk(), src, dst, cfg)
}

// UnpackTo detects the envelope of src from its magic bytes and extracts it into dst on t.
func UnpackTo(ctx context.Context, t Target, src io.Reader, dst string, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}

	// peek at the header without consuming it
	br := bufio.NewReaderSize(src, maxHeaderLength)
	header, err := br.Peek(maxHeaderLength)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%w: cannot read header: %w", ErrAccess, err)
	}

	env, ok := DetectEnvelope(header)
	if !ok {
		return fmt.Errorf("%w: archive type not supported", ErrStreamFormat)
	}
	cfg.Logger().Debug("detected archive type", "type", env.String())

	return ExtractTo(ctx, t, env, br, dst, cfg)
}
