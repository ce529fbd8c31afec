// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
)

// logger receives the diagnostics of an extraction. A [*slog.Logger]
// can be passed as is.
type logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ConfigOption adjusts a [Config] created by [NewConfig].
type ConfigOption func(*Config)

// Config controls a single extraction call. The zero value is not usable,
// create it with [NewConfig].
//
// Without options, extraction refuses to write outside the destination
// and does not follow symlinks inside the destination. Entry count, input
// and output size are unlimited until [WithMaxFiles], [WithMaxInputSize]
// or [WithMaxExtractionSize] set a bound.
type Config struct {
	// error policy
	continueOnError            bool
	continueOnUnsupportedFiles bool

	// attributes of written entries
	customCreateDirMode fs.FileMode
	customFileMode      fs.FileMode
	dropFileAttributes  bool
	preserveOwner       bool
	overwrite           bool

	// symlink handling
	denySymlinkExtraction bool
	traverseSymlinks      bool

	// limits, -1 disables a check
	maxExtractionSize int64
	maxFiles          int64
	maxInputSize      int64

	// entries not matching any of the patterns are skipped
	patterns []string

	// collaborators
	filenameDecoder FilenameDecoder
	logger          logger
	progress        ProgressFunc
	telemetryHook   TelemetryHook
	translator      Translator
}

const (
	defaultCustomCreateDirMode = 0750 // rwxr-x---
	defaultCustomFileMode      = 0640 // rw-r-----
	unlimited                  = -1
)

// discardLogger is used until [WithLogger] sets another one.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func noopTelemetryHook(context.Context, *TelemetryData) {}

// NewConfig returns the default configuration with opts applied in order.
func NewConfig(opts ...ConfigOption) *Config {
	c := &Config{
		customCreateDirMode: defaultCustomCreateDirMode,
		customFileMode:      defaultCustomFileMode,
		maxExtractionSize:   unlimited,
		maxFiles:            unlimited,
		maxInputSize:        unlimited,
		overwrite:           true,
		filenameDecoder:     NewFilenameDecoder(),
		logger:              discardLogger,
		progress:            noopProgressFunc,
		telemetryHook:       noopTelemetryHook,
		translator:          NoopTranslator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckMaxFiles returns [ErrMaxFilesExceeded] if the entry counter is
// above the configured maximum.
func (c *Config) CheckMaxFiles(counter int64) error {
	if c.maxFiles != unlimited && counter > c.maxFiles {
		return ErrMaxFilesExceeded
	}
	return nil
}

// CheckExtractionSize returns [ErrMaxExtractionSizeExceeded] if the sum of
// written bytes is above the configured maximum.
func (c *Config) CheckExtractionSize(fileSize int64) error {
	if c.maxExtractionSize != unlimited && fileSize > c.maxExtractionSize {
		return ErrMaxExtractionSizeExceeded
	}
	return nil
}

// ContinueOnError reports if a failing entry is logged and skipped instead
// of ending the extraction.
func (c *Config) ContinueOnError() bool { return c.continueOnError }

// ContinueOnUnsupportedFiles reports if devices, fifos and denied symlinks
// are skipped silently.
func (c *Config) ContinueOnUnsupportedFiles() bool { return c.continueOnUnsupportedFiles }

// CustomCreateDirMode is the mode of directories that are created without
// an archive entry of their own, before umask.
func (c *Config) CustomCreateDirMode() fs.FileMode { return c.customCreateDirMode }

// CustomFileMode is the mode of files when the archive modes are dropped,
// before umask.
func (c *Config) CustomFileMode() fs.FileMode { return c.customFileMode }

// DenySymlinkExtraction reports if symlink entries are refused.
func (c *Config) DenySymlinkExtraction() bool { return c.denySymlinkExtraction }

// DropFileAttributes reports if modes and times from the archive are ignored.
func (c *Config) DropFileAttributes() bool { return c.dropFileAttributes }

// FilenameDecoder turns raw entry names into strings.
func (c *Config) FilenameDecoder() FilenameDecoder { return c.filenameDecoder }

// Logger returns the logger of the extraction diagnostics.
func (c *Config) Logger() logger { return c.logger }

// MaxExtractionSize is the byte limit over all written files, -1 if unlimited.
func (c *Config) MaxExtractionSize() int64 { return c.maxExtractionSize }

// MaxFiles is the limit of processed entries of any type, -1 if unlimited.
func (c *Config) MaxFiles() int64 { return c.maxFiles }

// MaxInputSize is the byte limit of the compressed input, -1 if unlimited.
func (c *Config) MaxInputSize() int64 { return c.maxInputSize }

// Overwrite reports if existing files in the destination are replaced.
func (c *Config) Overwrite() bool { return c.overwrite }

// Patterns lists the [path/filepath.Match] patterns of entries to extract.
// An empty list extracts everything.
func (c *Config) Patterns() []string { return c.patterns }

// PreserveOwner reports if uid and gid from the archive are applied.
// Changing the owner requires root.
func (c *Config) PreserveOwner() bool { return c.preserveOwner }

// TraverseSymlinks reports if existing symlinks inside the destination may
// be followed while writing.
func (c *Config) TraverseSymlinks() bool { return c.traverseSymlinks }

// Progress returns the constructor of the progress indicator.
func (c *Config) Progress() ProgressFunc {
	if c.progress == nil {
		return noopProgressFunc
	}
	return c.progress
}

// TelemetryHook returns the hook that receives the [TelemetryData] of every
// call.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return noopTelemetryHook
	}
	return c.telemetryHook
}

// Translator returns the provider of progress messages.
func (c *Config) Translator() Translator {
	if c.translator == nil {
		return NoopTranslator{}
	}
	return c.translator
}

// WithContinueOnError logs and skips entries that cannot be written.
// Errors of the archive stream itself always end the extraction.
func WithContinueOnError(yes bool) ConfigOption {
	return func(c *Config) { c.continueOnError = yes }
}

// WithContinueOnUnsupportedFiles skips devices, fifos and, together with
// [WithDenySymlinkExtraction], symlinks without failing.
func WithContinueOnUnsupportedFiles(skip bool) ConfigOption {
	return func(c *Config) { c.continueOnUnsupportedFiles = skip }
}

// WithCustomCreateDirMode sets the mode of implicitly created directories.
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) { c.customCreateDirMode = mode }
}

// WithCustomFileMode sets the mode of files written with
// [WithDropFileAttributes].
func WithCustomFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) { c.customFileMode = mode }
}

// WithDenySymlinkExtraction refuses symlink entries.
func WithDenySymlinkExtraction(deny bool) ConfigOption {
	return func(c *Config) { c.denySymlinkExtraction = deny }
}

// WithDropFileAttributes ignores modes and times stored in the archive.
func WithDropFileAttributes(drop bool) ConfigOption {
	return func(c *Config) { c.dropFileAttributes = drop }
}

// WithFilenameDecoder replaces the decoder of raw entry names. nil keeps
// the current decoder.
func WithFilenameDecoder(decoder FilenameDecoder) ConfigOption {
	return func(c *Config) {
		if decoder != nil {
			c.filenameDecoder = decoder
		}
	}
}

// WithInsecureTraverseSymlinks follows symlinks that already exist in the
// destination. Entries may then be written outside of it.
func WithInsecureTraverseSymlinks(traverse bool) ConfigOption {
	return func(c *Config) { c.traverseSymlinks = traverse }
}

// WithLogger sets the logger. nil keeps the current logger.
func WithLogger(l logger) ConfigOption {
	return func(c *Config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxExtractionSize limits the bytes written over all files.
func WithMaxExtractionSize(limit int64) ConfigOption {
	return func(c *Config) { c.maxExtractionSize = limit }
}

// WithMaxFiles limits the number of entries, directories and links included.
func WithMaxFiles(limit int64) ConfigOption {
	return func(c *Config) { c.maxFiles = limit }
}

// WithMaxInputSize limits the bytes read from the archive source.
func WithMaxInputSize(limit int64) ConfigOption {
	return func(c *Config) { c.maxInputSize = limit }
}

// WithOverwrite controls if existing files in the destination are replaced.
func WithOverwrite(enable bool) ConfigOption {
	return func(c *Config) { c.overwrite = enable }
}

// WithPatterns adds [path/filepath.Match] patterns. Only matching entries
// are extracted.
func WithPatterns(patterns ...string) ConfigOption {
	return func(c *Config) { c.patterns = append(c.patterns, patterns...) }
}

// WithPreserveOwner applies uid and gid from the archive.
func WithPreserveOwner(preserve bool) ConfigOption {
	return func(c *Config) { c.preserveOwner = preserve }
}

// WithProgress sets the constructor of the progress indicator, e.g.
// [NewSpinner].
func WithProgress(progress ProgressFunc) ConfigOption {
	return func(c *Config) { c.progress = progress }
}

// WithTelemetryHook sets the hook called at the end of every extraction.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) { c.telemetryHook = hook }
}

// WithTranslator sets the provider of progress messages.
func WithTranslator(translator Translator) ConfigOption {
	return func(c *Config) { c.translator = translator }
}
