// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package tarx extracts tar archives, optionally wrapped in a gzip, xz or
// bzip2 envelope, into a destination directory.
//
// Each envelope has its own entry point ([ExtractTar], [ExtractTarGz],
// [ExtractTarXz], [ExtractTarBz2]); all of them share one entry loop. Entry
// names that are not valid UTF-8 are re-decoded with a [FilenameDecoder]
// before they are joined with the destination, and progress is reported to a
// [Progress] indicator whose text comes from a [Translator].
//
// Configuration is done using the [Config], built with [NewConfig] and
// [ConfigOption] values. The default configuration rejects path traversal,
// escaping symlinks and oversized input. Statistics of every call are
// collected in [TelemetryData] and handed to the configured [TelemetryHook].
package tarx
