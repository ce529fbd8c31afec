// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// message keys of the progress texts
const (
	keyExtractingTar    = "progress.extracting_tar"
	keyExtractingTarGz  = "progress.extracting_tar_gz"
	keyExtractingTarXz  = "progress.extracting_tar_xz"
	keyExtractingTarBz2 = "progress.extracting_tar_bz2"
	keyExtractingFile   = "progress.extracting_file"
)

// Translator provides the human readable text for a message key. It only
// affects progress output, never the extraction itself.
type Translator interface {
	Translate(key string, args ...any) string
}

// NoopTranslator returns the message key, followed by the arguments.
type NoopTranslator struct{}

// Translate implements [Translator].
func (NoopTranslator) Translate(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	return strings.TrimSpace(fmt.Sprintln(append([]any{key}, args...)...))
}

// supportedLanguages are the languages of the message catalog. The first
// entry is the fallback.
var supportedLanguages = []language.Tag{
	language.English,
	language.Japanese,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// messageCatalog holds the progress texts in all supported languages.
var messageCatalog = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	texts := map[language.Tag]map[string]string{
		language.English: {
			keyExtractingTar:    "Extracting TAR archive...",
			keyExtractingTarGz:  "Extracting TAR.GZ archive...",
			keyExtractingTarXz:  "Extracting TAR.XZ archive...",
			keyExtractingTarBz2: "Extracting TAR.BZ2 archive...",
			keyExtractingFile:   "Extracting: %s",
		},
		language.Japanese: {
			keyExtractingTar:    "TARアーカイブを展開中...",
			keyExtractingTarGz:  "TAR.GZアーカイブを展開中...",
			keyExtractingTarXz:  "TAR.XZアーカイブを展開中...",
			keyExtractingTarBz2: "TAR.BZ2アーカイブを展開中...",
			keyExtractingFile:   "展開中: %s",
		},
	}
	for tag, msgs := range texts {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(fmt.Sprintf("invalid message %q (%s): %v", key, tag, err))
			}
		}
	}
	return b
}()

// catalogTranslator translates keys with the built-in message catalog.
type catalogTranslator struct {
	printer *message.Printer
}

// NewTranslator returns a [Translator] for the supported language closest
// to tag. English is used if nothing matches.
func NewTranslator(tag language.Tag) Translator {
	_, idx, _ := languageMatcher.Match(tag)
	return &catalogTranslator{
		printer: message.NewPrinter(supportedLanguages[idx], message.Catalog(messageCatalog)),
	}
}

// ParseLocale parses locale identifiers as found in the LANG environment
// variable, e.g. "ja_JP.UTF-8", and returns [language.English] for
// identifiers that cannot be parsed, e.g. "C" or "POSIX".
func ParseLocale(locale string) language.Tag {
	locale, _, _ = strings.Cut(locale, ".")
	locale, _, _ = strings.Cut(locale, "@")
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return language.English
	}
	return tag
}

// Translate implements [Translator].
func (t *catalogTranslator) Translate(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}
