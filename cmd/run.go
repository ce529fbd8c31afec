// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-tarx/tarx"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// CLI are the cli parameters for the tarx binary
type CLI struct {
	Archive           string           `arg:"" name:"archive" help:"Path to archive. (\"-\" for STDIN)"`
	ContinueOnError   bool             `short:"C" help:"Continue extraction on error."`
	DenySymlinks      bool             `short:"D" help:"Deny symlink extraction."`
	Destination       string           `arg:"" name:"destination" default:"." help:"Output directory."`
	DropAttributes    bool             `help:"Do not restore file modes and timestamps from the archive."`
	Encodings         []string         `short:"e" default:"shift_jis,euc-jp" help:"Fallback encodings for non UTF-8 file names, tried in order."`
	FollowSymlinks    bool             `short:"F" help:"[Dangerous!] Follow symlinks to directories during extraction."`
	Format            string           `short:"f" enum:"auto,tar,tar.gz,tar.xz,tar.bz2" default:"auto" help:"Archive format (${enum})."`
	Lang              string           `env:"LANG" default:"en" help:"Language of the progress messages."`
	MaxFiles          int64            `optional:"" default:"100000" help:"Maximum files that are extracted before stop. (disable check: -1)"`
	MaxExtractionSize int64            `optional:"" default:"1073741824" help:"Maximum extraction size that allowed is (in bytes). (disable check: -1)"`
	MaxExtractionTime int64            `optional:"" default:"60" help:"Maximum time that an extraction should take (in seconds). (disable check: -1)"`
	MaxInputSize      int64            `optional:"" default:"1073741824" help:"Maximum input size that allowed is (in bytes). (disable check: -1)"`
	NoOverwrite       bool             `short:"N" help:"Fail if a file already exists."`
	Pattern           []string         `short:"P" optional:"" name:"pattern" help:"Extracted objects need to match shell file name pattern."`
	PreserveOwner     bool             `short:"p" help:"Preserve owner and group of files from archive (only root)."`
	Quiet             bool             `short:"q" help:"Do not show the progress spinner."`
	Telemetry         bool             `short:"T" optional:"" default:"false" help:"Print telemetry data to log after extraction."`
	Verbose           bool             `short:"v" optional:"" help:"Verbose logging."`
	Version           kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// Run the entrypoint into tarx as a cli tool
func Run(version, commit, date string) {
	var cli CLI
	kong.Parse(&cli,
		kong.Description("Extract tar, tar.gz, tar.xz and tar.bz2 archives"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	if err := cli.run(context.Background(), os.Stdin, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run performs the extraction described by the cli parameters. Logs and the
// progress spinner are written to stderr.
func (cli *CLI) run(ctx context.Context, stdin io.Reader, stderr io.Writer) error {

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg, err := cli.config(logger, stderr)
	if err != nil {
		return err
	}

	// open archive
	var archive io.Reader
	if cli.Archive == "-" {
		archive = bufio.NewReader(stdin)
	} else {
		f, err := os.Open(cli.Archive)
		if err != nil {
			return errors.Wrap(fmt.Errorf("%w: %w", tarx.ErrAccess, err), "opening archive failed")
		}
		defer f.Close()
		archive = bufio.NewReader(f)
	}

	if cli.MaxExtractionTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second*time.Duration(cli.MaxExtractionTime))
		defer cancel()
	}

	// extract archive with the given or guessed format, otherwise detect it
	env, known, err := cli.envelope()
	if err != nil {
		return err
	}
	if known {
		err = tarx.ExtractReader(ctx, env, archive, cli.Destination, cfg)
	} else {
		err = tarx.Unpack(ctx, archive, cli.Destination, cfg)
	}
	if err != nil {
		return errors.Wrap(err, "error during extraction")
	}
	return nil
}

// envelope returns the envelope selected by the format flag. In auto mode
// the envelope is guessed from the archive name, if that is not possible
// known is false.
func (cli *CLI) envelope() (env tarx.Envelope, known bool, err error) {
	if cli.Format != "auto" {
		env, err := tarx.ParseEnvelope(cli.Format)
		if err != nil {
			return 0, false, errors.Wrap(err, "invalid format")
		}
		return env, true, nil
	}
	if cli.Archive == "-" {
		return 0, false, nil
	}
	env, known = tarx.EnvelopeFromName(cli.Archive)
	return env, known, nil
}

// config translates the cli parameters into a [tarx.Config].
func (cli *CLI) config(logger *slog.Logger, stderr io.Writer) (*tarx.Config, error) {

	// fallback encodings for file names
	var fallbacks []encoding.Encoding
	for _, name := range cli.Encodings {
		enc, err := tarx.LookupEncoding(name)
		if err != nil {
			return nil, errors.Wrap(err, "invalid encoding")
		}
		fallbacks = append(fallbacks, enc)
	}

	// setup telemetry hook
	telemetryToLog := func(ctx context.Context, td *tarx.TelemetryData) {
		if cli.Telemetry {
			logger.Error("extraction finished", "telemetry", td)
		}
	}

	opts := []tarx.ConfigOption{
		tarx.WithContinueOnError(cli.ContinueOnError),
		tarx.WithDenySymlinkExtraction(cli.DenySymlinks),
		tarx.WithDropFileAttributes(cli.DropAttributes),
		tarx.WithFilenameDecoder(tarx.NewFilenameDecoder(fallbacks...)),
		tarx.WithInsecureTraverseSymlinks(cli.FollowSymlinks),
		tarx.WithLogger(logger),
		tarx.WithMaxExtractionSize(cli.MaxExtractionSize),
		tarx.WithMaxFiles(cli.MaxFiles),
		tarx.WithMaxInputSize(cli.MaxInputSize),
		tarx.WithOverwrite(!cli.NoOverwrite),
		tarx.WithPatterns(cli.Pattern...),
		tarx.WithPreserveOwner(cli.PreserveOwner),
		tarx.WithTelemetryHook(telemetryToLog),
		tarx.WithTranslator(tarx.NewTranslator(tarx.ParseLocale(cli.Lang))),
	}
	if !cli.Quiet {
		opts = append(opts, tarx.WithProgress(tarx.NewSpinner(stderr)))
	}

	return tarx.NewConfig(opts...), nil
}
