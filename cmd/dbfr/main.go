// Command dbfr converts a dBase III attribute table to CSV on stdout.
//
// Usage:
//
//	dbfr [flags] FILE
//
// The text encoding is taken from --encoding, or else from the .cpg file
// beside FILE, or else defaults to ASCII. Options may also be given as
// DBFR_* environment variables or in a YAML file named by --config.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/beetlebugorg/spaceland/pkg/spaceland"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := loadConfig(args, stderr)
	if err != nil {
		var usage *usageError
		switch {
		case errors.Is(err, pflag.ErrHelp):
			return exitOK
		case errors.As(err, &usage):
			fmt.Fprintf(stderr, "dbfr: error: %v\n", err)
			fmt.Fprintln(stderr, "Run 'dbfr --help' for usage.")
			return exitUsage
		}
		fmt.Fprintf(stderr, "dbfr: %v\n", err)
		return exitError
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := convert(ctx, cfg, stdout, logger); err != nil {
		logger.Error("conversion failed", "path", cfg.File, "error", err)
		return exitError
	}
	return exitOK
}

// convert writes the table named by cfg.File to w as CSV.
func convert(ctx context.Context, cfg *Config, w io.Writer, logger *slog.Logger) error {
	opts := spaceland.DefaultOpenOptions()
	opts.Logger = logger
	opts.Encoding = cfg.Encoding
	if opts.Encoding == "" {
		cpg := strings.TrimSuffix(cfg.File, filepath.Ext(cfg.File)) + ".cpg"
		opts.Encoding = spaceland.DetectEncoding(ctx, cpg, opts)
	}

	table, err := spaceland.OpenTable(ctx, cfg.File, opts)
	if err != nil {
		return err
	}
	defer table.Close()

	logger.Debug("converting table",
		"path", cfg.File,
		"encoding", opts.Encoding,
		"fields", len(table.Fields()),
		"records", table.Len())

	out := newCSVWriter(w, cfg.Dialect())

	if !cfg.NoHeader {
		fields := table.Fields()
		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = f.Name
		}
		if err := out.Write(names); err != nil {
			return err
		}
	}

	var row []string
	for record, err := range table.All() {
		if err != nil {
			// Keep the rows written so far.
			return errors.Join(err, out.Flush())
		}
		row = row[:0]
		for _, v := range record {
			row = append(row, v.String())
		}
		if err := out.Write(row); err != nil {
			return err
		}
	}
	return out.Flush()
}
