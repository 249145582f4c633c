// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

// Command import loads a CSV dataset into the YaMDb database.
//
//	yamdb-import --dir static/data [--config config.yaml] [--db path] [--skip-invalid]
//
// It reads the same configuration as the server, so it writes to the
// database the server uses unless --db overrides the path. Stop the server
// first: DuckDB allows a single writer process.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/yamdb/internal/config"
	"github.com/tomtom215/yamdb/internal/database"
	"github.com/tomtom215/yamdb/internal/importer"
	"github.com/tomtom215/yamdb/internal/logging"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dir         string
		configPath  string
		dbPath      string
		skipInvalid bool
	)

	cmd := &cobra.Command{
		Use:     "yamdb-import",
		Short:   "Import a CSV dataset",
		Version: version,
		Long: `Import users, categories, genres, titles, genre links, reviews and
comments from CSV files. Rows are validated like API requests; the first
invalid row aborts the import unless --skip-invalid is given.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, dir, configPath, dbPath, skipInvalid)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "static/data", "Directory holding the CSV files")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file (default: CONFIG_PATH or ./config.yaml)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Database path, overriding the configuration")
	cmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "Log and skip invalid rows instead of aborting")

	return cmd
}

func runImport(cmd *cobra.Command, dir, configPath, dbPath string, skipInvalid bool) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadWithKoanf(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    "console",
		Timestamp: true,
		Output:    cmd.ErrOrStderr(),
	})

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("data directory %q not found", dir)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("dir", dir).Str("db_path", cfg.Database.Path).Bool("skip_invalid", skipInvalid).Msg("Starting import")

	summary, runErr := importer.New(db, importer.Options{Dir: dir, SkipInvalid: skipInvalid}).Run(ctx)
	if summary != nil {
		printSummary(cmd, summary)
	}
	return runErr
}

func printSummary(cmd *cobra.Command, s *importer.Summary) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tIMPORTED\tSKIPPED\tDURATION")
	for _, f := range s.Files {
		if f.Missing {
			fmt.Fprintf(w, "%s\t-\t-\tmissing\n", f.File)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", f.File, f.Imported, f.Skipped, f.Duration.Round(time.Millisecond))
	}
	imported, skipped := s.Totals()
	fmt.Fprintf(w, "total\t%d\t%d\t%s\n", imported, skipped, s.Duration().Round(time.Millisecond))
	_ = w.Flush()
}
