package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/fulltext-mcp/internal/indexer"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import record documents",
	Long: `Imports JSON record documents found anywhere below <path> and plain text
records laid out as <path>/<dataset>/<local>/<page>.txt. <path> may also be a
single JSON file. Unchanged records are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	root, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	idx := indexer.New(store, logger)
	stats, err := idx.ImportRecords(cmd.Context(), root, &indexer.Config{
		Workers:   cfg.Index.Workers,
		BatchSize: cfg.Index.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d records (%d pages, %d annotations), skipped %d, failed %d in %v\n",
		stats.RecordsImported, stats.PagesImported, stats.AnnotationsImported,
		stats.RecordsSkipped, stats.RecordsFailed, stats.Duration)
	for _, msg := range stats.ErrorMessages {
		cmd.PrintErrln("  " + msg)
	}
	return nil
}
