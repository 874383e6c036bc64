package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/fulltext-mcp/internal/searcher"
	"github.com/dshills/fulltext-mcp/pkg/types"
)

var (
	searchPageSize    int
	searchGranularity string
	searchDebug       bool
)

var searchCmd = &cobra.Command{
	Use:   "search <dataset> <local> <query>",
	Short: "Search the full text of one record",
	Long: `Searches one record and prints the result as JSON: the matching
annotations as items and, for line, block and page granularity, one hit per
match with its exact character offsets.`,
	Args: cobra.ExactArgs(3),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchPageSize, "page-size", "n", 0, "maximum number of hits (default from config)")
	searchCmd.Flags().StringVarP(&searchGranularity, "granularity", "g", "line", "annotation level: word, line, block, page")
	searchCmd.Flags().BoolVar(&searchDebug, "debug", false, "include snippets and keywords in the output")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	granularity, err := types.ParseGranularity(searchGranularity)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	s, err := searcher.NewSearcher(store, searcher.Options{
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	result, err := s.Search(cmd.Context(), searcher.SearchRequest{
		Record:      types.RecordID{DatasetID: args[0], LocalID: args[1]},
		Query:       args[2],
		PageSize:    searchPageSize,
		Granularity: granularity,
		Debug:       searchDebug,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
