package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyayagpt/nyaya/search"
)

var indexCollection string

var indexCmd = &cobra.Command{
	Use:   "index <records.json>...",
	Short: "Chunk, embed and store source records in the vector store",
	Long: `Load JSON arrays of penal code sections (Section, section_title,
section_desc) or extracted pages (text, section, page, id, language,
granularity), split them into overlapping chunks, embed them and upsert them
into Weaviate. Re-indexing the same records replaces them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		passages, err := search.LoadRecords(args...)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		collection := a.Cfg.Search.IPCCollection
		switch indexCollection {
		case "", "ipc":
		case "precedent":
			collection = a.Cfg.Search.PrecedentCollection
		default:
			collection = indexCollection
		}
		return a.RunTask(cmd.Context(), func(ctx context.Context) error {
			stats, err := a.Indexer.Index(ctx, collection, passages)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d records as %d chunks (%d stored) into %s\n",
				stats.Records, stats.Chunks, stats.Stored, collection)
			return nil
		})
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexCollection, "collection", "ipc", "ipc, precedent or a collection name")
}
