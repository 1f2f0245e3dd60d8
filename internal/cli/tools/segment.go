package tools

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/hirelens/internal/chunking"
	"github.com/cloo-solutions/hirelens/internal/ingestion"
	"github.com/cloo-solutions/hirelens/internal/service"
	"github.com/cloo-solutions/hirelens/internal/vectorstore"
)

// SegmentCmd chunks a CV file and optionally ranks the chunks for a query.
func SegmentCmd() *cobra.Command {
	var (
		file    string
		html    bool
		query   string
		topK    int
		target  int
		overlap int
		minSize int
	)

	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Split a CV into chunks",
		Long: `Split a CV into section-aware chunks and print them as JSON.

With --query the chunks are indexed in memory and the top matches are printed
with their relevance scores instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			text := string(data)
			if html {
				if text, err = ingestion.ExtractText(text); err != nil {
					return fmt.Errorf("failed to extract text: %w", err)
				}
			}

			seg := chunking.New(chunking.Config{TargetChars: target, OverlapChars: overlap, MinChars: minSize})
			chunks := seg.ChunkCV(text, "local")
			if query == "" {
				return writeJSON(cmd.OutOrStdout(), chunks)
			}

			retrieval := service.NewRetrievalService(vectorstore.NewMemory(), nil, nil)
			retrieval.Index(cmd.Context(), "local", chunks)
			return writeJSON(cmd.OutOrStdout(), retrieval.Retrieve(cmd.Context(), "local", query, topK))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "CV file to read, - for stdin")
	cmd.Flags().BoolVar(&html, "html", false, "Treat the input as HTML")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Rank chunks against this query")
	cmd.Flags().IntVarP(&topK, "top-k", "k", service.DefaultFallbackTopK, "Number of ranked chunks to print")
	cmd.Flags().IntVar(&target, "target", 0, "Target chunk size in characters (0 for default)")
	cmd.Flags().IntVar(&overlap, "overlap", 0, "Overlap between windows in characters (0 for default)")
	cmd.Flags().IntVar(&minSize, "min", 0, "Minimum chunk size in characters (0 for default)")

	return cmd
}
