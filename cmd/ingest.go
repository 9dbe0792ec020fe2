package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BrightBytes/insight-cli/internal/dataset"
	"github.com/BrightBytes/insight-cli/internal/parser"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <files...>",
	Short: "Decode tabular files and add them to the collection",
	Long: `Decodes each CSV, TSV or XLSX file into rows, discovers the column
schema by sampling, and admits analyzable datasets into the collection.
Files failing to decode are reported and skipped; the remaining files in
the batch are still attempted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		added := 0
		for _, path := range args {
			d, err := s.registry.ParseFile(path)
			switch {
			case err == nil:
				s.datasets.Add(d)
				added++
				fmt.Printf("✓ %s: %d rows, %d numeric / %d categorical / %d temporal columns (id %s)\n",
					d.Name, d.Meta.RowCount, len(d.Schema.Numerical), len(d.Schema.Categorical), len(d.Schema.Temporal), d.ID)
			case errors.Is(err, dataset.ErrNotAnalyzable):
				// Acceptance rule: dropped silently from the
				// collection, logged for diagnostics.
				log.Warn("dataset rejected", zap.String("file", path), zap.Error(err))
				fmt.Printf("⚠ %s: skipped, %v\n", path, err)
			case parser.IsDependencyMissing(err):
				log.Error("decoder dependency missing", zap.String("file", path), zap.Error(err))
				fmt.Printf("✗ %s: %v\n", path, err)
			default:
				log.Error("ingest failed", zap.String("file", path), zap.Error(err))
				fmt.Printf("✗ %s: %v\n", path, err)
			}
		}
		if added == 0 {
			return errors.New("no dataset ingested")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
