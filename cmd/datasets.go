package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Inspect and manage the dataset collection",
}

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List datasets with the reconciled cross-dataset summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		sets := s.datasets.Datasets()
		if len(sets) == 0 {
			fmt.Println("no datasets loaded; run 'insight ingest' first")
			return nil
		}
		for _, d := range sets {
			fmt.Printf("- %s  %s  rows=%d  hash=%s  ingested=%s\n",
				d.ID, d.Name, d.Meta.RowCount, d.ContentHash, d.Meta.IngestedAt.Format("2006-01-02 15:04"))
		}
		sum := s.datasets.Reconcile()
		fmt.Printf("\nheaders: %d total, %d shared across all datasets\n", len(sum.AllHeaders), len(sum.SharedHeaders))
		fmt.Printf("rows: %d, estimated memory: %.2f MB\n", sum.TotalRows, sum.EstimatedMemoryMB)

		c := s.datasets.CoordinateCandidates()
		if c.X != "" || c.Y != "" {
			fmt.Printf("suggested mapping: X=%s Y=%s", c.X, c.Y)
			if c.Z != "" {
				fmt.Printf(" Z=%s", c.Z)
			}
			fmt.Println()
		}
		return nil
	},
}

var datasetsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a dataset from the collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		if !s.datasets.Remove(args[0]) {
			return fmt.Errorf("dataset %s not found", args[0])
		}
		fmt.Printf("✓ removed %s\n", args[0])
		return nil
	},
}

func init() {
	datasetsCmd.AddCommand(datasetsListCmd)
	datasetsCmd.AddCommand(datasetsRemoveCmd)
	rootCmd.AddCommand(datasetsCmd)
}
