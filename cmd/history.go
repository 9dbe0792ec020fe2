package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagHistoryAll bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past audit results",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past audits, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		results, err := s.orch.History()
		if err != nil {
			return err
		}
		if !flagHistoryAll {
			results, err = s.orch.Recent()
			if err != nil {
				return err
			}
		}
		if len(results) == 0 {
			fmt.Println("no audits recorded")
			return nil
		}
		for _, r := range results {
			fmt.Printf("- %s  %s  X=%s Y=%s  hash=%s  %s\n",
				r.Timestamp.Format("2006-01-02 15:04:05"), r.TrackID, r.ChosenX, r.ChosenY,
				r.ContentHash, r.Interpretation.OperationalState)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded audits",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		if err := s.orch.ClearHistory(); err != nil {
			return err
		}
		fmt.Println("✓ audit history cleared")
		return nil
	},
}

func init() {
	historyListCmd.Flags().BoolVar(&flagHistoryAll, "all", false, "list the full stored history, not only the consulted window")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
