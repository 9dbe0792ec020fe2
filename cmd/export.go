package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrightBytes/insight-cli/internal/export"
	"github.com/BrightBytes/insight-cli/internal/utils"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a printable HTML report of the most recent audit",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		results, err := s.orch.History()
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return errors.New("no audit recorded; run 'insight audit' first")
		}
		latest := results[0]

		if err := s.chart.Render(latest, nil); err != nil {
			return err
		}
		snapshot, _ := s.chart.ChartSnapshot()

		doc, err := export.Build(latest, snapshot, time.Now())
		if err != nil {
			return err
		}
		if err := utils.SafeWriteFile(flagExportOut, []byte(doc)); err != nil {
			return err
		}
		fmt.Printf("✓ report written to %s\n", flagExportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagExportOut, "out", "report.html", "output path for the HTML report")
	rootCmd.AddCommand(exportCmd)
}
