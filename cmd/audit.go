package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrightBytes/insight-cli/internal/audit"
	"github.com/BrightBytes/insight-cli/internal/collection"
	"github.com/BrightBytes/insight-cli/internal/render"
)

var (
	flagAuditX     string
	flagAuditY     string
	flagAuditMode  string
	flagAuditWatch bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run one analysis audit over the working row set",
	Long: `Validates the coordinate mapping, computes statistics, correlation,
categorical aggregation and deltas against the previous audit, and
derives the interpretation and advisory. With --watch, the audit
re-runs silently on the refresh interval until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		modeStr := flagAuditMode
		if modeStr == "" {
			modeStr = cfg.DefaultMode
		}
		mode, err := collection.ParseMode(modeStr)
		if err != nil {
			return err
		}

		req := audit.Request{X: flagAuditX, Y: flagAuditY, Mode: mode}
		if req.X == "" && req.Y == "" {
			if last, ok := s.orch.LastMapping(); ok {
				req.X, req.Y = last.X, last.Y
				fmt.Printf("restored mapping X=%s Y=%s from previous session\n", req.X, req.Y)
			}
		}

		ctx := cmd.Context()
		res, err := s.orch.Run(ctx, req)
		if err != nil {
			return err
		}
		render.WriteText(os.Stdout, res)
		if err := s.chart.Render(res, s.datasets.SelectWorkingSet(mode)); err != nil {
			return err
		}

		if !flagAuditWatch {
			return nil
		}
		watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		interval := time.Duration(cfg.RefreshIntervalSec) * time.Second
		fmt.Printf("\nwatching: refreshing every %s, Ctrl-C to stop\n", interval)
		s.orch.Watch(watchCtx, interval)

		// Swallowed refresh failures stay visible in the activity log.
		if entries := activity.Entries(); len(entries) > 0 {
			fmt.Println("\n[ACTIVITY]")
			for _, e := range entries {
				fmt.Printf("- %s %s %s\n", e.Time.Format("15:04:05"), e.Level, e.Message)
			}
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&flagAuditX, "x", "", "category or date column for the X axis")
	auditCmd.Flags().StringVar(&flagAuditY, "y", "", "numeric metric column for the Y axis")
	auditCmd.Flags().StringVar(&flagAuditMode, "mode", "", "dataset combination mode: single, union or compare")
	auditCmd.Flags().BoolVar(&flagAuditWatch, "watch", false, "keep refreshing on the configured interval")
	rootCmd.AddCommand(auditCmd)
}
