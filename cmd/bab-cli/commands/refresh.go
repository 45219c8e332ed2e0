package commands

import (
	"log/slog"
	"time"

	"babnet-backend/lib/serviceutil"
	"babnet-backend/services/cafeteria"

	"github.com/spf13/cobra"
)

var refreshAll *bool

func init() {
	refreshAll = refreshCmd.Flags().Bool("all", false, "Refresh every listed posting instead of only today's.")
	rootCmd.AddCommand(refreshCmd)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh [--all]",
	Short: "Scans the cafeteria board and stores the parsed menus.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service, _ := createService(ctx)

		refreshType := cafeteria.RefreshToday
		if *refreshAll {
			refreshType = cafeteria.RefreshAll
		}

		t1 := time.Now()
		report, err := service.Refresh(ctx, refreshType)
		if err != nil {
			serviceutil.Fatal("refresh", err)
		}
		t2 := time.Now()

		slog.Info(
			"refresh finished",
			"success", report.Success,
			"errors", report.Errors,
			"seconds", t2.Sub(t1).Seconds(),
		)
	},
}
