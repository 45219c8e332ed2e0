package commands

import (
	"os"
	"time"

	"babnet-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints store statistics.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		_, store := createService(ctx)

		stats, err := store.Stats(ctx)
		if err != nil {
			serviceutil.Fatal("read stats", err)
		}

		lastUpdated := "never"
		if stats.LastUpdated != nil {
			lastUpdated = stats.LastUpdated.Format(time.RFC3339)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRow(table.Row{"total meal data", stats.TotalMealData})
		t.AppendRow(table.Row{"last updated", lastUpdated})
		t.Render()
	},
}
