package commands

import (
	"fmt"
	"os"

	"babnet-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <food name>",
	Short: "Finds the most recent photo of a menu item.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		foodName := args[0]

		_, store := createService(ctx)

		found, err := store.SearchLatestFoodImage(ctx, foodName)
		if err != nil {
			serviceutil.Fatal("search food image", err)
		}
		if found == nil {
			fmt.Println("no photo found for", foodName)
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Food", "Date", "Meal", "Image"})
		t.AppendRow(table.Row{foodName, found.Date, found.MealType, found.Image})
		t.Render()
	},
}
