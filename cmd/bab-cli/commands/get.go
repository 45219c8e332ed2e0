package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"babnet-backend/lib/meal"
	"babnet-backend/lib/serviceutil"
	"babnet-backend/lib/timezone"
	"babnet-backend/services/cafeteria"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

func renderMenu(date string, data meal.CafeteriaData) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(date)
	t.AppendHeader(table.Row{"Meal", "Regular", "Simple", "Image"})
	for _, mealType := range meal.Types {
		m := data.Meal(mealType)
		t.AppendRow(table.Row{
			mealType,
			strings.Join(m.Regular, "\n"),
			strings.Join(m.Simple, "\n"),
			m.Image,
		})
	}
	t.Render()
}

var getCmd = &cobra.Command{
	Use:   "get [date]",
	Short: "Prints the menu for a date, defaulting to today. Scrapes on a miss.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		date := timezone.FormatDate(timezone.Now())
		if len(args) > 0 {
			date = args[0]
			if _, err := timezone.ParseDate(date); err != nil {
				serviceutil.Fatal("parse date", err)
			}
		}

		service, _ := createService(ctx)

		data, err := service.GetCafeteriaData(ctx, date)
		if errors.Is(err, cafeteria.ErrNoInformation) || errors.Is(err, cafeteria.ErrNoOperation) {
			// the store may simply not have this date yet, try scraping
			posts, scanErr := scanPosts(ctx)
			if scanErr != nil {
				serviceutil.Fatal("scan menu posts", scanErr)
			}
			data, err = service.FetchAndSave(ctx, date, posts)
		}
		if errors.Is(err, cafeteria.ErrNoInformation) {
			fmt.Println("no information for", date)
			return
		}
		if errors.Is(err, cafeteria.ErrNoOperation) {
			fmt.Println("no cafeteria operation on", date)
			return
		}
		if err != nil {
			serviceutil.Fatal("get menu", err)
		}

		renderMenu(date, data)
	},
}
