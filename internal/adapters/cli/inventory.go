package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	inventoryQueries "github.com/andrescamacho/factorysim-go/internal/application/inventory/queries"
)

// NewInventoryCommand creates the inventory command
func NewInventoryCommand() *cobra.Command {
	var forecastDays int

	cmd := &cobra.Command{
		Use:     "inventory [item-id]",
		Aliases: []string{"inv"},
		Short:   "Show stock levels, or an item's projected stock",
		Long: `Show physical, committed, available and on-order units per item.

With --forecast, project one item's stock over the coming days from scheduled
purchase arrivals and production completions.

Examples:
  factorysim inventory
  factorysim inventory mat-wood
  factorysim inventory mat-wood --forecast 7`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID := ""
			if len(args) == 1 {
				itemID = args[0]
			}
			if forecastDays > 0 && itemID == "" {
				return fmt.Errorf("--forecast needs an item id")
			}

			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				if forecastDays > 0 {
					return printItemForecast(ctx, a, itemID, forecastDays)
				}

				resp, err := a.send(ctx, &inventoryQueries.GetInventoryQuery{ItemID: itemID})
				if err != nil {
					return err
				}
				inv := resp.(*inventoryQueries.GetInventoryResponse)
				if printJSONIfRequested(inv) {
					return nil
				}
				w := newTable(os.Stdout)
				fmt.Fprintln(w, "ITEM\tNAME\tKIND\tPHYSICAL\tCOMMITTED\tAVAILABLE\tON ORDER\tPROJECTED")
				for _, it := range inv.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n", it.ItemID, it.Name, it.Kind,
						it.Physical, it.Committed, it.Available, it.OnOrder, it.ProjectedAvailable)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				if itemID == "" {
					fmt.Printf("\nStorage: %d / %d units\n", inv.TotalUnits, inv.StorageCapacity)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&forecastDays, "forecast", 0, "Project the item's stock this many days ahead")
	return cmd
}

func printItemForecast(ctx context.Context, a *app, itemID string, days int) error {
	resp, err := a.send(ctx, &inventoryQueries.GetItemForecastQuery{ItemID: itemID, Days: days})
	if err != nil {
		return err
	}
	forecast := resp.(*inventoryQueries.GetItemForecastResponse)
	if printJSONIfRequested(forecast) {
		return nil
	}
	fmt.Printf("Forecast for %s\n\n", forecast.ItemID)
	w := newTable(os.Stdout)
	fmt.Fprintln(w, "DAY\tPHYSICAL\tAVAILABLE")
	for _, p := range forecast.Points {
		fmt.Fprintf(w, "%d (+%d)\t%d\t%d\n", p.Day, p.DayOffset, p.Physical, p.Available)
	}
	return w.Flush()
}
