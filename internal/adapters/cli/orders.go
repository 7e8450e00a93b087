package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	productionCommands "github.com/andrescamacho/factorysim-go/internal/application/production/commands"
	productionQueries "github.com/andrescamacho/factorysim-go/internal/application/production/queries"
	"github.com/andrescamacho/factorysim-go/internal/domain/production"
)

var orderStatuses = []production.Status{
	production.StatusPending,
	production.StatusAccepted,
	production.StatusInProgress,
	production.StatusCompleted,
	production.StatusFulfilled,
}

// NewOrderCommand creates the order command with subcommands
func NewOrderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "order",
		Aliases: []string{"orders"},
		Short:   "Production order operations",
		Long: `Create, accept, start and fulfill production orders.

An order moves PENDING -> ACCEPTED -> IN_PROGRESS -> COMPLETED -> FULFILLED.
Accepting reserves materials (or finished stock); starting consumes them and
uses daily production capacity.

Examples:
  factorysim order list --status PENDING
  factorysim order create prod-chair 5
  factorysim order accept 1
  factorysim order buy-materials 1
  factorysim order start 1 2 3
  factorysim order fulfill 1`,
	}

	cmd.AddCommand(newOrderListCommand())
	cmd.AddCommand(newOrderCreateCommand())
	cmd.AddCommand(newOrderAcceptCommand())
	cmd.AddCommand(newOrderStartCommand())
	cmd.AddCommand(newOrderFulfillCommand())
	cmd.AddCommand(newOrderBuyMaterialsCommand())

	return cmd
}

func newOrderListCommand() *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list [order-id]",
		Short: "List production orders",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := &productionQueries.ListOrdersQuery{Statuses: statuses}
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				query.OrderID = &id
			}
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, query)
				if err != nil {
					return err
				}
				orders := resp.(*productionQueries.ListOrdersResponse).Orders
				if printJSONIfRequested(orders) {
					return nil
				}
				printOrders(orders)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (PENDING, ACCEPTED, IN_PROGRESS, COMPLETED, FULFILLED)")
	return cmd
}

func newOrderCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <product-id> <quantity>",
		Short: "Create a customer order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &productionCommands.CreateOrderCommand{ProductID: args[0], Quantity: qty})
				if err != nil {
					return err
				}
				order := resp.(*productionCommands.CreateOrderResponse).Order
				if printJSONIfRequested(order) {
					return nil
				}
				fmt.Printf("✓ Order %d created: %d x %s\n", order.ID, order.Quantity, order.ProductID)
				return nil
			})
		},
	}
}

func newOrderAcceptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <order-id>",
		Short: "Accept a pending order and reserve what is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &productionCommands.AcceptOrderCommand{OrderID: id})
				if err != nil {
					return err
				}
				accepted := resp.(*productionCommands.AcceptOrderResponse)
				if printJSONIfRequested(accepted) {
					return nil
				}
				switch {
				case accepted.Order.FromStock:
					fmt.Printf("✓ Order %d accepted from finished stock\n", id)
				case len(accepted.Shortfall) == 0:
					fmt.Printf("✓ Order %d accepted: all materials reserved\n", id)
				default:
					fmt.Printf("✓ Order %d accepted, materials still missing: %s\n", id, formatCounts(accepted.Shortfall))
					fmt.Printf("  Buy them with: factorysim order buy-materials %d\n", id)
				}
				return nil
			})
		},
	}
}

func newOrderStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start <order-id>...",
		Short: "Start production of one or more accepted orders",
		Long: `Start production of accepted orders in the given order. Each order is
started independently; one failing does not stop the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &productionCommands.StartProductionCommand{OrderIDs: ids})
				if err != nil {
					return err
				}
				started := resp.(*productionCommands.StartProductionResponse)
				if printJSONIfRequested(started) {
					return nil
				}
				for _, r := range started.Results {
					if r.Error != "" {
						fmt.Printf("✗ Order %d: %s\n", r.OrderID, r.Error)
						continue
					}
					fmt.Printf("✓ Order %d started\n", r.OrderID)
				}
				fmt.Printf("\n%d of %d started, %d units of capacity left today\n",
					started.Started, len(ids), started.RemainingCapacity)
				return nil
			})
		},
	}
}

func newOrderFulfillCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fulfill <order-id>",
		Short: "Ship a completed (or stock-served) order and book the sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &productionCommands.FulfillOrderCommand{OrderID: id})
				if err != nil {
					return err
				}
				order := resp.(*productionCommands.FulfillOrderResponse).Order
				if printJSONIfRequested(order) {
					return nil
				}
				fmt.Printf("✓ Order %d fulfilled for %s\n", order.ID, order.Revenue.StringFixed(2))
				return nil
			})
		},
	}
}

func newOrderBuyMaterialsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "buy-materials <order-id>",
		Short: "Buy every missing material of an order from the cheapest provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), appOptions{}, func(ctx context.Context, a *app) error {
				resp, err := a.send(ctx, &productionCommands.OrderMissingMaterialsCommand{OrderID: id})
				if err != nil {
					return err
				}
				outcome := resp.(*productionCommands.OrderMissingMaterialsResponse)
				if printJSONIfRequested(outcome) {
					return nil
				}
				if len(outcome.Placed) == 0 && len(outcome.Skipped) == 0 {
					fmt.Printf("Order %d is not missing any materials\n", id)
					return nil
				}
				for _, po := range outcome.Placed {
					fmt.Printf("✓ PO-%d: %d x %s from %s, arriving day %d\n",
						po.ID, po.Quantity, po.MaterialID, po.ProviderID, po.ExpectedArrival)
				}
				if len(outcome.Skipped) > 0 {
					fmt.Printf("✗ Not bought: %s\n", formatCounts(outcome.Skipped))
				}
				return nil
			})
		},
	}
}

func printOrders(orders []production.Data) {
	if len(orders) == 0 {
		fmt.Println("No orders found")
		return
	}
	w := newTable(os.Stdout)
	fmt.Fprintln(w, "ID\tPRODUCT\tQTY\tSTATUS\tSOURCE\tCREATED\tPROGRESS\tREVENUE")
	for _, o := range orders {
		progress := "-"
		if o.Status == production.StatusInProgress {
			progress = fmt.Sprintf("%d days", o.DaysInProduction)
		}
		revenue := "-"
		if o.Status == production.StatusFulfilled {
			revenue = o.Revenue.StringFixed(2)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%d\t%s\t%s\n",
			o.ID, o.ProductID, o.Quantity, o.Status, o.Source, o.CreatedDay, progress, revenue)
	}
	_ = w.Flush()
}

// formatCounts renders an item->count map as "a=1, b=2" sorted by item
func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, ", ")
}
