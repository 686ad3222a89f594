package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/frahmantamala/revolv-ledger/internal/core/events"
	"github.com/frahmantamala/revolv-ledger/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the ledger event bus: list event types and publish test events.`,
}

var listEventsCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger event types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range events.LedgerEventTypes {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
	},
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test distribution event",
	Long: `Publish a distribution event to an in-process bus with a logging handler, for debugging subscribers.
With --sync the handlers run in the calling goroutine and a handler error fails the command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lg := logger.L()
		bus := events.NewEventBus(lg)
		subscribeLedgerEvents(bus, lg)
		return publishTestEvent(cmd.Context(), bus, args[0], eventProjectID, eventAmount, eventSync)
	},
}

var (
	eventProjectID int64
	eventAmount    string
	eventSync      bool
)

func publishTestEvent(ctx context.Context, bus *events.EventBus, eventType string, projectID int64, rawAmount string, sync bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !slices.Contains(events.LedgerEventTypes, eventType) {
		return fmt.Errorf("unknown event type %q", eventType)
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", rawAmount, err)
	}

	lg := logger.L()
	event := events.NewDistributionEvent(eventType, 0, projectID, 0, amount, 0)
	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID(), "sync", sync)

	if sync {
		if err := bus.PublishSync(ctx, event); err != nil {
			return fmt.Errorf("failed to publish event: %w", err)
		}
	} else {
		if err := bus.Publish(ctx, event); err != nil {
			return fmt.Errorf("failed to publish event: %w", err)
		}
		bus.Wait()
	}
	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventProjectID, "project", 1, "project id carried by the event")
	publishEventCmd.Flags().StringVar(&eventAmount, "amount", "1.00", "amount carried by the event")
	publishEventCmd.Flags().BoolVar(&eventSync, "sync", false, "run handlers synchronously and fail on the first handler error")

	eventCmd.AddCommand(listEventsCmd)
	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
