package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/shopfront/internal/core/events"
	"github.com/frahmantamala/shopfront/internal/payment"
	"github.com/frahmantamala/shopfront/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the payment event handlers without a gateway round trip`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [paid|failed]",
	Short:     "Publish a synthetic payment order status change",
	Long:      `Run a synthetic status change through the registered payment audit handlers`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(payment.StatusPaid), string(payment.StatusFailed)},
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), payment.Status(args[0]))
	},
}

var (
	eventOrderID string
	eventAmount  int64
)

func publishTestEvent(ctx context.Context, status payment.Status) error {
	eventType := ""
	switch status {
	case payment.StatusPaid:
		eventType = events.EventTypePaymentOrderPaid
	case payment.StatusFailed:
		eventType = events.EventTypePaymentOrderFailed
	default:
		return fmt.Errorf("unsupported status %q, expected paid or failed", status)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	lg := logger.LoggerWrapper()
	eventBus := events.NewEventBus(lg)
	payment.NewEventHandler(lg).RegisterEventHandlers(eventBus)

	event := events.NewPaymentOrderStatusChanged(eventType, 0, eventOrderID, 0, eventAmount,
		"INR", string(payment.StatusCreated), string(status), "cli.test")

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())
	if err := eventBus.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventOrderID, "order", "order_test", "Razorpay order id carried by the event")
	publishEventCmd.Flags().Int64Var(&eventAmount, "amount", 100, "amount in minor units")

	eventCmd.AddCommand(publishEventCmd)
}
