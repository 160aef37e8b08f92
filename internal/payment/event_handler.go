package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/shopfront/internal/core/events"
)

// EventHandler writes an audit record for every payment order status change.
type EventHandler struct {
	logger *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{
		logger: logger,
	}
}

func (h *EventHandler) HandleStatusChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(*events.PaymentOrderStatusChanged)
	if !ok {
		h.logger.Error("invalid event type for payment status handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentOrderStatusChanged, got %T", event)
	}

	level := slog.LevelInfo
	if changed.Status == string(StatusFailed) {
		level = slog.LevelWarn
	}

	h.logger.Log(ctx, level, "payment order audit",
		"event_id", changed.EventID(),
		"event_type", changed.EventType(),
		"order_id", changed.OrderID,
		"razorpay_order_id", changed.RazorpayOrderID,
		"account_id", changed.AccountID,
		"amount", FromMinorUnits(changed.AmountMinor).StringFixed(AmountPlaces),
		"currency", changed.Currency,
		"previous_status", changed.PreviousStatus,
		"status", changed.Status,
		"gateway_event", changed.GatewayEvent,
		"occurred_at", changed.OccurredAt())

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentOrderPaid, h.HandleStatusChanged)
	eventBus.Subscribe(events.EventTypePaymentOrderFailed, h.HandleStatusChanged)

	h.logger.Info("payment event handlers registered",
		"handlers", []string{events.EventTypePaymentOrderPaid, events.EventTypePaymentOrderFailed})
}
