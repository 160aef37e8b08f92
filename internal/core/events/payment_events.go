package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentOrderPaid   = "payment_order.paid"
	EventTypePaymentOrderFailed = "payment_order.failed"
)

// PaymentOrderStatusChanged is published after a webhook moves an order to a new status.
type PaymentOrderStatusChanged struct {
	BaseEvent
	OrderID         int64  `json:"order_id"`
	RazorpayOrderID string `json:"razorpay_order_id"`
	AccountID       int64  `json:"account_id"`
	AmountMinor     int64  `json:"amount_minor"`
	Currency        string `json:"currency"`
	PreviousStatus  string `json:"previous_status"`
	Status          string `json:"status"`
	GatewayEvent    string `json:"gateway_event"`
}

func NewPaymentOrderStatusChanged(eventType string, orderID int64, razorpayOrderID string, accountID, amountMinor int64, currency, previousStatus, status, gatewayEvent string) *PaymentOrderStatusChanged {
	return &PaymentOrderStatusChanged{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"order_id":          orderID,
				"razorpay_order_id": razorpayOrderID,
				"account_id":        accountID,
				"amount_minor":      amountMinor,
				"currency":          currency,
				"previous_status":   previousStatus,
				"status":            status,
				"gateway_event":     gatewayEvent,
			},
		},
		OrderID:         orderID,
		RazorpayOrderID: razorpayOrderID,
		AccountID:       accountID,
		AmountMinor:     amountMinor,
		Currency:        currency,
		PreviousStatus:  previousStatus,
		Status:          status,
		GatewayEvent:    gatewayEvent,
	}
}
