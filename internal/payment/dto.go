package payment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/shopfront/internal/core/common/validation"
)

const AmountNotPositiveMessage = "Amount must be greater than zero"

// CreateOrderDTO is the body of POST /api/payments/order/. Amount accepts a JSON string or number.
type CreateOrderDTO struct {
	Amount   *decimal.Decimal `json:"amount"`
	Currency string           `json:"currency"`
	Receipt  string           `json:"receipt"`
	Notes    map[string]any   `json:"notes"`
}

func (dto *CreateOrderDTO) Validate() error {
	dto.Currency = strings.TrimSpace(dto.Currency)
	dto.Receipt = strings.TrimSpace(dto.Receipt)

	// Rules apply to the amount as it will be charged, so 0.004 is rejected like 0.
	var amount *decimal.Decimal
	if dto.Amount != nil {
		quantized := QuantizeAmount(*dto.Amount)
		amount = &quantized
	}

	validator := validation.NewValidator()

	validator.Field("amount", amount).
		Required().
		PositiveDecimal(AmountNotPositiveMessage).
		MaxDigits(AmountMaxDigits, AmountPlaces)
	validator.Field("currency", dto.Currency).MaxLength(CurrencyMaxLen)
	validator.Field("receipt", dto.Receipt).MaxLength(ReceiptMaxLen)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type OrderResponse struct {
	ID              int64          `json:"id"`
	RazorpayOrderID string         `json:"razorpay_order_id"`
	Amount          string         `json:"amount"`
	Currency        string         `json:"currency"`
	Receipt         string         `json:"receipt"`
	Notes           map[string]any `json:"notes"`
	Status          Status         `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (o *Order) ToResponse() OrderResponse {
	notes := o.Notes
	if notes == nil {
		notes = map[string]any{}
	}
	return OrderResponse{
		ID:              o.ID,
		RazorpayOrderID: o.RazorpayOrderID,
		Amount:          o.Amount.StringFixed(AmountPlaces),
		Currency:        o.Currency,
		Receipt:         o.Receipt,
		Notes:           notes,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
	}
}

// CreateOrderResponse carries what checkout needs. The key secret never leaves the server.
type CreateOrderResponse struct {
	Order         OrderResponse `json:"order"`
	RazorpayKeyID string        `json:"razorpay_key_id"`
}

type OrderListResponse struct {
	Count   int             `json:"count"`
	Results []OrderResponse `json:"results"`
}

// WebhookResponse acknowledges a webhook delivery.
type WebhookResponse struct {
	Status string `json:"status"`
	Event  string `json:"event,omitempty"`
}
