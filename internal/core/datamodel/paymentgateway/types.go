package paymentgateway

import (
	"bytes"
	"encoding/json"
	"errors"
)

// OrderRequest is the body of POST /v1/orders. Amount is in minor units (paise for INR).
type OrderRequest struct {
	Amount   int64          `json:"amount"`
	Currency string         `json:"currency"`
	Receipt  string         `json:"receipt,omitempty"`
	Notes    map[string]any `json:"notes,omitempty"`
}

func (r *OrderRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be greater than 0")
	}
	if r.Currency == "" {
		return errors.New("currency is required")
	}
	return nil
}

type Order struct {
	ID         string `json:"id"`
	Entity     string `json:"entity"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
	Notes      Notes  `json:"notes"`
	CreatedAt  int64  `json:"created_at"`
}

// Notes decodes the gateway's notes field, which is an empty array rather than an object when unset.
type Notes map[string]any

func (n *Notes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || trimmed[0] == '[' {
		*n = nil
		return nil
	}
	out := map[string]any{}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*n = out
	return nil
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Field       string `json:"field"`
	Source      string `json:"source"`
	Step        string `json:"step"`
	Reason      string `json:"reason"`
}

const (
	ErrorCodeBadRequest = "BAD_REQUEST_ERROR"
	ErrorCodeGateway    = "GATEWAY_ERROR"
	ErrorCodeServer     = "SERVER_ERROR"
)

// WebhookEvent is the envelope Razorpay posts to webhook endpoints.
type WebhookEvent struct {
	Entity    string         `json:"entity"`
	AccountID string         `json:"account_id"`
	Event     string         `json:"event"`
	Contains  []string       `json:"contains"`
	Payload   WebhookPayload `json:"payload"`
	CreatedAt int64          `json:"created_at"`
}

type WebhookPayload struct {
	Payment *struct {
		Entity WebhookPayment `json:"entity"`
	} `json:"payment,omitempty"`
	Order *struct {
		Entity Order `json:"entity"`
	} `json:"order,omitempty"`
}

type WebhookPayment struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

// OrderID returns the gateway order id referenced by the event, preferring the order entity.
func (e *WebhookEvent) OrderID() string {
	if e.Payload.Order != nil && e.Payload.Order.Entity.ID != "" {
		return e.Payload.Order.Entity.ID
	}
	if e.Payload.Payment != nil {
		return e.Payload.Payment.Entity.OrderID
	}
	return ""
}

func (e *WebhookEvent) PaymentID() string {
	if e.Payload.Payment != nil {
		return e.Payload.Payment.Entity.ID
	}
	return ""
}
