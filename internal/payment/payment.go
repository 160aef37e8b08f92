package payment

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/shopfront/internal/core/datamodel/paymentorder"
)

type Status string

const (
	StatusCreated Status = paymentorder.StatusCreated
	StatusPaid    Status = paymentorder.StatusPaid
	StatusFailed  Status = paymentorder.StatusFailed
)

// CanTransitionTo reports whether a webhook may move an order from s to next.
// paid is terminal; a failed order can still be paid on a later attempt.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusCreated:
		return next == StatusPaid || next == StatusFailed
	case StatusFailed:
		return next == StatusPaid
	}
	return false
}

// StatusFromGateway maps a Razorpay order status onto a local one.
func StatusFromGateway(status string) Status {
	if status == "paid" {
		return StatusPaid
	}
	return StatusCreated
}

const (
	AmountPlaces    int32 = 2
	AmountMaxDigits int32 = 10
	CurrencyMaxLen        = 10
	ReceiptMaxLen         = 255
	receiptPrefix         = "hb_"
)

var minorUnitFactor = decimal.NewFromInt(100)

// QuantizeAmount rounds half away from zero to two places, so 19.995 becomes 20.00.
func QuantizeAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(AmountPlaces)
}

// ToMinorUnits converts a quantized amount to paise.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitFactor).IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -AmountPlaces)
}

func NewReceipt() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return receiptPrefix + id[:12]
}

type Order struct {
	ID              int64
	AccountID       int64
	Amount          decimal.Decimal
	Currency        string
	RazorpayOrderID string
	Receipt         string
	Notes           map[string]any
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

var (
	ErrNotFound          = errors.New("payment order not found")
	ErrInvalidTransition = errors.New("invalid payment order status transition")
)

func ToDataModel(o *Order) *paymentorder.PaymentOrder {
	return &paymentorder.PaymentOrder{
		ID:              o.ID,
		AccountID:       o.AccountID,
		Amount:          o.Amount,
		Currency:        o.Currency,
		RazorpayOrderID: o.RazorpayOrderID,
		Receipt:         o.Receipt,
		Notes:           paymentorder.Notes(o.Notes),
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func FromDataModel(o *paymentorder.PaymentOrder) *Order {
	return &Order{
		ID:              o.ID,
		AccountID:       o.AccountID,
		Amount:          o.Amount,
		Currency:        o.Currency,
		RazorpayOrderID: o.RazorpayOrderID,
		Receipt:         o.Receipt,
		Notes:           map[string]any(o.Notes),
		Status:          Status(o.Status),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
