package paymentorder

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	StatusCreated = "created"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
)

type PaymentOrder struct {
	ID              int64           `gorm:"primaryKey"`
	AccountID       int64           `gorm:"column:account_id;not null;index"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	Currency        string          `gorm:"column:currency;size:10;not null"`
	RazorpayOrderID string          `gorm:"column:razorpay_order_id;size:255;not null;uniqueIndex"`
	Receipt         string          `gorm:"column:receipt;size:255"`
	Notes           Notes           `gorm:"column:notes"`
	Status          string          `gorm:"column:status;size:20;not null;index"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (PaymentOrder) TableName() string {
	return "payment_orders"
}

// Notes is a free-form JSON object stored as jsonb on postgres and text elsewhere.
type Notes map[string]any

func (n Notes) Value() (driver.Value, error) {
	if n == nil {
		return "{}", nil
	}
	b, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notes: %w", err)
	}
	return string(b), nil
}

func (n *Notes) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*n = Notes{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported notes type %T", value)
	}
	if len(raw) == 0 {
		*n = Notes{}
		return nil
	}
	out := Notes{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("unmarshal notes: %w", err)
	}
	*n = out
	return nil
}

func (Notes) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}
