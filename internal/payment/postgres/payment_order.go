package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/frahmantamala/shopfront/internal/core/datamodel/paymentorder"
	"github.com/frahmantamala/shopfront/internal/payment"
)

type PaymentOrderRepository struct {
	db *gorm.DB
}

func NewPaymentOrderRepository(db *gorm.DB) *PaymentOrderRepository {
	return &PaymentOrderRepository{
		db: db,
	}
}

func (r *PaymentOrderRepository) Create(ctx context.Context, order *payment.Order) error {
	row := payment.ToDataModel(order)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create payment order %s: %w", order.RazorpayOrderID, err)
	}

	order.ID = row.ID
	order.CreatedAt = row.CreatedAt
	order.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *PaymentOrderRepository) GetByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*payment.Order, error) {
	var row paymentorder.PaymentOrder
	err := r.db.WithContext(ctx).Where("razorpay_order_id = ?", razorpayOrderID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrNotFound
		}
		return nil, fmt.Errorf("get payment order %s: %w", razorpayOrderID, err)
	}
	return payment.FromDataModel(&row), nil
}

func (r *PaymentOrderRepository) ListByAccount(ctx context.Context, accountID int64) ([]*payment.Order, error) {
	var rows []*paymentorder.PaymentOrder
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list payment orders for account %d: %w", accountID, err)
	}

	orders := make([]*payment.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, payment.FromDataModel(row))
	}
	return orders, nil
}

// UpdateStatus is a compare-and-set on status so concurrent webhook deliveries apply at most once.
func (r *PaymentOrderRepository) UpdateStatus(ctx context.Context, id int64, from, to payment.Status) error {
	result := r.db.WithContext(ctx).
		Model(&paymentorder.PaymentOrder{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return fmt.Errorf("update payment order %d status: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return payment.ErrInvalidTransition
	}
	return nil
}
