package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/core/events"
	"github.com/frahmantamala/shopfront/internal/paymentgateway"
)

type RepositoryAPI interface {
	Create(ctx context.Context, order *Order) error
	GetByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*Order, error)
	ListByAccount(ctx context.Context, accountID int64) ([]*Order, error)
	// UpdateStatus moves an order from one status to another and returns ErrInvalidTransition
	// when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id int64, from, to Status) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      RepositoryAPI
	gateway   paymentgateway.OrderCreator
	publisher EventPublisher
	config    internal.PaymentConfig
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, gateway paymentgateway.OrderCreator, publisher EventPublisher, config internal.PaymentConfig, logger *slog.Logger) *Service {
	if config.Currency == "" {
		config.Currency = internal.DefaultCurrency
	}
	return &Service{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		config:    config,
		logger:    logger,
	}
}

// CreateOrder registers an order with Razorpay for caller and records it locally.
// Nothing is stored unless the gateway confirmed the order.
func (s *Service) CreateOrder(ctx context.Context, caller *internal.User, dto CreateOrderDTO) (*CreateOrderResponse, error) {
	if caller == nil {
		return nil, internal.ErrAuthenticationNeeded
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if !s.config.GatewayConfigured() {
		return nil, internal.ErrGatewayNotConfigured
	}

	currency := dto.Currency
	if currency == "" {
		currency = s.config.Currency
	}
	receipt := dto.Receipt
	if receipt == "" {
		receipt = NewReceipt()
	}
	notes := make(map[string]any, len(dto.Notes)+1)
	maps.Copy(notes, dto.Notes)
	notes["user_email"] = caller.Email

	amount := QuantizeAmount(*dto.Amount)
	remote, err := s.gateway.CreateRemoteOrder(ctx, paymentgateway.OrderRequest{
		Amount:   ToMinorUnits(amount),
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, s.gatewayError(receipt, err)
	}

	order := &Order{
		AccountID:       caller.ID,
		Amount:          amount,
		Currency:        currency,
		RazorpayOrderID: remote.ID,
		Receipt:         receipt,
		Notes:           notes,
		Status:          StatusFromGateway(remote.Status),
	}
	if remote.Receipt != "" {
		order.Receipt = remote.Receipt
	}
	if remote.Notes != nil {
		order.Notes = remote.Notes
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error("razorpay order created but not recorded",
			"razorpay_order_id", remote.ID,
			"account_id", caller.ID,
			"error", err)
		return nil, internal.NewInternalError("Unable to record payment order", err)
	}

	s.logger.Info("payment order created",
		"order_id", order.ID,
		"razorpay_order_id", order.RazorpayOrderID,
		"account_id", caller.ID,
		"amount", order.Amount.StringFixed(AmountPlaces),
		"currency", order.Currency)

	return &CreateOrderResponse{
		Order:         order.ToResponse(),
		RazorpayKeyID: s.config.RazorpayKeyID,
	}, nil
}

func (s *Service) gatewayError(receipt string, err error) error {
	if errors.Is(err, paymentgateway.ErrNotConfigured) {
		return internal.ErrGatewayNotConfigured
	}

	var badRequest *paymentgateway.BadRequestError
	if errors.As(err, &badRequest) {
		s.logger.Warn("razorpay rejected order", "receipt", receipt, "code", badRequest.Code, "field", badRequest.Field)
		return internal.NewGatewayRejectedError("Razorpay rejected the request: "+badRequest.Error(), err)
	}

	s.logger.Error("razorpay order creation failed", "receipt", receipt, "error", err)
	return internal.NewGatewayUnavailableError("Unable to create Razorpay order: "+err.Error(), err)
}

// ListOrders returns the caller's own orders, newest first.
func (s *Service) ListOrders(ctx context.Context, caller *internal.User) (*OrderListResponse, error) {
	if caller == nil {
		return nil, internal.ErrAuthenticationNeeded
	}

	orders, err := s.repo.ListByAccount(ctx, caller.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list payment orders", err)
	}

	resp := &OrderListResponse{
		Count:   len(orders),
		Results: make([]OrderResponse, 0, len(orders)),
	}
	for _, o := range orders {
		resp.Results = append(resp.Results, o.ToResponse())
	}
	return resp, nil
}

const (
	WebhookStatusProcessed = "processed"
	WebhookStatusIgnored   = "ignored"
)

// webhookTargets maps the Razorpay events we act on to the order status they imply.
var webhookTargets = map[string]Status{
	"order.paid":       StatusPaid,
	"payment.captured": StatusPaid,
	"payment.failed":   StatusFailed,
}

// ApplyWebhookEvent authenticates a Razorpay webhook delivery and applies it to the referenced order.
// Deliveries that cannot change anything are acknowledged so Razorpay stops retrying them.
func (s *Service) ApplyWebhookEvent(ctx context.Context, body []byte, signature string) (*WebhookResponse, error) {
	if s.config.WebhookSecret == "" {
		return nil, internal.ErrWebhookNotConfigured
	}
	if err := paymentgateway.VerifyWebhookSignature(body, strings.TrimSpace(signature), s.config.WebhookSecret); err != nil {
		s.logger.Warn("webhook signature rejected", "error", err)
		return nil, internal.ErrInvalidWebhookSignature
	}

	var event paymentgateway.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, internal.NewValidationError("Invalid webhook payload", internal.ErrCodeUnsupportedWebhookPayload).WithCause(err)
	}

	target, ok := webhookTargets[event.Event]
	if !ok {
		s.logger.Debug("webhook event ignored", "event", event.Event)
		return &WebhookResponse{Status: WebhookStatusIgnored, Event: event.Event}, nil
	}

	razorpayOrderID := event.OrderID()
	if razorpayOrderID == "" {
		return nil, internal.NewValidationError("Webhook payload does not reference an order", internal.ErrCodeUnsupportedWebhookPayload)
	}

	order, err := s.repo.GetByRazorpayOrderID(ctx, razorpayOrderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("webhook for unknown order", "event", event.Event, "razorpay_order_id", razorpayOrderID)
			return &WebhookResponse{Status: WebhookStatusIgnored, Event: event.Event}, nil
		}
		return nil, internal.NewInternalError("failed to load payment order", err)
	}

	if order.Status == target {
		return &WebhookResponse{Status: WebhookStatusProcessed, Event: event.Event}, nil
	}
	if !order.Status.CanTransitionTo(target) {
		s.logger.Warn("webhook transition refused",
			"razorpay_order_id", razorpayOrderID,
			"from", order.Status,
			"to", target)
		return &WebhookResponse{Status: WebhookStatusIgnored, Event: event.Event}, nil
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, order.Status, target); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return &WebhookResponse{Status: WebhookStatusIgnored, Event: event.Event}, nil
		}
		return nil, internal.NewInternalError("failed to update payment order", fmt.Errorf("order %d: %w", order.ID, err))
	}

	s.logger.Info("payment order status updated",
		"order_id", order.ID,
		"razorpay_order_id", razorpayOrderID,
		"payment_id", event.PaymentID(),
		"from", order.Status,
		"to", target)

	s.publishStatusChange(ctx, order, target, event.Event)

	return &WebhookResponse{Status: WebhookStatusProcessed, Event: event.Event}, nil
}

func (s *Service) publishStatusChange(ctx context.Context, order *Order, status Status, gatewayEvent string) {
	if s.publisher == nil {
		return
	}

	eventType := events.EventTypePaymentOrderPaid
	if status == StatusFailed {
		eventType = events.EventTypePaymentOrderFailed
	}

	event := events.NewPaymentOrderStatusChanged(
		eventType,
		order.ID,
		order.RazorpayOrderID,
		order.AccountID,
		ToMinorUnits(order.Amount),
		order.Currency,
		string(order.Status),
		string(status),
		gatewayEvent,
	)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish payment event", "event_type", eventType, "order_id", order.ID, "error", err)
	}
}
