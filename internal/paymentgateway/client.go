package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	paymentgatewaytypes "github.com/frahmantamala/shopfront/internal/core/datamodel/paymentgateway"
)

type (
	OrderRequest = paymentgatewaytypes.OrderRequest
	RemoteOrder  = paymentgatewaytypes.Order
	WebhookEvent = paymentgatewaytypes.WebhookEvent
)

// OrderCreator is the narrow view of the gateway used by order creation.
type OrderCreator interface {
	CreateRemoteOrder(ctx context.Context, req OrderRequest) (*RemoteOrder, error)
}

type Config struct {
	BaseURL        string
	KeyID          string
	KeySecret      string
	RequestTimeout time.Duration
}

type RazorpayClient struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
	timeout    time.Duration
	logger     *slog.Logger
}

const maxResponseBytes = 1 << 20

func NewRazorpayClient(config Config, logger *slog.Logger) *RazorpayClient {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &RazorpayClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		keyID:      config.KeyID,
		keySecret:  config.KeySecret,
		timeout:    timeout,
		logger:     logger,
	}
}

func (c *RazorpayClient) Configured() bool {
	return c.keyID != "" && c.keySecret != ""
}

// CreateRemoteOrder registers an order with Razorpay and returns the gateway's view of it.
func (c *RazorpayClient) CreateRemoteOrder(ctx context.Context, req OrderRequest) (*RemoteOrder, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if err := req.Validate(); err != nil {
		return nil, &BadRequestError{Description: err.Error()}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create order request: %w", err)
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("razorpay order request failed",
			"receipt", req.Receipt,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, &GatewayError{Description: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Description: "read response", Err: err}
	}

	c.logger.Info("razorpay order request completed",
		"receipt", req.Receipt,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp.StatusCode, raw)
	}

	var order RemoteOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Description: "decode order response", Err: err}
	}
	if order.ID == "" {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Description: "order response has no id"}
	}

	return &order, nil
}

// decodeError classifies a non-2xx response the way Razorpay's SDKs do: by error code first, then status.
func decodeError(status int, raw []byte) error {
	var envelope paymentgatewaytypes.ErrorEnvelope
	_ = json.Unmarshal(raw, &envelope)
	body := envelope.Error

	description := body.Description
	if description == "" {
		description = http.StatusText(status)
	}

	if body.Code == paymentgatewaytypes.ErrorCodeBadRequest || (body.Code == "" && status == http.StatusBadRequest) {
		return &BadRequestError{
			StatusCode:  status,
			Code:        body.Code,
			Description: description,
			Field:       body.Field,
		}
	}

	return &GatewayError{
		StatusCode:  status,
		Code:        body.Code,
		Description: description,
	}
}
