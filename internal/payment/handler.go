package payment

import (
	"context"
	"net/http"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/transport"
	"github.com/frahmantamala/shopfront/pkg/logger"
)

type ServiceAPI interface {
	CreateOrder(ctx context.Context, caller *internal.User, dto CreateOrderDTO) (*CreateOrderResponse, error)
	ListOrders(ctx context.Context, caller *internal.User) (*OrderListResponse, error)
	ApplyWebhookEvent(ctx context.Context, body []byte, signature string) (*WebhookResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
	}
}

// CreateOrder handles POST /api/payments/order/
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleError(w, internal.ErrAuthenticationNeeded)
		return
	}

	var dto CreateOrderDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	resp, err := h.Service.CreateOrder(r.Context(), caller, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

// ListOrders handles GET /api/payments/orders/
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleError(w, internal.ErrAuthenticationNeeded)
		return
	}

	resp, err := h.Service.ListOrders(r.Context(), caller)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
