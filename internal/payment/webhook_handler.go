package payment

import (
	"io"
	"net/http"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/transport"
)

const (
	SignatureHeader     = "X-Razorpay-Signature"
	maxWebhookBodyBytes = 1 << 20
)

type WebhookHandler struct {
	*transport.BaseHandler
	paymentService ServiceAPI
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, paymentService ServiceAPI) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:    baseHandler,
		paymentService: paymentService,
	}
}

// HandleRazorpayWebhook handles POST /api/payments/webhook/. The signature covers the raw body,
// so it is read verbatim before any decoding.
func (h *WebhookHandler) HandleRazorpayWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.HandleError(w, internal.NewValidationError("unable to read request body", internal.ErrCodeInvalidFormat))
		return
	}

	resp, err := h.paymentService.ApplyWebhookEvent(r.Context(), body, r.Header.Get(SignatureHeader))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("razorpay webhook handled",
		"event", resp.Event,
		"status", resp.Status,
		"event_id", r.Header.Get("X-Razorpay-Event-Id"))

	h.WriteJSON(w, http.StatusOK, resp)
}
