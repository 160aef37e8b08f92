package payment_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/core/events"
	paymentPkg "github.com/frahmantamala/shopfront/internal/payment"
	"github.com/frahmantamala/shopfront/internal/paymentgateway"
	"github.com/frahmantamala/shopfront/internal/transport"
)

const webhookSecret = "whsec"

func paymentWebhook(event, orderID string) string {
	return fmt.Sprintf(`{
		"entity": "event",
		"account_id": "acc_test",
		"event": %q,
		"contains": ["payment"],
		"payload": {"payment": {"entity": {"id": "pay_1", "order_id": %q, "amount": 2000, "currency": "INR", "status": "captured"}}},
		"created_at": 1700000000
	}`, event, orderID)
}

var _ = Describe("Razorpay webhooks", func() {
	var (
		service   *paymentPkg.Service
		repo      *mockOrderRepository
		publisher *recordingPublisher
		config    internal.PaymentConfig
		ctx       context.Context
	)

	seed := func(status paymentPkg.Status) {
		Expect(repo.Create(ctx, &paymentPkg.Order{
			AccountID:       42,
			Amount:          decimal.RequireFromString("20.00"),
			Currency:        "INR",
			RazorpayOrderID: "order_abc123",
			Status:          status,
		})).To(Succeed())
	}

	apply := func(body string) (*paymentPkg.WebhookResponse, error) {
		return service.ApplyWebhookEvent(ctx, []byte(body), paymentgateway.SignWebhookBody([]byte(body), webhookSecret))
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockOrderRepository()
		publisher = &recordingPublisher{}
		config = internal.PaymentConfig{
			RazorpayKeyID:     "rzp_test_key",
			RazorpayKeySecret: "rzp_test_secret",
			WebhookSecret:     webhookSecret,
		}
		service = paymentPkg.NewService(repo, &fakeGateway{}, publisher, config, testLogger)
	})

	It("marks the order paid on payment.captured and publishes an event", func() {
		seed(paymentPkg.StatusCreated)

		resp, err := apply(paymentWebhook("payment.captured", "order_abc123"))

		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Status).To(Equal(paymentPkg.WebhookStatusProcessed))
		Expect(repo.orders["order_abc123"].Status).To(Equal(paymentPkg.StatusPaid))
		Expect(publisher.events).To(HaveLen(1))

		changed, ok := publisher.events[0].(*events.PaymentOrderStatusChanged)
		Expect(ok).To(BeTrue())
		Expect(changed.EventType()).To(Equal(events.EventTypePaymentOrderPaid))
		Expect(changed.AmountMinor).To(Equal(int64(2000)))
		Expect(changed.PreviousStatus).To(Equal("created"))
	})

	It("marks the order failed on payment.failed", func() {
		seed(paymentPkg.StatusCreated)

		_, err := apply(paymentWebhook("payment.failed", "order_abc123"))

		Expect(err).NotTo(HaveOccurred())
		Expect(repo.orders["order_abc123"].Status).To(Equal(paymentPkg.StatusFailed))
		Expect(publisher.events[0].EventType()).To(Equal(events.EventTypePaymentOrderFailed))
	})

	It("lets a failed order be paid later", func() {
		seed(paymentPkg.StatusFailed)

		_, err := apply(paymentWebhook("payment.captured", "order_abc123"))

		Expect(err).NotTo(HaveOccurred())
		Expect(repo.orders["order_abc123"].Status).To(Equal(paymentPkg.StatusPaid))
	})

	It("never moves a paid order back", func() {
		seed(paymentPkg.StatusPaid)

		resp, err := apply(paymentWebhook("payment.failed", "order_abc123"))

		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Status).To(Equal(paymentPkg.WebhookStatusIgnored))
		Expect(repo.orders["order_abc123"].Status).To(Equal(paymentPkg.StatusPaid))
		Expect(publisher.events).To(BeEmpty())
	})

	It("treats a repeated delivery as already processed", func() {
		seed(paymentPkg.StatusPaid)

		resp, err := apply(paymentWebhook("order.paid", "order_abc123"))

		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Status).To(Equal(paymentPkg.WebhookStatusProcessed))
		Expect(publisher.events).To(BeEmpty())
	})

	It("acknowledges events it does not act on", func() {
		resp, err := apply(paymentWebhook("refund.created", "order_abc123"))

		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Status).To(Equal(paymentPkg.WebhookStatusIgnored))
	})

	It("acknowledges events for orders it does not know", func() {
		resp, err := apply(paymentWebhook("payment.captured", "order_unknown"))

		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Status).To(Equal(paymentPkg.WebhookStatusIgnored))
	})

	It("rejects a bad signature", func() {
		seed(paymentPkg.StatusCreated)
		body := paymentWebhook("payment.captured", "order_abc123")

		_, err := service.ApplyWebhookEvent(ctx, []byte(body), paymentgateway.SignWebhookBody([]byte(body), "other"))

		Expect(errors.Is(err, internal.ErrInvalidWebhookSignature)).To(BeTrue())
		Expect(repo.orders["order_abc123"].Status).To(Equal(paymentPkg.StatusCreated))
	})

	It("reports a missing webhook secret as a configuration error", func() {
		config.WebhookSecret = ""
		service = paymentPkg.NewService(repo, &fakeGateway{}, publisher, config, testLogger)

		_, err := apply(paymentWebhook("payment.captured", "order_abc123"))

		Expect(errors.Is(err, internal.ErrWebhookNotConfigured)).To(BeTrue())
	})

	It("surfaces storage failures so Razorpay retries", func() {
		seed(paymentPkg.StatusCreated)
		repo.updateError = errors.New("connection reset")

		_, err := apply(paymentWebhook("payment.captured", "order_abc123"))

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(500))
	})

	Describe("WebhookHandler", func() {
		var handler *paymentPkg.WebhookHandler

		BeforeEach(func() {
			handler = paymentPkg.NewWebhookHandler(transport.NewBaseHandler(testLogger), service)
		})

		It("reads the signature header and answers 200", func() {
			seed(paymentPkg.StatusCreated)
			body := paymentWebhook("payment.captured", "order_abc123")
			req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook/", strings.NewReader(body))
			req.Header.Set(paymentPkg.SignatureHeader, paymentgateway.SignWebhookBody([]byte(body), webhookSecret))
			rec := httptest.NewRecorder()

			handler.HandleRazorpayWebhook(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"status":"processed"`))
		})

		It("answers 401 without a signature", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook/", strings.NewReader(paymentWebhook("payment.captured", "order_abc123")))
			rec := httptest.NewRecorder()

			handler.HandleRazorpayWebhook(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})

var _ = Describe("EventHandler", func() {
	It("subscribes to both status events and accepts them", func() {
		bus := events.NewEventBus(testLogger)
		paymentPkg.NewEventHandler(testLogger).RegisterEventHandlers(bus)

		event := events.NewPaymentOrderStatusChanged(events.EventTypePaymentOrderPaid, 1, "order_abc123", 42, 2000, "INR", "created", "paid", "payment.captured")

		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())
	})

	It("rejects foreign event types", func() {
		err := paymentPkg.NewEventHandler(testLogger).HandleStatusChanged(context.Background(), events.BaseEvent{Type: "other"})
		Expect(err).To(HaveOccurred())
	})
})
