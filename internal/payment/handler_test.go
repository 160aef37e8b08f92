package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/core/role"
	paymentPkg "github.com/frahmantamala/shopfront/internal/payment"
	"github.com/frahmantamala/shopfront/internal/paymentgateway"
)

func requestAs(user *internal.User, method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user == nil {
		return req
	}
	return req.WithContext(internal.ContextWithUser(req.Context(), user))
}

var _ = Describe("PaymentHandler", func() {
	var (
		handler  *paymentPkg.Handler
		repo     *mockOrderRepository
		gateway  *fakeGateway
		recorder *httptest.ResponseRecorder
		buyer    *internal.User
	)

	BeforeEach(func() {
		repo = newMockOrderRepository()
		gateway = &fakeGateway{order: &paymentgateway.RemoteOrder{ID: "order_abc123", Status: "created", Receipt: "hb_0123456789ab"}}
		config := internal.PaymentConfig{
			RazorpayKeyID:     "rzp_test_key",
			RazorpayKeySecret: "rzp_test_secret",
			Currency:          "INR",
		}
		handler = paymentPkg.NewHandler(paymentPkg.NewService(repo, gateway, nil, config, testLogger))
		recorder = httptest.NewRecorder()
		buyer = &internal.User{ID: 42, Email: "buyer@example.com", Role: role.Consumer}
	})

	Context("CreateOrder", func() {
		It("answers 201 with the order and key id but never the secret", func() {
			handler.CreateOrder(recorder, requestAs(buyer, http.MethodPost, "/api/payments/order/", `{"amount":"19.995"}`))

			Expect(recorder.Code).To(Equal(http.StatusCreated))
			Expect(recorder.Body.String()).NotTo(ContainSubstring("rzp_test_secret"))

			var body struct {
				Order         map[string]any `json:"order"`
				RazorpayKeyID string         `json:"razorpay_key_id"`
			}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &body)).To(Succeed())
			Expect(body.RazorpayKeyID).To(Equal("rzp_test_key"))
			Expect(body.Order).To(HaveKeyWithValue("razorpay_order_id", "order_abc123"))
			Expect(body.Order).To(HaveKeyWithValue("amount", "20.00"))
			Expect(body.Order).To(HaveKeyWithValue("status", "created"))
			Expect(repo.orders).To(HaveLen(1))
		})

		It("accepts a JSON number amount", func() {
			handler.CreateOrder(recorder, requestAs(buyer, http.MethodPost, "/api/payments/order/", `{"amount": 250.5, "notes": {"cart": "9"}}`))

			Expect(recorder.Code).To(Equal(http.StatusCreated))
			Expect(gateway.request.Amount).To(Equal(int64(25050)))
		})

		It("answers 400 with a message for a non-positive amount", func() {
			handler.CreateOrder(recorder, requestAs(buyer, http.MethodPost, "/api/payments/order/", `{"amount":"-5.00"}`))

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			var body map[string]any
			Expect(json.Unmarshal(recorder.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("message", paymentPkg.AmountNotPositiveMessage))
			Expect(gateway.calls).To(BeZero())
		})

		It("answers 400 for malformed JSON", func() {
			handler.CreateOrder(recorder, requestAs(buyer, http.MethodPost, "/api/payments/order/", `{"amount":`))
			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})

		It("answers 502 when the gateway is down", func() {
			gateway.err = &paymentgateway.GatewayError{Description: "request failed", Err: context.DeadlineExceeded}

			handler.CreateOrder(recorder, requestAs(buyer, http.MethodPost, "/api/payments/order/", `{"amount":"10"}`))

			Expect(recorder.Code).To(Equal(http.StatusBadGateway))
			Expect(repo.orders).To(BeEmpty())
		})

		It("answers 401 without a principal", func() {
			handler.CreateOrder(recorder, requestAs(nil, http.MethodPost, "/api/payments/order/", `{"amount":"10"}`))
			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Context("ListOrders", func() {
		It("lists the caller's orders", func() {
			handler.CreateOrder(httptest.NewRecorder(), requestAs(buyer, http.MethodPost, "/api/payments/order/", `{"amount":"10"}`))

			handler.ListOrders(recorder, requestAs(buyer, http.MethodGet, "/api/payments/orders/", ""))

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(recorder.Body.String()).To(ContainSubstring(`"count":1`))
		})
	})
})
