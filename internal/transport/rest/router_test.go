package rest_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/account"
	accountPostgres "github.com/frahmantamala/shopfront/internal/account/postgres"
	"github.com/frahmantamala/shopfront/internal/auth"
	accountDatamodel "github.com/frahmantamala/shopfront/internal/core/datamodel/account"
	"github.com/frahmantamala/shopfront/internal/core/datamodel/paymentorder"
	"github.com/frahmantamala/shopfront/internal/core/role"
	"github.com/frahmantamala/shopfront/internal/payment"
	paymentPostgres "github.com/frahmantamala/shopfront/internal/payment/postgres"
	"github.com/frahmantamala/shopfront/internal/paymentgateway"
	"github.com/frahmantamala/shopfront/internal/transport"
	"github.com/frahmantamala/shopfront/internal/transport/rest"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "REST Router Suite")
}

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

type stubVerifier struct {
	assertion *auth.Assertion
}

func (s *stubVerifier) VerifyIdentityAssertion(_ context.Context, token, _ string) (*auth.Assertion, error) {
	if token != "good-credential" {
		return nil, auth.ErrInvalidAssertion
	}
	return s.assertion, nil
}

type stubGateway struct{}

func (stubGateway) CreateRemoteOrder(_ context.Context, req paymentgateway.OrderRequest) (*paymentgateway.RemoteOrder, error) {
	return &paymentgateway.RemoteOrder{
		ID:       "order_router1",
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

var _ = Describe("Router", func() {
	var (
		db       *gorm.DB
		router   *chi.Mux
		tokens   *auth.JWTTokenGenerator
		admin    *internal.User
		consumer *internal.User
	)

	createAccount := func(email string, r role.Role) *internal.User {
		row := &accountDatamodel.Account{
			Username: strings.Split(email, "@")[0],
			Email:    email,
			Role:     r,
			IsActive: true,
			IsStaff:  r == role.Admin,
		}
		Expect(db.Create(row).Error).To(Succeed())
		return &internal.User{ID: row.ID, Email: row.Email, Role: row.Role}
	}

	bearer := func(user *internal.User) string {
		token, err := tokens.GenerateAccessToken(user)
		Expect(err).NotTo(HaveOccurred())
		return "Bearer " + token
	}

	do := func(method, target, body, authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&accountDatamodel.Account{}, &paymentorder.PaymentOrder{})).To(Succeed())

		tokens = auth.NewJWTTokenGenerator(
			"access-secret-for-router-tests-0123456789",
			"refresh-secret-for-router-tests-0123456789",
			15*time.Minute,
			time.Hour,
		)
		identity := internal.IdentityConfig{
			GoogleClientID: "client-id.apps.googleusercontent.com",
			AdminEmails:    []string{"owner@example.com"},
		}
		verifier := &stubVerifier{assertion: &auth.Assertion{
			Subject:       "google-sub-1",
			Email:         "owner@example.com",
			EmailVerified: true,
			GivenName:     "Shop",
			FamilyName:    "Owner",
		}}
		paymentConfig := internal.PaymentConfig{
			RazorpayKeyID:     "rzp_test_router",
			RazorpayKeySecret: "rzp_secret_router",
			Currency:          internal.DefaultCurrency,
		}

		accountRepo := accountPostgres.NewAccountRepository(db)
		paymentService := payment.NewService(paymentPostgres.NewPaymentOrderRepository(db), stubGateway{}, nil, paymentConfig, testLogger)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Health:   rest.NewHealthHandler(sqlDB, internal.DatabaseDriverSQLite, "test", map[string]bool{"razorpay_orders": true}),
			Auth:     auth.NewHandler(auth.NewService(accountRepo, verifier, tokens, identity, testLogger)),
			RBAC:     auth.NewRBACAuthorization(testLogger),
			Accounts: account.NewHandler(account.NewService(accountRepo)),
			Payments: payment.NewHandler(paymentService),
			Webhooks: payment.NewWebhookHandler(transport.NewBaseHandler(testLogger), paymentService),
		}, rest.RouterOptions{Logger: testLogger})

		admin = createAccount("admin@example.com", role.Admin)
		consumer = createAccount("buyer@example.com", role.Consumer)
	})

	AfterEach(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	It("serves ping and health without a session", func() {
		Expect(do(http.MethodGet, "/api/ping", "", "").Code).To(Equal(http.StatusOK))

		rec := do(http.MethodGet, "/api/health/", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"razorpay_orders":true`))
	})

	It("signs in with a Google credential and promotes allow-listed emails", func() {
		rec := do(http.MethodPost, "/api/auth/google/", `{"credential":"good-credential"}`, "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var body struct {
			User    map[string]any `json:"user"`
			Access  string         `json:"access"`
			Refresh string         `json:"refresh"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.User).To(HaveKeyWithValue("role", "Admin"))
		Expect(body.Access).NotTo(BeEmpty())

		me := do(http.MethodGet, "/api/users/me/", "", "Bearer "+body.Access)
		Expect(me.Code).To(Equal(http.StatusOK))
		Expect(me.Body.String()).To(ContainSubstring("owner@example.com"))
	})

	It("rejects an unverifiable credential", func() {
		Expect(do(http.MethodPost, "/api/auth/google", `{"credential":"forged"}`, "").Code).To(Equal(http.StatusUnauthorized))
		Expect(do(http.MethodPost, "/api/auth/google", `{"credential":""}`, "").Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects protected routes without a bearer token", func() {
		Expect(do(http.MethodGet, "/api/users/me", "", "").Code).To(Equal(http.StatusUnauthorized))
		Expect(do(http.MethodGet, "/api/payments/orders", "", "").Code).To(Equal(http.StatusUnauthorized))
		Expect(do(http.MethodGet, "/api/users/me", "", "Bearer not-a-jwt").Code).To(Equal(http.StatusUnauthorized))
	})

	It("keeps the account list for admins", func() {
		Expect(do(http.MethodGet, "/api/users/", "", bearer(consumer)).Code).To(Equal(http.StatusForbidden))

		rec := do(http.MethodGet, "/api/users/", "", bearer(admin))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"count":2`))
	})

	It("lets consumers create and list their own orders", func() {
		rec := do(http.MethodPost, "/api/payments/order/", `{"amount":"149.50","notes":{"cart":"c-1"}}`, bearer(consumer))
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Body.String()).To(ContainSubstring(`"razorpay_key_id":"rzp_test_router"`))
		Expect(rec.Body.String()).NotTo(ContainSubstring("rzp_secret_router"))

		list := do(http.MethodGet, "/api/payments/orders/", "", bearer(consumer))
		Expect(list.Code).To(Equal(http.StatusOK))
		Expect(list.Body.String()).To(ContainSubstring(`"count":1`))
		Expect(list.Body.String()).To(ContainSubstring(`"amount":"149.50"`))

		other := do(http.MethodGet, "/api/payments/orders", "", bearer(admin))
		Expect(other.Code).To(Equal(http.StatusOK))
		Expect(other.Body.String()).To(ContainSubstring(`"count":0`))
	})

	It("reports a configuration error for webhooks without a secret", func() {
		rec := do(http.MethodPost, "/api/payments/webhook", `{"event":"order.paid"}`, "")
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})
})
