package rest

import (
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/shopfront/internal/account"
	"github.com/frahmantamala/shopfront/internal/auth"
	"github.com/frahmantamala/shopfront/internal/payment"
	"github.com/frahmantamala/shopfront/internal/transport/middleware"
	"github.com/frahmantamala/shopfront/internal/transport/swagger"
)

type Handlers struct {
	Health   *HealthHandler
	Auth     *auth.Handler
	RBAC     *auth.RBACAuthorization
	Accounts *account.Handler
	Payments *payment.Handler
	Webhooks *payment.WebhookHandler
}

type RouterOptions struct {
	AllowedOrigins  []string
	OpenAPISpecPath string
	Logger          *slog.Logger
}

// RegisterAllRoutes mounts the API under /api. Paths are matched with or without the trailing slash.
func RegisterAllRoutes(router *chi.Mux, h Handlers, opts RouterOptions) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(opts.Logger))
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.StripSlashes)

	if opts.OpenAPISpecPath != "" {
		router.Get(swagger.SpecRoute, swagger.SpecHandler(opts.OpenAPISpecPath))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/google", h.Auth.GoogleSignIn)
			ar.Post("/token/refresh", h.Auth.RefreshToken)
			ar.Post("/token/verify", h.Auth.VerifyToken)
		})

		if h.Webhooks != nil {
			r.Post("/payments/webhook", h.Webhooks.HandleRazorpayWebhook)
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/me", h.Accounts.GetCurrentAccount)

				ur.Group(func(admin chi.Router) {
					admin.Use(h.RBAC.RequireAdmin())
					admin.Get("/", h.Accounts.ListAccounts)
					admin.Get("/{id}", h.Accounts.GetAccount)
				})
			})

			pr.Group(func(shop chi.Router) {
				shop.Use(h.RBAC.RequireAdminOrConsumer())
				shop.Post("/payments/order", h.Payments.CreateOrder)
				shop.Get("/payments/orders", h.Payments.ListOrders)
			})
		})
	})
}
