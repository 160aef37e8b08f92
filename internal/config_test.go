package internal_test

import (
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/shopfront/internal"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

func validConfig() *internal.Config {
	cfg := &internal.Config{
		Database: internal.DatabaseConfig{Driver: "sqlite", Source: "file::memory:"},
		Security: internal.SecurityConfig{
			AccessTokenSecret:  strings.Repeat("a", 32),
			RefreshTokenSecret: strings.Repeat("r", 32),
		},
	}
	cfg.SetDefaults()
	return cfg
}

var _ = Describe("Config", func() {
	Describe("SetDefaults", func() {
		It("fills payment and token defaults", func() {
			cfg := &internal.Config{}
			cfg.SetDefaults()

			Expect(cfg.Payment.Currency).To(Equal("INR"))
			Expect(cfg.Payment.BaseURL).To(Equal("https://api.razorpay.com"))
			Expect(cfg.Payment.RequestTimeout).To(Equal(15 * time.Second))
			Expect(cfg.Security.AccessTokenDuration).To(Equal(15 * time.Minute))
			Expect(cfg.Database.Driver).To(Equal("postgres"))
			Expect(cfg.Observability.Logging.Format).To(Equal("text"))
		})

		It("keeps values that were already set", func() {
			cfg := &internal.Config{Payment: internal.PaymentConfig{Currency: "USD"}}
			cfg.SetDefaults()
			Expect(cfg.Payment.Currency).To(Equal("USD"))
		})
	})

	Describe("Validate", func() {
		It("accepts a complete configuration without gateway or identity settings", func() {
			cfg := validConfig()
			Expect(cfg.Validate()).To(Succeed())
			Expect(cfg.Payment.GatewayConfigured()).To(BeFalse())
		})

		It("rejects short token secrets", func() {
			cfg := validConfig()
			cfg.Security.AccessTokenSecret = "short"
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("access_token_secret")))
		})

		It("rejects identical token secrets", func() {
			cfg := validConfig()
			cfg.Security.RefreshTokenSecret = cfg.Security.AccessTokenSecret
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("must differ")))
		})

		It("rejects an unknown database driver", func() {
			cfg := validConfig()
			cfg.Database.Driver = "mysql"
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("unsupported driver")))
		})

		It("rejects malformed admin emails", func() {
			cfg := validConfig()
			cfg.Identity.AdminEmails = []string{"not-an-email"}
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("invalid admin email")))
		})
	})

	Describe("LoadConfigFromEnv", func() {
		var keys = []string{
			"APP_ENV",
			"PAYMENT_CURRENCY",
			"PAYMENT_REQUEST_TIMEOUT",
			"IDENTITY_ADMIN_EMAILS",
			"DATABASE_SOURCE",
			"OBSERVABILITY_LOG_LEVEL",
		}

		AfterEach(func() {
			for _, k := range keys {
				os.Unsetenv(k)
			}
		})

		It("reads nested sections from prefixed variables", func() {
			os.Setenv("APP_ENV", "production")
			os.Setenv("PAYMENT_CURRENCY", "USD")
			os.Setenv("PAYMENT_REQUEST_TIMEOUT", "3s")
			os.Setenv("IDENTITY_ADMIN_EMAILS", "boss@example.com,ops@example.com")
			os.Setenv("DATABASE_SOURCE", "postgres://localhost/shop")
			os.Setenv("OBSERVABILITY_LOG_LEVEL", "warn")

			cfg, err := internal.LoadConfigFromEnv()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.IsProduction()).To(BeTrue())
			Expect(cfg.Payment.Currency).To(Equal("USD"))
			Expect(cfg.Payment.RequestTimeout).To(Equal(3 * time.Second))
			Expect(cfg.Identity.AdminEmails).To(Equal([]string{"boss@example.com", "ops@example.com"}))
			Expect(cfg.Database.Source).To(Equal("postgres://localhost/shop"))
			Expect(cfg.Observability.Logging.Level).To(Equal("warn"))
			Expect(cfg.Observability.Logging.Format).To(Equal("json"))
		})
	})
})
