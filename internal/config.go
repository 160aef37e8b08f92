package internal

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment   string              `mapstructure:"environment" env:"APP_ENV" envDefault:"development"`
	Server        ServerConfig        `mapstructure:"http_server" envPrefix:"HTTP_"`
	Database      DatabaseConfig      `mapstructure:"database" envPrefix:"DATABASE_"`
	Security      SecurityConfig      `mapstructure:"security" envPrefix:"SECURITY_"`
	Identity      IdentityConfig      `mapstructure:"identity" envPrefix:"IDENTITY_"`
	Payment       PaymentConfig       `mapstructure:"payment" envPrefix:"PAYMENT_"`
	Observability ObservabilityConfig `mapstructure:"observability" envPrefix:"OBSERVABILITY_"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" env:"PORT"`
	BaseURL           string        `mapstructure:"base_url" env:"BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" env:"ALLOWED_ORIGINS"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" env:"READ_HEADER_TIMEOUT"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" env:"READ_TIMEOUT"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" env:"IDLE_TIMEOUT"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" env:"WRITE_TIMEOUT"`
	OpenAPISpecPath   string        `mapstructure:"openapi_spec_path" env:"OPENAPI_SPEC_PATH"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" env:"DRIVER"`
	Source          string        `mapstructure:"source" env:"SOURCE"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" env:"CONN_MAX_IDLE_TIME"`
}

type SecurityConfig struct {
	AccessTokenSecret    string        `mapstructure:"access_token_secret" env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret   string        `mapstructure:"refresh_token_secret" env:"REFRESH_TOKEN_SECRET"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration" env:"ACCESS_TOKEN_DURATION"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" env:"REFRESH_TOKEN_DURATION"`
}

// IdentityConfig may be left empty; sign-in then fails per request with a configuration error.
type IdentityConfig struct {
	GoogleClientID string   `mapstructure:"google_client_id" env:"GOOGLE_CLIENT_ID"`
	AdminEmails    []string `mapstructure:"admin_emails" env:"ADMIN_EMAILS" envSeparator:","`
}

type PaymentConfig struct {
	RazorpayKeyID     string        `mapstructure:"razorpay_key_id" env:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string        `mapstructure:"razorpay_key_secret" env:"RAZORPAY_KEY_SECRET"`
	WebhookSecret     string        `mapstructure:"webhook_secret" env:"WEBHOOK_SECRET"`
	Currency          string        `mapstructure:"currency" env:"CURRENCY"`
	BaseURL           string        `mapstructure:"base_url" env:"BASE_URL"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout" env:"REQUEST_TIMEOUT"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging" envPrefix:"LOG_"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" env:"LEVEL"`
	Format string `mapstructure:"format" env:"FORMAT"`
}

const (
	DefaultCurrency        = "INR"
	DefaultRazorpayBaseURL = "https://api.razorpay.com"
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"
)

// LoadConfigFromEnv builds the configuration purely from environment variables.
func LoadConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.SetDefaults()
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SetDefaults fills zero values left by the config file or environment.
func (c *Config) SetDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}

	s := &c.Server
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadHeaderTimeout == 0 {
		s.ReadHeaderTimeout = 5 * time.Second
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 15 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = 60 * time.Second
	}
	if s.OpenAPISpecPath == "" {
		s.OpenAPISpecPath = "api/openapi.yml"
	}

	d := &c.Database
	if d.Driver == "" {
		d.Driver = DatabaseDriverPostgres
	}
	if d.MaxOpenConns == 0 {
		d.MaxOpenConns = 25
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = 5
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = 30 * time.Minute
	}
	if d.ConnMaxIdleTime == 0 {
		d.ConnMaxIdleTime = 5 * time.Minute
	}

	sec := &c.Security
	if sec.AccessTokenDuration == 0 {
		sec.AccessTokenDuration = 15 * time.Minute
	}
	if sec.RefreshTokenDuration == 0 {
		sec.RefreshTokenDuration = 7 * 24 * time.Hour
	}

	p := &c.Payment
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.BaseURL == "" {
		p.BaseURL = DefaultRazorpayBaseURL
	}
	if p.RequestTimeout == 0 {
		p.RequestTimeout = 15 * time.Second
	}

	l := &c.Observability.Logging
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
		if c.IsProduction() {
			l.Format = "json"
		}
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Identity.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("identity config: %v", err))
	}

	if err := c.Payment.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("payment config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	for _, origin := range c.Origins() {
		if origin == "*" {
			continue
		}
		if _, err := url.Parse(origin); err != nil {
			return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *ServerConfig) Origins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DatabaseDriverPostgres, DatabaseDriverSQLite:
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *SecurityConfig) Validate() error {
	if len(c.AccessTokenSecret) < 32 {
		return errors.New("access_token_secret must be at least 32 characters")
	}
	if len(c.RefreshTokenSecret) < 32 {
		return errors.New("refresh_token_secret must be at least 32 characters")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.AccessTokenDuration <= 0 || c.RefreshTokenDuration <= c.AccessTokenDuration {
		return errors.New("refresh_token_duration must be longer than access_token_duration")
	}
	return nil
}

func (c *IdentityConfig) Validate() error {
	for _, email := range c.AdminEmails {
		if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
			return fmt.Errorf("invalid admin email %q: %w", email, err)
		}
	}
	return nil
}

func (c *PaymentConfig) Validate() error {
	if len(c.Currency) > 10 {
		return errors.New("currency must be at most 10 characters")
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	return nil
}

// GatewayConfigured reports whether both Razorpay credentials are present.
func (c *PaymentConfig) GatewayConfigured() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported level %q", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported format %q", c.Format)
	}
	return nil
}
