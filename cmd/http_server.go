package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/account"
	accountPostgres "github.com/frahmantamala/shopfront/internal/account/postgres"
	"github.com/frahmantamala/shopfront/internal/auth"
	"github.com/frahmantamala/shopfront/internal/auth/google"
	accountDatamodel "github.com/frahmantamala/shopfront/internal/core/datamodel/account"
	"github.com/frahmantamala/shopfront/internal/core/datamodel/paymentorder"
	"github.com/frahmantamala/shopfront/internal/core/events"
	"github.com/frahmantamala/shopfront/internal/payment"
	paymentPostgres "github.com/frahmantamala/shopfront/internal/payment/postgres"
	"github.com/frahmantamala/shopfront/internal/paymentgateway"
	"github.com/frahmantamala/shopfront/internal/transport"
	"github.com/frahmantamala/shopfront/internal/transport/rest"
	"github.com/frahmantamala/shopfront/internal/transport/swagger"
	"github.com/frahmantamala/shopfront/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "environment", deps.Config.Environment)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.EventBus.Wait()
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			_ = deps.DB.Close()
			os.Exit(1)
		}
	}

	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}
	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	sqlxDB, gormDB, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	ctx := context.Background()
	verifier, err := google.NewVerifier(ctx)
	if err != nil {
		_ = sqlxDB.Close()
		return nil, err
	}

	specPath := cfg.Server.OpenAPISpecPath
	if _, statErr := os.Stat(specPath); statErr != nil {
		lg.Warn("OpenAPI spec not found, API docs disabled", "path", specPath)
		specPath = ""
	} else if _, err := swagger.LoadSpec(ctx, specPath); err != nil {
		_ = sqlxDB.Close()
		return nil, err
	}

	if cfg.Identity.GoogleClientID == "" {
		lg.Warn("identity.google_client_id is empty; Google sign-in will answer 500")
	}
	if !cfg.Payment.GatewayConfigured() {
		lg.Warn("Razorpay credentials are empty; payment orders will answer 500")
	}

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)

	accountRepo := accountPostgres.NewAccountRepository(gormDB)
	authService := auth.NewService(accountRepo, verifier, tokenGen, cfg.Identity, lg)
	accountService := account.NewService(accountRepo)

	eventBus := events.NewEventBus(lg)
	payment.NewEventHandler(lg).RegisterEventHandlers(eventBus)

	razorpay := paymentgateway.NewRazorpayClient(paymentgateway.Config{
		BaseURL:        cfg.Payment.BaseURL,
		KeyID:          cfg.Payment.RazorpayKeyID,
		KeySecret:      cfg.Payment.RazorpayKeySecret,
		RequestTimeout: cfg.Payment.RequestTimeout,
	}, lg)
	paymentService := payment.NewService(
		paymentPostgres.NewPaymentOrderRepository(gormDB),
		razorpay,
		eventBus,
		cfg.Payment,
		lg,
	)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Health: rest.NewHealthHandler(sqlxDB.DB, cfg.Database.Driver, buildVersion().GitVersion, map[string]bool{
			"google_sign_in":   cfg.Identity.GoogleClientID != "",
			"razorpay_orders":  cfg.Payment.GatewayConfigured(),
			"razorpay_webhook": cfg.Payment.WebhookSecret != "",
		}),
		Auth:     auth.NewHandler(authService),
		RBAC:     auth.NewRBACAuthorization(lg),
		Accounts: account.NewHandler(accountService),
		Payments: payment.NewHandler(paymentService),
		Webhooks: payment.NewWebhookHandler(transport.NewBaseHandler(lg), paymentService),
	}, rest.RouterOptions{
		AllowedOrigins:  cfg.Server.Origins(),
		OpenAPISpecPath: specPath,
		Logger:          lg,
	})

	return &Dependencies{
		Config:   cfg,
		DB:       sqlxDB,
		Gorm:     gormDB,
		Router:   router,
		EventBus: eventBus,
		Logger:   lg,
	}, nil
}

// initDB opens the pool once and shares it between sqlx and gorm. On sqlite the schema is
// created with AutoMigrate since the goose migrations target postgres.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}

	switch cfg.Driver {
	case internal.DatabaseDriverSQLite:
		gormDB, err := gorm.Open(sqlite.Open(cfg.Source), gormConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		if err := gormDB.AutoMigrate(&accountDatamodel.Account{}, &paymentorder.PaymentOrder{}); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		return sqlx.NewDb(sqlDB, "sqlite3"), gormDB, nil

	default:
		const driver = "pgx"

		dbConn, err := sqlx.Connect(driver, cfg.Source)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
		}

		dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
		dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
		dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

		gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), gormConfig)
		if err != nil {
			_ = dbConn.Close()
			return nil, nil, fmt.Errorf("failed to open gorm on pgx pool: %w", err)
		}
		return dbConn, gormDB, nil
	}
}
