package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gitshopapp/storefront/internal/cache"
	"github.com/gitshopapp/storefront/internal/cart"
	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/config"
	"github.com/gitshopapp/storefront/internal/db"
	"github.com/gitshopapp/storefront/internal/email"
	"github.com/gitshopapp/storefront/internal/events"
	"github.com/gitshopapp/storefront/internal/handlers"
	"github.com/gitshopapp/storefront/internal/heleket"
	"github.com/gitshopapp/storefront/internal/identity"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/observability"
	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/internal/session"
	"github.com/gitshopapp/storefront/internal/stripe"
)

const (
	providerHTTPTimeout = 30 * time.Second
	stripeAPIURL        = "https://api.stripe.com"
)

type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	DB             *pgxpool.Pool
	CacheProvider  cache.Provider
	SessionManager *session.Manager
	Publisher      events.Publisher
	Handlers       *handlers.Handlers
	sentryEnabled  bool
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	sentryEnabled, err := observability.InitSentry(cfg.SentryDSN, cfg.SentryEnvironment)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Sentry: sentryEnabled,
	})

	a := &App{
		Config:        cfg,
		Logger:        logger,
		sentryEnabled: sentryEnabled,
	}
	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init() error {
	cfg := a.Config
	logger := a.Logger

	productCatalog, err := catalog.Load(cfg.CatalogPath, cfg.StoreCurrency)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	database, err := db.Connect(startupCtx, cfg.DatabaseURL, db.DefaultPoolOptions(logger.With("component", "db")))
	if err != nil {
		return err
	}
	a.DB = database

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL, logger.With("component", "migrate")); err != nil {
			return err
		}
	}

	cacheProvider, err := cache.NewProvider(startupCtx, cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
		Namespace:             "cache",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize cache provider: %w", err)
	}
	a.CacheProvider = cacheProvider

	sessionCache, err := cache.NewProvider(startupCtx, cache.Config{
		Provider:              cfg.SessionStoreProvider,
		RedisConnectionString: cfg.RedisConnectionString,
		Namespace:             "session",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	a.SessionManager = session.NewManager(session.NewStore(sessionCache), handlers.SecureCookiesFromConfig(cfg))

	a.Publisher = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)

	orderStore := db.NewOrderStore(database)
	cartStore := cart.NewStore(cacheProvider, productCatalog, logger.With("component", "cart_store"))
	metrics := observability.NewMetrics()

	stripeClient := stripe.NewClient(cfg.StripeSecretKey, observability.ProviderClient(stripeAPIURL, providerHTTPTimeout))
	gateways := services.Gateways{
		models.ProviderStripe: services.NewStripeGateway(stripeClient),
	}
	if cfg.HeleketEnabled() {
		heleketClient := heleket.NewClient(
			cfg.HeleketBaseURL,
			cfg.HeleketMerchantID,
			cfg.HeleketAPIKey,
			observability.ProviderClient(cfg.HeleketBaseURL, providerHTTPTimeout),
		)
		gateways[models.ProviderHeleket] = services.NewHeleketGateway(heleketClient)
	}

	emailSender, err := services.NewStoreOrderEmailSender(
		email.NewProvider(cfg.ResendAPIKey, cfg.EmailFrom),
		productCatalog.Name(),
		cfg.BaseURL,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize order emails: %w", err)
	}

	checkoutService := services.NewCheckoutService(
		orderStore,
		cartStore,
		gateways,
		a.Publisher,
		metrics,
		logger.With("component", "checkout_service"),
	)
	paymentService := services.NewPaymentService(services.PaymentServiceConfig{
		Orders:        orderStore,
		Carts:         cartStore,
		Sessions:      stripeClient,
		Markers:       cacheProvider,
		HeleketAPIKey: cfg.HeleketAPIKey,
		Publisher:     a.Publisher,
		EmailSender:   emailSender,
		Metrics:       metrics,
		Logger:        logger.With("component", "payment_service"),
	})

	h, err := handlers.New(handlers.Dependencies{
		Config:         cfg,
		DB:             database,
		Catalog:        productCatalog,
		Carts:          cartStore,
		Checkout:       checkoutService,
		Payments:       paymentService,
		SessionManager: a.SessionManager,
		Identity:       identity.NewReader(cfg.AuthJWTSecret, cfg.AuthCookieName),
		Metrics:        metrics,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize handlers: %w", err)
	}
	a.Handlers = h

	logger.Info("storefront initialized",
		"store", productCatalog.Name(),
		"currency", productCatalog.Currency(),
		"providers", checkoutService.Providers(),
		"email_enabled", cfg.EmailEnabled(),
		"events_enabled", len(cfg.KafkaBrokers) > 0,
	)
	return nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Logger.Warn("failed to close event publisher", "error", err)
		}
	}
	if a.SessionManager != nil {
		closeSessionManager(a.Logger, a.SessionManager)
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if a.sentryEnabled {
		observability.FlushSentry()
	}
}

func closeSessionManager(logger *slog.Logger, manager *session.Manager) {
	if manager == nil {
		return
	}
	if err := manager.Close(); err != nil && logger != nil {
		logger.Warn("failed to close session manager", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
