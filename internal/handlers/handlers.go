package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/gitshopapp/storefront/internal/cart"
	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/config"
	"github.com/gitshopapp/storefront/internal/identity"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/observability"
	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/internal/session"
)

const maxWebhookBodyBytes = 1 << 20 // 1 MB

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Carts interface {
	Get(ctx context.Context, owner string) (*cart.Cart, error)
	Add(ctx context.Context, owner, sku, size string, quantity int) error
	Remove(ctx context.Context, owner, sku, size string) error
}

type Checkout interface {
	Submit(ctx context.Context, input services.SubmitInput) (*services.SubmitResult, error)
	Providers() []models.PaymentProvider
}

type Payments interface {
	HandleStripeEvent(ctx context.Context, event *stripeapi.Event) error
	HandleHeleketNotification(ctx context.Context, payload []byte) error
	HandleStripeSuccess(ctx context.Context, owner, sessionID string) (*models.Order, error)
	HandleHeleketSuccess(ctx context.Context, owner, orderID string) (*models.Order, error)
	HandleCancel(ctx context.Context, orderID string) (*models.Order, error)
}

// Handlers provides HTTP request handlers for the storefront.
type Handlers struct {
	config         *config.Config
	db             Pinger
	catalog        *catalog.Catalog
	carts          Carts
	checkout       Checkout
	payments       Payments
	sessionManager *session.Manager
	identity       *identity.Reader
	metrics        *observability.Metrics
	pricer         *catalog.Pricer
	logger         *slog.Logger
}

type Dependencies struct {
	Config         *config.Config
	DB             Pinger
	Catalog        *catalog.Catalog
	Carts          Carts
	Checkout       Checkout
	Payments       Payments
	SessionManager *session.Manager
	Identity       *identity.Reader
	Metrics        *observability.Metrics
	Logger         *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("handlers dependencies: db is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("handlers dependencies: catalog is required")
	}
	if deps.Carts == nil {
		return nil, fmt.Errorf("handlers dependencies: carts is required")
	}
	if deps.Checkout == nil {
		return nil, fmt.Errorf("handlers dependencies: checkout is required")
	}
	if deps.Payments == nil {
		return nil, fmt.Errorf("handlers dependencies: payments is required")
	}
	if deps.SessionManager == nil {
		return nil, fmt.Errorf("handlers dependencies: sessionManager is required")
	}

	return &Handlers{
		config:         deps.Config,
		db:             deps.DB,
		catalog:        deps.Catalog,
		carts:          deps.Carts,
		checkout:       deps.Checkout,
		payments:       deps.Payments,
		sessionManager: deps.SessionManager,
		identity:       deps.Identity,
		metrics:        deps.Metrics,
		pricer:         catalog.NewPricer(),
		logger:         logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	// Test database connection
	if err := h.db.Ping(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		logger.Error("failed to encode health response", "error", err)
	}
}

// SessionMiddleware adds session data to the request context
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return h.sessionManager.Middleware(next)
}

// IdentityMiddleware attaches the signed-in shopper, if any.
func (h *Handlers) IdentityMiddleware(next http.Handler) http.Handler {
	return identity.Middleware(h.identity, h.logger)(next)
}

// Metrics serves the Prometheus registry.
func (h *Handlers) Metrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.Handler().ServeHTTP(w, r)
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func SecureCookiesFromConfig(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		if parsed, err := url.Parse(baseURL); err == nil {
			return strings.EqualFold(parsed.Scheme, "https")
		}
	}

	return cfg.Port == "443" || cfg.Port == "8443"
}

func isHTMXRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}
