package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/gitshopapp/storefront/internal/cart"
	"github.com/gitshopapp/storefront/internal/events"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/observability"
)

type orderStore interface {
	Create(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, orderID uuid.UUID) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	AttachPaymentSession(ctx context.Context, orderID uuid.UUID, sessionID, paymentIntentID string) error
	MarkProcessing(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error
	MarkCancelled(ctx context.Context, orderID uuid.UUID) error
}

type cartProvider interface {
	Get(ctx context.Context, owner string) (*cart.Cart, error)
	Clear(ctx context.Context, owner string) error
}

type CheckoutService struct {
	orders    orderStore
	carts     cartProvider
	gateways  Gateways
	publisher events.Publisher
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewCheckoutService(orders orderStore, carts cartProvider, gateways Gateways, publisher events.Publisher, metrics *observability.Metrics, logger *slog.Logger) *CheckoutService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CheckoutService{
		orders:    orders,
		carts:     carts,
		gateways:  gateways,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With("component", "checkout"),
	}
}

func (s *CheckoutService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// Providers lists the enabled payment providers in display order.
func (s *CheckoutService) Providers() []models.PaymentProvider {
	var providers []models.PaymentProvider
	for _, provider := range []models.PaymentProvider{models.ProviderStripe, models.ProviderHeleket} {
		if s.gateways.Enabled(provider) {
			providers = append(providers, provider)
		}
	}
	return providers
}

type SubmitInput struct {
	Owner           string
	UserID          string
	UserEmail       string
	Form            CheckoutForm
	PaymentProvider string
	BaseURL         string
}

type SubmitResult struct {
	Order       *models.Order
	RedirectURL string
}

// Submit turns the owner's cart into a pending order and opens a payment
// session for it. The cart is cleared only once the session exists; if the
// session cannot be created the order is deleted again.
func (s *CheckoutService) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	span := sentry.StartSpan(
		ctx,
		"service.checkout.submit",
		sentry.WithOpName("service.checkout"),
		sentry.WithDescription("Submit"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := s.loggerFromContext(ctx)
	recordFailure := func(reason string) {
		observability.Count(ctx, "checkout.failed", "payment_provider", input.PaymentProvider, "reason", reason)
		s.metrics.CheckoutOutcome(input.PaymentProvider, reason)
	}
	observability.Count(ctx, "checkout.received", "payment_provider", input.PaymentProvider)

	current, err := s.carts.Get(ctx, input.Owner)
	if err != nil {
		recordFailure("cart_load_failed")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if current.IsEmpty() {
		recordFailure("empty_cart")
		return nil, ErrEmptyCart
	}

	form := input.Form.Normalize(input.UserEmail)
	if err := form.Validate(); err != nil {
		recordFailure("invalid_form")
		return nil, err
	}

	provider, err := models.ParsePaymentProvider(input.PaymentProvider)
	if err != nil || !s.gateways.Enabled(provider) {
		recordFailure("invalid_provider")
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentProvider, input.PaymentProvider)
	}

	order := newOrderFromCart(current, form, input.UserID, provider)
	if err := s.orders.Create(ctx, order); err != nil {
		recordFailure("order_create_failed")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	observability.Count(ctx, "order.created", "payment_provider", string(provider))

	session, err := s.gateways[provider].CreateSession(ctx, SessionRequest{Order: order, BaseURL: input.BaseURL})
	if err != nil {
		recordFailure("session_create_failed")
		s.discardOrder(ctx, order.ID)
		logger.Error("failed to create payment session", "error", err, "order_id", order.ID, "provider", provider)
		return nil, fmt.Errorf("%w: %w", ErrPaymentSession, err)
	}

	if err := s.orders.AttachPaymentSession(ctx, order.ID, session.ID, session.PaymentIntentID); err != nil {
		recordFailure("session_attach_failed")
		s.discardOrder(ctx, order.ID)
		return nil, fmt.Errorf("%w: failed to record session %s: %w", ErrPaymentSession, session.ID, err)
	}
	order.ProviderSessionID = session.ID
	if session.PaymentIntentID != "" {
		order.StripePaymentIntentID = session.PaymentIntentID
	}

	if err := s.carts.Clear(ctx, input.Owner); err != nil {
		logger.Warn("failed to clear cart after checkout", "error", err, "order_id", order.ID)
	}

	if err := s.publisher.Publish(ctx, events.NewOrderEvent(events.EventOrderCreated, order)); err != nil {
		logger.Warn("failed to publish order event", "error", err, "order_id", order.ID, "event", events.EventOrderCreated)
	}

	observability.Count(ctx, "checkout.session.created", "payment_provider", string(provider))
	s.metrics.CheckoutOutcome(string(provider), "session_created")
	logger.Info("checkout session created", "order_id", order.ID, "provider", provider, "session_id", session.ID)

	return &SubmitResult{Order: order, RedirectURL: session.URL}, nil
}

func (s *CheckoutService) discardOrder(ctx context.Context, orderID uuid.UUID) {
	if err := s.orders.Delete(ctx, orderID); err != nil && !errors.Is(err, ErrOrderNotFound) {
		s.loggerFromContext(ctx).Warn("failed to delete order after payment session error", "error", err, "order_id", orderID)
	}
}

func newOrderFromCart(current *cart.Cart, form CheckoutForm, userID string, provider models.PaymentProvider) *models.Order {
	order := &models.Order{
		UserID:              userID,
		FirstName:           form.FirstName,
		LastName:            form.LastName,
		Email:               form.Email,
		Company:             form.Company,
		Address1:            form.Address1,
		Address2:            form.Address2,
		City:                form.City,
		Country:             form.Country,
		Province:            form.Province,
		PostalCode:          form.PostalCode,
		Phone:               form.Phone,
		SpecialInstructions: form.SpecialInstructions,
		TotalPrice:          current.Subtotal(),
		Currency:            current.Currency,
		PaymentProvider:     provider,
		Status:              models.StatusPending,
		Items:               make([]models.OrderItem, 0, len(current.Items)),
	}
	for _, item := range current.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductSKU:  item.ProductSKU,
			ProductName: item.ProductName,
			Size:        item.Size,
			Quantity:    item.Quantity,
			Price:       item.UnitPrice,
		})
	}
	return order
}
