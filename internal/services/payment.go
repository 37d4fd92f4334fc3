package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/gitshopapp/storefront/internal/cache"
	"github.com/gitshopapp/storefront/internal/events"
	"github.com/gitshopapp/storefront/internal/heleket"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/observability"
	"github.com/gitshopapp/storefront/internal/stripe"
)

const webhookMarkerTTL = 24 * time.Hour

type checkoutSessionReader interface {
	GetCheckoutSession(ctx context.Context, sessionID string) (*stripeapi.CheckoutSession, error)
}

// webhookMarkers remembers processed webhook deliveries.
type webhookMarkers interface {
	SetIfAbsent(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

type PaymentService struct {
	orders        orderStore
	carts         cartProvider
	sessions      checkoutSessionReader
	markers       webhookMarkers
	heleketAPIKey string
	publisher     events.Publisher
	emailSender   OrderEmailSender
	metrics       *observability.Metrics
	logger        *slog.Logger
}

type PaymentServiceConfig struct {
	Orders        orderStore
	Carts         cartProvider
	Sessions      checkoutSessionReader
	Markers       webhookMarkers
	HeleketAPIKey string
	Publisher     events.Publisher
	EmailSender   OrderEmailSender
	Metrics       *observability.Metrics
	Logger        *slog.Logger
}

func NewPaymentService(cfg PaymentServiceConfig) *PaymentService {
	if cfg.Publisher == nil {
		cfg.Publisher = events.NoopPublisher{}
	}
	if cfg.EmailSender == nil {
		cfg.EmailSender = noopOrderEmailSender{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &PaymentService{
		orders:        cfg.Orders,
		carts:         cfg.Carts,
		sessions:      cfg.Sessions,
		markers:       cfg.Markers,
		heleketAPIKey: cfg.HeleketAPIKey,
		publisher:     cfg.Publisher,
		emailSender:   cfg.EmailSender,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger.With("component", "payment"),
	}
}

func (s *PaymentService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// HandleStripeEvent applies a verified Stripe webhook event. Only
// checkout.session.completed changes state; other types are acknowledged.
// Redelivered events are skipped.
func (s *PaymentService) HandleStripeEvent(ctx context.Context, event *stripeapi.Event) error {
	span := sentry.StartSpan(
		ctx,
		"service.payment.handle_stripe_event",
		sentry.WithOpName("service.payment"),
		sentry.WithDescription("HandleStripeEvent"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	if event == nil || event.ID == "" {
		return fmt.Errorf("%w: event has no id", ErrInvalidWebhook)
	}

	ctx, logger := logging.With(ctx, s.logger, "event_id", event.ID, "event_type", event.Type)
	observability.Count(ctx, "webhook.stripe.received", "event_type", string(event.Type))

	if event.Type != stripeapi.EventTypeCheckoutSessionCompleted {
		logger.Debug("ignoring stripe event")
		s.metrics.WebhookOutcome(string(models.ProviderStripe), "ignored")
		return nil
	}

	sess, err := stripe.CheckoutSessionFromEvent(event)
	if err != nil {
		s.metrics.WebhookOutcome(string(models.ProviderStripe), "invalid")
		return fmt.Errorf("%w: %w", ErrInvalidWebhook, err)
	}
	orderID, err := stripe.OrderIDFromSession(sess)
	if err != nil {
		s.metrics.WebhookOutcome(string(models.ProviderStripe), "invalid")
		return fmt.Errorf("%w: %w", ErrInvalidWebhook, err)
	}

	markerKey := cache.WebhookKey(string(models.ProviderStripe), event.ID)
	fresh, err := s.claimDelivery(ctx, markerKey)
	if err != nil {
		logger.Warn("failed to record webhook delivery, processing anyway", "error", err)
	}
	if !fresh {
		logger.Info("skipping redelivered stripe event", "order_id", orderID)
		s.metrics.WebhookOutcome(string(models.ProviderStripe), "duplicate")
		return nil
	}

	if err := s.markProcessing(ctx, orderID, stripe.PaymentIntentID(sess)); err != nil {
		s.releaseDelivery(ctx, markerKey)
		s.metrics.WebhookOutcome(string(models.ProviderStripe), outcomeForError(err))
		return err
	}

	s.metrics.WebhookOutcome(string(models.ProviderStripe), "processed")
	logger.Info("order payment completed", "order_id", orderID, "session_id", sess.ID)
	return nil
}

// HandleHeleketNotification verifies the signed notification body and marks
// the order processing once the invoice is paid.
func (s *PaymentService) HandleHeleketNotification(ctx context.Context, payload []byte) error {
	span := sentry.StartSpan(
		ctx,
		"service.payment.handle_heleket_notification",
		sentry.WithOpName("service.payment"),
		sentry.WithDescription("HandleHeleketNotification"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	provider := string(models.ProviderHeleket)
	if s.heleketAPIKey == "" {
		s.metrics.WebhookOutcome(provider, "invalid")
		return fmt.Errorf("%w: heleket is not configured", ErrInvalidWebhook)
	}

	notification, err := heleket.ParseNotification(payload, s.heleketAPIKey)
	if err != nil {
		s.metrics.WebhookOutcome(provider, "invalid")
		return fmt.Errorf("%w: %w", ErrInvalidWebhook, err)
	}

	ctx, logger := logging.With(ctx, s.logger, "invoice_uuid", notification.UUID, "status", notification.Status)
	observability.Count(ctx, "webhook.heleket.received", "status", notification.Status)

	orderID, err := uuid.Parse(strings.TrimSpace(notification.OrderID))
	if err != nil {
		s.metrics.WebhookOutcome(provider, "invalid")
		return fmt.Errorf("%w: invalid order_id %q", ErrInvalidWebhook, notification.OrderID)
	}

	if !notification.IsPaid() {
		logger.Info("heleket invoice not paid yet", "order_id", orderID)
		s.metrics.WebhookOutcome(provider, "ignored")
		return nil
	}

	markerKey := cache.WebhookKey(provider, notification.UUID+":"+strings.ToLower(notification.Status))
	fresh, err := s.claimDelivery(ctx, markerKey)
	if err != nil {
		logger.Warn("failed to record webhook delivery, processing anyway", "error", err)
	}
	if !fresh {
		logger.Info("skipping redelivered heleket notification", "order_id", orderID)
		s.metrics.WebhookOutcome(provider, "duplicate")
		return nil
	}

	if err := s.markProcessing(ctx, orderID, ""); err != nil {
		s.releaseDelivery(ctx, markerKey)
		s.metrics.WebhookOutcome(provider, outcomeForError(err))
		return err
	}

	s.metrics.WebhookOutcome(provider, "processed")
	logger.Info("order payment completed", "order_id", orderID)
	return nil
}

// HandleStripeSuccess resolves the returning shopper's checkout session to
// its order and clears their cart.
func (s *PaymentService) HandleStripeSuccess(ctx context.Context, owner, sessionID string) (*models.Order, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrOrderNotFound)
	}

	sess, err := s.sessions.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, stripe.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrOrderNotFound, err)
		}
		return nil, err
	}
	orderID, err := stripe.OrderIDFromSession(sess)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderNotFound, err)
	}

	return s.completeReturn(ctx, owner, orderID)
}

func (s *PaymentService) HandleHeleketSuccess(ctx context.Context, owner, orderID string) (*models.Order, error) {
	id, err := uuid.Parse(strings.TrimSpace(orderID))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id %q", ErrOrderNotFound, orderID)
	}
	return s.completeReturn(ctx, owner, id)
}

// HandleCancel marks the order cancelled and returns it.
func (s *PaymentService) HandleCancel(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := uuid.Parse(strings.TrimSpace(orderID))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id %q", ErrOrderNotFound, orderID)
	}

	logger := s.loggerFromContext(ctx)
	if err := s.orders.MarkCancelled(ctx, id); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load cancelled order: %w", err)
	}
	observability.Count(ctx, "order.cancelled", "payment_provider", string(order.PaymentProvider))
	logger.Info("order cancelled", "order_id", id)

	if err := s.publisher.Publish(ctx, events.NewOrderEvent(events.EventOrderCancelled, order)); err != nil {
		logger.Warn("failed to publish order event", "error", err, "order_id", id, "event", events.EventOrderCancelled)
	}
	if err := s.emailSender.SendOrderCancelled(ctx, order); err != nil {
		logger.Warn("failed to send order cancelled email", "error", err, "order_id", id)
	}

	return order, nil
}

func (s *PaymentService) completeReturn(ctx context.Context, owner string, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if owner != "" {
		if err := s.carts.Clear(ctx, owner); err != nil {
			s.loggerFromContext(ctx).Warn("failed to clear cart after payment", "error", err, "order_id", orderID)
		}
	}
	return order, nil
}

// markProcessing records the payment and notifies downstream consumers.
// Publishing and email are best effort.
func (s *PaymentService) markProcessing(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error {
	logger := s.loggerFromContext(ctx)

	if err := s.orders.MarkProcessing(ctx, orderID, paymentIntentID); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return fmt.Errorf("failed to mark order processing: %w", err)
	}
	observability.Count(ctx, "order.processing")

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		logger.Warn("failed to load order after payment", "error", err, "order_id", orderID)
		return nil
	}

	if err := s.publisher.Publish(ctx, events.NewOrderEvent(events.EventOrderProcessing, order)); err != nil {
		logger.Warn("failed to publish order event", "error", err, "order_id", orderID, "event", events.EventOrderProcessing)
	}
	if err := s.emailSender.SendOrderConfirmation(ctx, order); err != nil {
		logger.Warn("failed to send order confirmation email", "error", err, "order_id", orderID)
	}
	return nil
}

func (s *PaymentService) claimDelivery(ctx context.Context, key string) (bool, error) {
	if s.markers == nil {
		return true, nil
	}
	stored, err := s.markers.SetIfAbsent(ctx, key, time.Now().UTC().Format(time.RFC3339), webhookMarkerTTL)
	if err != nil {
		return true, err
	}
	return stored, nil
}

func (s *PaymentService) releaseDelivery(ctx context.Context, key string) {
	if s.markers == nil {
		return
	}
	if err := s.markers.Delete(ctx, key); err != nil {
		s.loggerFromContext(ctx).Warn("failed to release webhook marker", "error", err, "key", key)
	}
}

func outcomeForError(err error) string {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, ErrInvalidWebhook):
		return "invalid"
	default:
		return "failed"
	}
}
