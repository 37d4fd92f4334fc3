package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/internal/stripe"
	"github.com/gitshopapp/storefront/ui/views"
)

// StripeWebhook verifies the Stripe-Signature header before handing the event
// to the payment service. Stripe retries anything that is not a 2xx.
func (h *Handlers) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	event, err := stripe.ReadWebhookEvent(r, h.config.StripeWebhookSecret)
	if err != nil {
		logger.Warn("rejected stripe webhook", "error", err)
		h.metrics.WebhookOutcome(string(models.ProviderStripe), "invalid_signature")
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	logger = logger.With("event_id", event.ID, "event_type", event.Type)
	if err := h.payments.HandleStripeEvent(ctx, event); err != nil {
		h.writeWebhookError(w, r, err)
		return
	}

	logger.Debug("stripe webhook handled")
	w.WriteHeader(http.StatusOK)
}

// HeleketWebhook passes the raw body through untouched since the signature
// covers its exact bytes.
func (h *Handlers) HeleketWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.loggerFromContext(ctx).Warn("failed to read heleket webhook", "error", err)
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	if err := h.payments.HandleHeleketNotification(ctx, payload); err != nil {
		h.writeWebhookError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) writeWebhookError(w http.ResponseWriter, r *http.Request, err error) {
	logger := h.loggerFromContext(r.Context())

	switch {
	case errors.Is(err, services.ErrInvalidWebhook):
		logger.Warn("rejected webhook", "error", err)
		http.Error(w, "Invalid webhook", http.StatusBadRequest)
	case errors.Is(err, services.ErrOrderNotFound):
		logger.Warn("webhook references unknown order", "error", err)
		http.Error(w, "Order not found", http.StatusBadRequest)
	default:
		logger.Error("failed to process webhook", "error", err)
		http.Error(w, "Webhook processing failed", http.StatusInternalServerError)
	}
}

func (h *Handlers) StripeSuccess(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	order, err := h.payments.HandleStripeSuccess(r.Context(), h.cartOwner(r), sessionID)
	h.renderPaymentReturn(w, r, order, err)
}

func (h *Handlers) HeleketSuccess(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimSpace(r.URL.Query().Get("order_id"))
	if orderID == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	order, err := h.payments.HandleHeleketSuccess(r.Context(), h.cartOwner(r), orderID)
	h.renderPaymentReturn(w, r, order, err)
}

func (h *Handlers) renderPaymentReturn(w http.ResponseWriter, r *http.Request, order *models.Order, err error) {
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			h.renderNotFound(w, r)
			return
		}
		h.loggerFromContext(r.Context()).Error("failed to confirm payment return", "error", err)
		h.renderError(w, r, http.StatusBadGateway, "We could not confirm your payment yet. Your order will update once the payment provider notifies us.")
		return
	}

	data := h.orderData(r, "Thank you", order)
	if isHTMXRequest(r) {
		h.render(w, r, http.StatusOK, views.PaymentSuccess(data))
		return
	}
	h.render(w, r, http.StatusOK, views.PaymentSuccessPage(data))
}

// StripeCancel is where Stripe sends the shopper after they abandon the
// hosted checkout.
func (h *Handlers) StripeCancel(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimSpace(r.URL.Query().Get("order_id"))
	if orderID == "" {
		http.Redirect(w, r, "/orders/checkout", http.StatusSeeOther)
		return
	}

	order, err := h.payments.HandleCancel(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			h.renderNotFound(w, r)
			return
		}
		h.loggerFromContext(r.Context()).Error("failed to cancel order", "error", err, "order_id", orderID)
		h.renderError(w, r, http.StatusInternalServerError, "We could not cancel your order. Please try again.")
		return
	}

	data := h.orderData(r, "Payment cancelled", order)
	if isHTMXRequest(r) {
		h.render(w, r, http.StatusOK, views.PaymentCancel(data))
		return
	}
	h.render(w, r, http.StatusOK, views.PaymentCancelPage(data))
}
