package handlers

import (
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/observability"
)

// MetricsContext scopes the Sentry meter and the request logger to the cart
// owner so every count and log line below it can be tied back to a shopper.
// It must run after the session and identity middlewares.
func (h *Handlers) MetricsContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		attrs := []attribute.Builder{
			attribute.String("http.method", r.Method),
			attribute.String("http.htmx", strconv.FormatBool(isHTMXRequest(r))),
		}
		if id := requestIDFromContext(ctx); id != "" {
			attrs = append(attrs, attribute.String("http.request_id", id))
		}
		if route := routeLabel(r); route != "" {
			attrs = append(attrs, attribute.String("http.route", route))
		}

		owner := h.cartOwner(r)
		if owner != "" {
			attrs = append(attrs, attribute.String("cart.owner", owner))
		}

		meter := sentry.NewMeter(ctx).WithCtx(ctx)
		meter.SetAttributes(attrs...)
		ctx = observability.WithMeter(ctx, meter)

		if owner != "" {
			ctx, _ = logging.With(ctx, h.logger, "cart_owner", owner)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
