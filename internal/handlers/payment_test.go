package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/internal/stripe"
)

const stripeAPIVersion = "2026-01-28.clover"

func stripeEventPayload() []byte {
	return []byte(`{"id":"evt_test","object":"event","api_version":"` + stripeAPIVersion + `","type":"checkout.session.completed","data":{"object":{"id":"cs_test","object":"checkout.session","metadata":{"order_id":"5f0c2c9e-5b8e-4a4f-9d38-3f1f0c8a1e11"}}}}`)
}

func signedStripeRequest(payload []byte, secret string) *http.Request {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})

	req := httptest.NewRequest(http.MethodPost, "/payment/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	return req
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  *http.Request
	}{
		{
			name: "missing header",
			req:  httptest.NewRequest(http.MethodPost, "/payment/stripe/webhook", bytes.NewReader(stripeEventPayload())),
		},
		{
			name: "wrong secret",
			req:  signedStripeRequest(stripeEventPayload(), "whsec_other"),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, deps := newTestHandlers(t)
			rec := httptest.NewRecorder()
			h.StripeWebhook(rec, tt.req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			if len(deps.payments.stripeEvents) != 0 {
				t.Fatalf("expected no event to reach the payment service")
			}
		})
	}
}

func TestStripeWebhook(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "processed", wantStatus: http.StatusOK},
		{name: "invalid event", err: services.ErrInvalidWebhook, wantStatus: http.StatusBadRequest},
		{name: "unknown order", err: services.ErrOrderNotFound, wantStatus: http.StatusBadRequest},
		{name: "store failure", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, deps := newTestHandlers(t)
			deps.payments.err = tt.err

			rec := httptest.NewRecorder()
			h.StripeWebhook(rec, signedStripeRequest(stripeEventPayload(), testWebhookSecret))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if len(deps.payments.stripeEvents) != 1 {
				t.Fatalf("expected one event, got %d", len(deps.payments.stripeEvents))
			}
			if got := deps.payments.stripeEvents[0].ID; got != "evt_test" {
				t.Fatalf("expected event evt_test, got %q", got)
			}
		})
	}
}

func TestHeleketWebhook(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "processed", wantStatus: http.StatusOK},
		{name: "bad signature", err: services.ErrInvalidWebhook, wantStatus: http.StatusBadRequest},
		{name: "store failure", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, deps := newTestHandlers(t)
			deps.payments.err = tt.err

			req := httptest.NewRequest(http.MethodPost, "/payment/heleket/webhook", strings.NewReader(`{"uuid":"inv-1","status":"paid"}`))
			rec := httptest.NewRecorder()
			h.HeleketWebhook(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if deps.payments.heleketCalls != 1 {
				t.Fatalf("expected one notification, got %d", deps.payments.heleketCalls)
			}
		})
	}
}

func TestStripeSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		target       string
		err          error
		htmx         bool
		wantStatus   int
		wantLocation string
		wantBody     string
	}{
		{
			name:         "missing session",
			target:       "/payment/stripe/success",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/",
		},
		{
			name:       "completed",
			target:     "/payment/stripe/success?session_id=cs_test",
			wantStatus: http.StatusOK,
			wantBody:   "Thank you, Ada Lovelace!",
		},
		{
			name:       "completed htmx",
			target:     "/payment/stripe/success?session_id=cs_test",
			htmx:       true,
			wantStatus: http.StatusOK,
			wantBody:   "20.00 EUR",
		},
		{
			name:       "unknown order",
			target:     "/payment/stripe/success?session_id=cs_missing",
			err:        services.ErrOrderNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "provider failure",
			target:     "/payment/stripe/success?session_id=cs_test",
			err:        errors.New("stripe unavailable"),
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, deps := newTestHandlers(t)
			deps.payments.order = testOrder()
			deps.payments.err = tt.err

			req := withVisitor(httptest.NewRequest(http.MethodGet, tt.target, nil))
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rec := httptest.NewRecorder()
			h.StripeSuccess(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tt.wantLocation {
				t.Fatalf("expected location %q, got %q", tt.wantLocation, got)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("expected body to contain %q, got %s", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestStripeSuccessUnknownSessionIsNotFound(t *testing.T) {
	t.Parallel()

	missing := &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(strings.NewReader(`{"error":{"code":"resource_missing","message":"No such checkout.session: 'cs_bogus'","type":"invalid_request_error"}}`)),
				Request:    r,
			}, nil
		}),
	}

	h, _ := newTestHandlers(t)
	h.payments = services.NewPaymentService(services.PaymentServiceConfig{
		Sessions: stripe.NewClient("sk_test_123", missing),
		Logger:   discardLogger(),
	})

	rec := httptest.NewRecorder()
	h.StripeSuccess(rec, withVisitor(httptest.NewRequest(http.MethodGet, "/payment/stripe/success?session_id=cs_bogus", nil)))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestHeleketSuccessWithoutOrderRedirectsHome(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandlers(t)
	rec := httptest.NewRecorder()
	h.HeleketSuccess(rec, withVisitor(httptest.NewRequest(http.MethodGet, "/payment/heleket/success", nil)))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect home, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestStripeCancel(t *testing.T) {
	t.Parallel()

	t.Run("missing order", func(t *testing.T) {
		t.Parallel()

		h, deps := newTestHandlers(t)
		rec := httptest.NewRecorder()
		h.StripeCancel(rec, httptest.NewRequest(http.MethodGet, "/payment/stripe/cancel", nil))

		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/orders/checkout" {
			t.Fatalf("expected redirect to checkout, got %d %q", rec.Code, rec.Header().Get("Location"))
		}
		if len(deps.payments.cancelled) != 0 {
			t.Fatalf("expected no cancellation")
		}
	})

	t.Run("cancels order", func(t *testing.T) {
		t.Parallel()

		h, deps := newTestHandlers(t)
		deps.payments.order = testOrder()

		rec := httptest.NewRecorder()
		h.StripeCancel(rec, httptest.NewRequest(http.MethodGet, "/payment/stripe/cancel?order_id=5f0c2c9e-5b8e-4a4f-9d38-3f1f0c8a1e11", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if len(deps.payments.cancelled) != 1 || deps.payments.cancelled[0] != "5f0c2c9e-5b8e-4a4f-9d38-3f1f0c8a1e11" {
			t.Fatalf("unexpected cancellations %v", deps.payments.cancelled)
		}
		if !strings.Contains(rec.Body.String(), "Payment cancelled") {
			t.Fatalf("expected cancel page, got %s", rec.Body.String())
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		t.Parallel()

		h, deps := newTestHandlers(t)
		deps.payments.err = services.ErrOrderNotFound

		rec := httptest.NewRecorder()
		h.StripeCancel(rec, httptest.NewRequest(http.MethodGet, "/payment/stripe/cancel?order_id=nope", nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandlers(t)
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Fatalf("unexpected health body %s", rec.Body.String())
	}

	h.db = fakePinger{err: errors.New("connection refused")}
	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}
