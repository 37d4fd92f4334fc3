// Package stripe wraps the Stripe Checkout API used by the storefront.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
)

// SessionIDPlaceholder is substituted by Stripe in the success URL.
const SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// ErrSessionNotFound is returned when Stripe has no checkout session with
// the requested id.
var ErrSessionNotFound = errors.New("checkout session not found")

// Client creates and reads Checkout Sessions
type Client struct {
	client *stripe.Client
}

// NewClient creates a Stripe client. A nil httpClient uses the library default.
func NewClient(secretKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		return &Client{client: stripe.NewClient(secretKey)}
	}
	return &Client{
		client: stripe.NewClient(secretKey, stripe.WithBackends(stripe.NewBackends(httpClient))),
	}
}

type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutSessionParams holds parameters for creating a checkout session
type CheckoutSessionParams struct {
	OrderID       uuid.UUID
	Currency      string
	LineItems     []LineItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// CreateCheckoutSession creates a hosted payment page for an order
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}

	sessionParams, err := buildCheckoutSessionParams(params)
	if err != nil {
		return nil, err
	}

	sess, err := c.client.V1CheckoutSessions.Create(ctx, sessionParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return sess, nil
}

// GetCheckoutSession retrieves a checkout session with its payment intent expanded.
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}

	params := &stripe.CheckoutSessionRetrieveParams{}
	params.AddExpand("payment_intent")

	sess, err := c.client.V1CheckoutSessions.Retrieve(ctx, sessionID, params)
	if err != nil {
		if isResourceMissing(err) {
			return nil, fmt.Errorf("%w: %s: %w", ErrSessionNotFound, sessionID, err)
		}
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	return sess, nil
}

func isResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound
}

func buildCheckoutSessionParams(params CheckoutSessionParams) (*stripe.CheckoutSessionCreateParams, error) {
	if params.OrderID == uuid.Nil {
		return nil, fmt.Errorf("order id is required")
	}
	if len(params.LineItems) == 0 {
		return nil, fmt.Errorf("at least one line item is required")
	}
	if params.SuccessURL == "" || params.CancelURL == "" {
		return nil, fmt.Errorf("success and cancel URLs are required")
	}

	currency := strings.ToLower(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = "eur"
	}

	lineItems := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(params.LineItems))
	for _, item := range params.LineItems {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("line item %q has invalid quantity %d", item.Name, item.Quantity)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	sessionParams := &stripe.CheckoutSessionCreateParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(params.SuccessURL),
		CancelURL:          stripe.String(params.CancelURL),
		LineItems:          lineItems,
		ClientReferenceID:  stripe.String(params.OrderID.String()),
		Metadata: map[string]string{
			"order_id": params.OrderID.String(),
		},
	}

	// Stripe rejects an empty customer email, so only send it when present.
	if params.CustomerEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}

	return sessionParams, nil
}

// OrderIDFromSession reads the order reference stored on a checkout session.
func OrderIDFromSession(sess *stripe.CheckoutSession) (uuid.UUID, error) {
	if sess == nil {
		return uuid.Nil, fmt.Errorf("checkout session is required")
	}

	raw := strings.TrimSpace(sess.Metadata["order_id"])
	if raw == "" {
		raw = strings.TrimSpace(sess.ClientReferenceID)
	}
	if raw == "" {
		return uuid.Nil, fmt.Errorf("checkout session %s has no order reference", sess.ID)
	}

	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("checkout session %s has invalid order reference: %w", sess.ID, err)
	}
	return orderID, nil
}

// PaymentIntentID returns the payment intent id whether or not it was expanded.
func PaymentIntentID(sess *stripe.CheckoutSession) string {
	if sess == nil || sess.PaymentIntent == nil {
		return ""
	}
	return sess.PaymentIntent.ID
}
