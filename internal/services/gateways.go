package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/heleket"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/stripe"
)

// Gateway opens a hosted payment page for an order.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*PaymentSession, error)
}

type SessionRequest struct {
	Order   *models.Order
	BaseURL string
}

// PaymentSession is the remote checkout the shopper is redirected to.
type PaymentSession struct {
	ID              string
	URL             string
	PaymentIntentID string
}

// Gateways maps each enabled payment provider to its gateway.
type Gateways map[models.PaymentProvider]Gateway

func (g Gateways) Enabled(provider models.PaymentProvider) bool {
	_, ok := g[provider]
	return ok
}

type checkoutSessionCreator interface {
	CreateCheckoutSession(ctx context.Context, params stripe.CheckoutSessionParams) (*stripeapi.CheckoutSession, error)
}

type StripeGateway struct {
	client checkoutSessionCreator
	pricer *catalog.Pricer
}

func NewStripeGateway(client checkoutSessionCreator) *StripeGateway {
	return &StripeGateway{client: client, pricer: catalog.NewPricer()}
}

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*PaymentSession, error) {
	order := req.Order
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}

	lineItems := make([]stripe.LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		lineItems = append(lineItems, stripe.LineItem{
			Name:       item.DisplayName(),
			UnitAmount: g.pricer.MinorUnits(item.Price),
			Quantity:   int64(item.Quantity),
		})
	}

	sess, err := g.client.CreateCheckoutSession(ctx, stripe.CheckoutSessionParams{
		OrderID:       order.ID,
		Currency:      order.Currency,
		LineItems:     lineItems,
		CustomerEmail: order.Email,
		SuccessURL:    StripeSuccessURL(req.BaseURL),
		CancelURL:     StripeCancelURL(req.BaseURL, order.ID.String()),
	})
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.URL == "" {
		return nil, fmt.Errorf("stripe returned a checkout session without a URL")
	}

	return &PaymentSession{
		ID:              sess.ID,
		URL:             sess.URL,
		PaymentIntentID: stripe.PaymentIntentID(sess),
	}, nil
}

type invoiceCreator interface {
	CreateInvoice(ctx context.Context, invoice heleket.InvoiceRequest) (*heleket.Invoice, error)
}

type HeleketGateway struct {
	client invoiceCreator
}

func NewHeleketGateway(client invoiceCreator) *HeleketGateway {
	return &HeleketGateway{client: client}
}

func (g *HeleketGateway) CreateSession(ctx context.Context, req SessionRequest) (*PaymentSession, error) {
	order := req.Order
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}

	invoice, err := g.client.CreateInvoice(ctx, heleket.InvoiceRequest{
		Amount:      order.TotalPrice.StringFixed(2),
		Currency:    strings.ToUpper(order.Currency),
		OrderID:     order.ID.String(),
		URLReturn:   joinURL(req.BaseURL, "/orders/checkout"),
		URLSuccess:  HeleketSuccessURL(req.BaseURL, order.ID.String()),
		URLCallback: joinURL(req.BaseURL, "/payment/heleket/webhook"),
	})
	if err != nil {
		return nil, err
	}
	if invoice == nil || invoice.URL == "" {
		return nil, fmt.Errorf("heleket returned an invoice without a URL")
	}

	return &PaymentSession{ID: invoice.UUID, URL: invoice.URL}, nil
}

// StripeSuccessURL keeps the session placeholder unescaped so Stripe can
// substitute it.
func StripeSuccessURL(baseURL string) string {
	return joinURL(baseURL, "/payment/stripe/success") + "?session_id=" + stripe.SessionIDPlaceholder
}

func StripeCancelURL(baseURL, orderID string) string {
	return joinURL(baseURL, "/payment/stripe/cancel") + "?order_id=" + url.QueryEscape(orderID)
}

func HeleketSuccessURL(baseURL, orderID string) string {
	return joinURL(baseURL, "/payment/heleket/success") + "?order_id=" + url.QueryEscape(orderID)
}

func joinURL(baseURL, path string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/") + path
}
