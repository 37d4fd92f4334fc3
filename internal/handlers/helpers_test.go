package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/gitshopapp/storefront/internal/cache"
	"github.com/gitshopapp/storefront/internal/cart"
	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/config"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/internal/session"
)

const (
	testVisitorID     = "visitor-1"
	testWebhookSecret = "whsec_test_secret"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}

type fakeCarts struct {
	carts map[string]*cart.Cart
}

func (f *fakeCarts) Get(_ context.Context, owner string) (*cart.Cart, error) {
	if current, ok := f.carts[owner]; ok {
		return current, nil
	}
	return &cart.Cart{Owner: owner, Currency: "eur"}, nil
}

func (f *fakeCarts) Add(context.Context, string, string, string, int) error {
	return nil
}

func (f *fakeCarts) Remove(context.Context, string, string, string) error {
	return nil
}

type fakeCheckout struct {
	result *services.SubmitResult
	err    error
	calls  int
	input  services.SubmitInput
}

func (f *fakeCheckout) Submit(_ context.Context, input services.SubmitInput) (*services.SubmitResult, error) {
	f.calls++
	f.input = input
	return f.result, f.err
}

func (f *fakeCheckout) Providers() []models.PaymentProvider {
	return []models.PaymentProvider{models.ProviderStripe, models.ProviderHeleket}
}

type fakePayments struct {
	order        *models.Order
	err          error
	stripeEvents []*stripeapi.Event
	heleketCalls int
	cancelled    []string
}

func (f *fakePayments) HandleStripeEvent(_ context.Context, event *stripeapi.Event) error {
	f.stripeEvents = append(f.stripeEvents, event)
	return f.err
}

func (f *fakePayments) HandleHeleketNotification(context.Context, []byte) error {
	f.heleketCalls++
	return f.err
}

func (f *fakePayments) HandleStripeSuccess(context.Context, string, string) (*models.Order, error) {
	return f.order, f.err
}

func (f *fakePayments) HandleHeleketSuccess(context.Context, string, string) (*models.Order, error) {
	return f.order, f.err
}

func (f *fakePayments) HandleCancel(_ context.Context, orderID string) (*models.Order, error) {
	f.cancelled = append(f.cancelled, orderID)
	return f.order, f.err
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	c, err := catalog.New(&catalog.StoreConfig{
		Store: catalog.StoreInfo{Name: "Test Store", Currency: "EUR"},
		Products: []catalog.ProductConfig{
			{SKU: "TEE_BLACK", Name: "Black Tee", Price: "10.00", Active: true, Sizes: []string{"S", "M"}},
		},
	}, "eur")
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return c
}

func filledCart() *cart.Cart {
	return &cart.Cart{
		Owner:    "visitor:" + testVisitorID,
		Currency: "eur",
		Items: []cart.Item{
			{ProductSKU: "TEE_BLACK", ProductName: "Black Tee", Size: "M", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		},
	}
}

func testOrder() *models.Order {
	return &models.Order{
		ID:              uuid.MustParse("5f0c2c9e-5b8e-4a4f-9d38-3f1f0c8a1e11"),
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		TotalPrice:      decimal.RequireFromString("20.00"),
		Currency:        "eur",
		PaymentProvider: models.ProviderStripe,
		Status:          models.StatusProcessing,
		Items: []models.OrderItem{
			{ProductSKU: "TEE_BLACK", ProductName: "Black Tee", Size: "M", Quantity: 2, Price: decimal.RequireFromString("10.00")},
		},
	}
}

type testDeps struct {
	carts    *fakeCarts
	checkout *fakeCheckout
	payments *fakePayments
}

func newTestHandlers(t *testing.T) (*Handlers, *testDeps) {
	t.Helper()

	deps := &testDeps{
		carts:    &fakeCarts{carts: map[string]*cart.Cart{}},
		checkout: &fakeCheckout{},
		payments: &fakePayments{},
	}

	sessions, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatalf("failed to create session cache: %v", err)
	}

	h, err := New(Dependencies{
		Config: &config.Config{
			BaseURL:             "https://shop.example.com",
			StripeWebhookSecret: testWebhookSecret,
		},
		DB:             fakePinger{},
		Catalog:        testCatalog(t),
		Carts:          deps.carts,
		Checkout:       deps.checkout,
		Payments:       deps.payments,
		SessionManager: session.NewManager(session.NewStore(sessions), false),
		Logger:         discardLogger(),
	})
	if err != nil {
		t.Fatalf("failed to build handlers: %v", err)
	}
	return h, deps
}

// withVisitor attaches a visitor session the way SessionMiddleware would.
func withVisitor(r *http.Request) *http.Request {
	return r.WithContext(session.WithData(r.Context(), &session.Data{VisitorID: testVisitorID}))
}
