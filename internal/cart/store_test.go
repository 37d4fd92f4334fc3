package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/storefront/internal/cache"
	"github.com/gitshopapp/storefront/internal/catalog"
)

func newTestStore(t *testing.T) (*Store, cache.Provider) {
	t.Helper()

	config := &catalog.StoreConfig{
		Store: catalog.StoreInfo{Name: "Test Store", Currency: "eur"},
		Products: []catalog.ProductConfig{
			{SKU: "TEE", Name: "Tee", Price: "10.00", Active: true, Sizes: []string{"S", "M"}},
			{SKU: "MUG", Name: "Mug", Price: "7.50", Active: true},
			{SKU: "RETIRED", Name: "Retired", Price: "1.00", Active: false},
		},
	}
	productCatalog, err := catalog.New(config, "eur")
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}

	provider, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatalf("failed to build cache: %v", err)
	}
	return NewStore(provider, productCatalog, nil), provider
}

func TestStoreAddMergesLinesAndPricesFromCatalog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newTestStore(t)

	if err := store.Add(ctx, "visitor:1", "TEE", "M", 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := store.Add(ctx, "visitor:1", "TEE", "M", 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := store.Add(ctx, "visitor:1", "MUG", "", 3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cart, err := store.Get(ctx, "visitor:1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []Item{
		{ProductSKU: "TEE", ProductName: "Tee", Size: "M", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		{ProductSKU: "MUG", ProductName: "Mug", Quantity: 3, UnitPrice: decimal.RequireFromString("7.50")},
	}
	if diff := cmp.Diff(want, cart.Items, cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })); diff != "" {
		t.Fatalf("cart items mismatch (-want +got):\n%s", diff)
	}
	if cart.TotalItems() != 5 {
		t.Fatalf("expected 5 items, got %d", cart.TotalItems())
	}
	if !cart.Subtotal().Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("expected subtotal 42.50, got %s", cart.Subtotal())
	}
}

func TestStoreAddRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newTestStore(t)

	tests := []struct {
		name     string
		sku      string
		size     string
		quantity int
		wantErr  error
	}{
		{name: "unknown product", sku: "NOPE", quantity: 1, wantErr: catalog.ErrProductNotFound},
		{name: "inactive product", sku: "RETIRED", quantity: 1, wantErr: catalog.ErrProductInactive},
		{name: "unknown size", sku: "TEE", size: "XXL", quantity: 1, wantErr: catalog.ErrInvalidSize},
		{name: "missing size", sku: "TEE", quantity: 1, wantErr: catalog.ErrInvalidSize},
		{name: "zero quantity", sku: "MUG", quantity: 0, wantErr: ErrInvalidQuantity},
		{name: "too many", sku: "MUG", quantity: 100, wantErr: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := store.Add(ctx, "visitor:invalid", tt.sku, tt.size, tt.quantity)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStoreRemoveAndClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, provider := newTestStore(t)

	if err := store.Add(ctx, "user:42", "TEE", "S", 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := store.Add(ctx, "user:42", "TEE", "M", 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := store.Remove(ctx, "user:42", "TEE", "S"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cart, err := store.Get(ctx, "user:42")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Size != "M" {
		t.Fatalf("unexpected items after remove: %+v", cart.Items)
	}

	if err := store.Clear(ctx, "user:42"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	cart, err = store.Get(ctx, "user:42")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", cart.Items)
	}
	if _, err := provider.Get(ctx, cache.CartKey("user:42")); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected cart key to be removed, got %v", err)
	}
}

func TestStoreGetDropsUnavailableProducts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, provider := newTestStore(t)

	raw := `{"lines":[{"sku":"MUG","quantity":1},{"sku":"RETIRED","quantity":2}]}`
	if err := provider.Set(ctx, cache.CartKey("visitor:2"), raw, cartTTL); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cart, err := store.Get(ctx, "visitor:2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductSKU != "MUG" {
		t.Fatalf("expected only MUG, got %+v", cart.Items)
	}
}

func TestStoreRequiresOwner(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	if _, err := store.Get(context.Background(), ""); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
