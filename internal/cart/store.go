package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gitshopapp/storefront/internal/cache"
	"github.com/gitshopapp/storefront/internal/catalog"
)

const (
	cartTTL         = 14 * 24 * time.Hour
	maxLineQuantity = 99
)

var ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")

type storedLine struct {
	SKU      string `json:"sku"`
	Size     string `json:"size,omitempty"`
	Quantity int    `json:"quantity"`
}

type storedCart struct {
	Lines []storedLine `json:"lines"`
}

// Store persists cart lines in the cache provider and prices them against
// the catalog on every read.
type Store struct {
	cache   cache.Provider
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func NewStore(cacheProvider cache.Provider, productCatalog *catalog.Catalog, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		cache:   cacheProvider,
		catalog: productCatalog,
		logger:  logger.With("component", "cart"),
	}
}

// Get returns the owner's cart. Lines whose product left the catalog are dropped.
func (s *Store) Get(ctx context.Context, owner string) (*Cart, error) {
	stored, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	cart := &Cart{Owner: owner, Currency: s.catalog.Currency()}
	for _, line := range stored.Lines {
		product, err := s.catalog.Lookup(line.SKU)
		if err != nil {
			s.logger.Debug("dropping unavailable cart line", "owner", owner, "sku", line.SKU, "error", err)
			continue
		}
		cart.Items = append(cart.Items, Item{
			ProductSKU:  product.SKU,
			ProductName: product.Name,
			Size:        line.Size,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
		})
	}
	return cart, nil
}

// Add increases the quantity of a (product, size) line, creating it if needed.
func (s *Store) Add(ctx context.Context, owner, sku, size string, quantity int) error {
	if quantity <= 0 || quantity > maxLineQuantity {
		return ErrInvalidQuantity
	}

	product, err := s.catalog.Lookup(sku)
	if err != nil {
		return err
	}
	if !product.HasSize(size) {
		return fmt.Errorf("%w: %s %q", catalog.ErrInvalidSize, product.SKU, size)
	}

	stored, err := s.load(ctx, owner)
	if err != nil {
		return err
	}

	found := false
	for i := range stored.Lines {
		if stored.Lines[i].SKU == product.SKU && stored.Lines[i].Size == size {
			stored.Lines[i].Quantity = min(stored.Lines[i].Quantity+quantity, maxLineQuantity)
			found = true
			break
		}
	}
	if !found {
		stored.Lines = append(stored.Lines, storedLine{SKU: product.SKU, Size: size, Quantity: quantity})
	}

	return s.save(ctx, owner, stored)
}

func (s *Store) Remove(ctx context.Context, owner, sku, size string) error {
	stored, err := s.load(ctx, owner)
	if err != nil {
		return err
	}

	lines := stored.Lines[:0]
	for _, line := range stored.Lines {
		if line.SKU == sku && line.Size == size {
			continue
		}
		lines = append(lines, line)
	}
	stored.Lines = lines

	return s.save(ctx, owner, stored)
}

func (s *Store) Clear(ctx context.Context, owner string) error {
	if err := s.cache.Delete(ctx, cache.CartKey(owner)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, owner string) (*storedCart, error) {
	if owner == "" {
		return nil, fmt.Errorf("cart owner is required")
	}

	raw, err := s.cache.Get(ctx, cache.CartKey(owner))
	if errors.Is(err, cache.ErrNotFound) {
		return &storedCart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var stored storedCart
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Warn("discarding unreadable cart", "owner", owner, "error", err)
		return &storedCart{}, nil
	}
	return &stored, nil
}

func (s *Store) save(ctx context.Context, owner string, stored *storedCart) error {
	if len(stored.Lines) == 0 {
		return s.Clear(ctx, owner)
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.cache.Set(ctx, cache.CartKey(owner), string(payload), cartTTL); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
