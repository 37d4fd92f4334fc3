package catalog

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductInactive = errors.New("product is not available")
	ErrInvalidSize     = errors.New("size is not offered for this product")
)

type Product struct {
	SKU         string
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Active      bool
	Sizes       []string
}

// HasSize reports whether size is a valid variant. Products without sizes
// accept only the empty size.
func (p *Product) HasSize(size string) bool {
	if len(p.Sizes) == 0 {
		return size == ""
	}
	return slices.Contains(p.Sizes, size)
}

type Catalog struct {
	name     string
	currency string
	products []*Product
	bySKU    map[string]*Product
}

// Load reads, validates and indexes the catalog file at path.
func Load(path, currency string) (*Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	config, err := NewParser().Parse(content)
	if err != nil {
		return nil, err
	}

	return New(config, currency)
}

func New(config *StoreConfig, currency string) (*Catalog, error) {
	if err := NewValidator().Validate(config, currency); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	c := &Catalog{
		name:     strings.TrimSpace(config.Store.Name),
		currency: strings.ToLower(strings.TrimSpace(currency)),
		bySKU:    make(map[string]*Product, len(config.Products)),
	}
	for _, pc := range config.Products {
		sizes := make([]string, 0, len(pc.Sizes))
		for _, size := range pc.Sizes {
			sizes = append(sizes, strings.TrimSpace(size))
		}
		product := &Product{
			SKU:         strings.TrimSpace(pc.SKU),
			Name:        strings.TrimSpace(pc.Name),
			Description: strings.TrimSpace(pc.Description),
			Category:    strings.TrimSpace(pc.Category),
			Price:       decimal.RequireFromString(strings.TrimSpace(pc.Price)),
			Active:      pc.Active,
			Sizes:       sizes,
		}
		c.products = append(c.products, product)
		c.bySKU[product.SKU] = product
	}

	return c, nil
}

func (c *Catalog) Name() string {
	return c.name
}

func (c *Catalog) Currency() string {
	return c.currency
}

// Products returns the active products in catalog order.
func (c *Catalog) Products() []*Product {
	active := make([]*Product, 0, len(c.products))
	for _, product := range c.products {
		if product.Active {
			active = append(active, product)
		}
	}
	return active
}

// Lookup returns an active product by SKU.
func (c *Catalog) Lookup(sku string) (*Product, error) {
	product, ok := c.bySKU[strings.TrimSpace(sku)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, sku)
	}
	if !product.Active {
		return nil, fmt.Errorf("%w: %s", ErrProductInactive, sku)
	}
	return product, nil
}
