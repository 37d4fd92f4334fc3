package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxPrice is the largest amount a NUMERIC(10,2) column holds.
var maxPrice = decimal.RequireFromString("99999999.99")

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the catalog against the currency the store charges in.
func (v *Validator) Validate(config *StoreConfig, currency string) error {
	if config == nil {
		return fmt.Errorf("catalog is required")
	}

	if err := v.validateStore(&config.Store, currency); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}

	if len(config.Products) == 0 {
		return fmt.Errorf("at least one product is required")
	}

	skus := make(map[string]bool)
	for i, product := range config.Products {
		if err := v.validateProduct(&product); err != nil {
			return fmt.Errorf("product %d validation failed: %w", i, err)
		}

		if skus[product.SKU] {
			return fmt.Errorf("duplicate SKU: %s", product.SKU)
		}
		skus[product.SKU] = true
	}

	return nil
}

func (v *Validator) validateStore(store *StoreInfo, currency string) error {
	if strings.TrimSpace(store.Name) == "" {
		return fmt.Errorf("store name is required")
	}

	storeCurrency := strings.TrimSpace(store.Currency)
	if storeCurrency != "" && !strings.EqualFold(storeCurrency, currency) {
		return fmt.Errorf("catalog currency %q does not match store currency %q", storeCurrency, currency)
	}

	return nil
}

func (v *Validator) validateProduct(product *ProductConfig) error {
	if strings.TrimSpace(product.SKU) == "" {
		return fmt.Errorf("product SKU is required")
	}
	if len(product.SKU) > 64 {
		return fmt.Errorf("product SKU must be at most 64 characters")
	}

	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("product name is required")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(product.Price))
	if err != nil {
		return fmt.Errorf("product price %q is not a decimal amount", product.Price)
	}
	if !price.IsPositive() {
		return fmt.Errorf("product price must be positive")
	}
	if price.GreaterThan(maxPrice) {
		return fmt.Errorf("product price exceeds %s", maxPrice.StringFixed(2))
	}
	if !price.Equal(price.Truncate(2)) {
		return fmt.Errorf("product price must have at most two decimal places")
	}

	sizes := make(map[string]bool)
	for _, size := range product.Sizes {
		trimmed := strings.TrimSpace(size)
		if trimmed == "" {
			return fmt.Errorf("product sizes cannot be blank")
		}
		if sizes[trimmed] {
			return fmt.Errorf("duplicate size: %s", trimmed)
		}
		sizes[trimmed] = true
	}

	return nil
}
