// Package cart keeps the shopper's pending purchase between requests.
package cart

import (
	"github.com/shopspring/decimal"
)

type Item struct {
	ProductSKU  string
	ProductName string
	Size        string
	Quantity    int
	UnitPrice   decimal.Decimal
}

func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is a priced snapshot of the stored lines.
type Cart struct {
	Owner    string
	Currency string
	Items    []Item
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// TotalItems counts units across all lines.
func (c *Cart) TotalItems() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) Subtotal() decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}
