package catalog

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Pricer struct{}

func NewPricer() *Pricer {
	return &Pricer{}
}

// MinorUnits converts an amount to the smallest currency unit, rounding half up.
func (p *Pricer) MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// Format renders an amount with two decimals, the way providers and views expect it.
func (p *Pricer) Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
