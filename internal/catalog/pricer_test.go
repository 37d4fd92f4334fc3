package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPricer_Format(t *testing.T) {
	t.Parallel()

	pricer := NewPricer()
	tests := map[string]string{
		"20":     "20.00",
		"59.97":  "59.97",
		"0":      "0.00",
		"12.345": "12.35",
	}
	for amount, want := range tests {
		if got := pricer.Format(decimal.RequireFromString(amount)); got != want {
			t.Fatalf("Format(%s) = %s, want %s", amount, got, want)
		}
	}
}

func TestPricer_MinorUnits(t *testing.T) {
	t.Parallel()

	pricer := NewPricer()
	tests := map[string]int64{
		"10.00":  1000,
		"19.99":  1999,
		"0.5":    50,
		"12.345": 1235,
	}
	for amount, want := range tests {
		if got := pricer.MinorUnits(decimal.RequireFromString(amount)); got != want {
			t.Fatalf("MinorUnits(%s) = %d, want %d", amount, got, want)
		}
	}
}
