package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/gitshopapp/storefront/internal/db"
)

var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrInvalidPaymentProvider = errors.New("invalid payment provider")
	ErrPaymentSession         = errors.New("failed to create payment session")
	ErrOrderNotFound          = db.ErrOrderNotFound
	ErrInvalidWebhook         = errors.New("invalid webhook")
)

// ValidationError carries a message per rejected checkout form field,
// keyed by the form field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return "validation failed: " + strings.Join(names, ", ")
}

func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}
