package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusProcessing:
		return "Processing"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

type PaymentProvider string

const (
	ProviderStripe  PaymentProvider = "stripe"
	ProviderHeleket PaymentProvider = "heleket"
)

func (p PaymentProvider) Label() string {
	switch p {
	case ProviderStripe:
		return "Stripe"
	case ProviderHeleket:
		return "Heleket"
	default:
		return string(p)
	}
}

// ParsePaymentProvider accepts the form value of a provider choice.
func ParsePaymentProvider(value string) (PaymentProvider, error) {
	switch PaymentProvider(strings.ToLower(strings.TrimSpace(value))) {
	case ProviderStripe:
		return ProviderStripe, nil
	case ProviderHeleket:
		return ProviderHeleket, nil
	default:
		return "", fmt.Errorf("unknown payment provider %q", value)
	}
}

type Order struct {
	ID                    uuid.UUID       `json:"id"`
	UserID                string          `json:"user_id,omitempty"`
	FirstName             string          `json:"first_name"`
	LastName              string          `json:"last_name"`
	Email                 string          `json:"email"`
	Company               string          `json:"company"`
	Address1              string          `json:"address1"`
	Address2              string          `json:"address2"`
	City                  string          `json:"city"`
	Country               string          `json:"country"`
	Province              string          `json:"province"`
	PostalCode            string          `json:"postal_code"`
	Phone                 string          `json:"phone"`
	SpecialInstructions   string          `json:"special_instructions"`
	TotalPrice            decimal.Decimal `json:"total_price"`
	Currency              string          `json:"currency"`
	PaymentProvider       PaymentProvider `json:"payment_provider"`
	Status                OrderStatus     `json:"status"`
	ProviderSessionID     string          `json:"provider_session_id,omitempty"`
	StripePaymentIntentID string          `json:"stripe_payment_intent_id,omitempty"`
	Items                 []OrderItem     `json:"items"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func (o *Order) CustomerName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// ItemsTotal sums price*quantity over the order lines.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductSKU  string          `json:"product_sku"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// DisplayName is the line label shown to customers and payment providers.
func (i OrderItem) DisplayName() string {
	if strings.TrimSpace(i.Size) == "" {
		return i.ProductName
	}
	return fmt.Sprintf("%s - %s", i.ProductName, i.Size)
}
