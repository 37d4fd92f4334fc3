// Package events publishes order lifecycle events for downstream consumers.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/gitshopapp/storefront/internal/models"
)

const (
	EventOrderCreated    = "order.created"
	EventOrderProcessing = "order.processing"
	EventOrderCancelled  = "order.cancelled"
)

type Event struct {
	EventID   string         `json:"event_id"`
	Type      string         `json:"type"`
	OrderID   string         `json:"order_id"`
	CreatedAt time.Time      `json:"created_at"`
	Payload   map[string]any `json:"payload"`
}

type orderLine struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Size     string `json:"size,omitempty"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// NewOrderEvent snapshots the fields consumers need from an order.
func NewOrderEvent(eventType string, order *models.Order) Event {
	lines := make([]orderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, orderLine{
			SKU:      item.ProductSKU,
			Name:     item.ProductName,
			Size:     item.Size,
			Quantity: item.Quantity,
			Price:    item.Price.StringFixed(2),
		})
	}

	return Event{
		EventID:   uuid.NewString(),
		Type:      eventType,
		OrderID:   order.ID.String(),
		CreatedAt: time.Now().UTC(),
		Payload: map[string]any{
			"status":           string(order.Status),
			"payment_provider": string(order.PaymentProvider),
			"total_price":      order.TotalPrice.StringFixed(2),
			"currency":         order.Currency,
			"user_id":          order.UserID,
			"items":            lines,
		},
	}
}
