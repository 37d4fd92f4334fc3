package heleket

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Payment statuses reported by the gateway.
const (
	StatusPaid         = "paid"
	StatusPaidOver     = "paid_over"
	StatusWrongAmount  = "wrong_amount"
	StatusProcess      = "process"
	StatusConfirmCheck = "confirm_check"
	StatusCancel       = "cancel"
	StatusFail         = "fail"
	StatusSystemFail   = "system_fail"
)

// Notification is a payment webhook delivered to url_callback.
type Notification struct {
	Type          string `json:"type"`
	UUID          string `json:"uuid"`
	OrderID       string `json:"order_id"`
	Amount        string `json:"amount"`
	PaymentAmount string `json:"payment_amount"`
	Currency      string `json:"currency"`
	PayerCurrency string `json:"payer_currency"`
	Network       string `json:"network"`
	Status        string `json:"status"`
	IsFinal       bool   `json:"is_final"`
	TxID          string `json:"txid"`
}

// IsPaid reports whether the invoice was settled, including overpayment.
func (n *Notification) IsPaid() bool {
	switch strings.ToLower(n.Status) {
	case StatusPaid, StatusPaidOver:
		return true
	default:
		return false
	}
}

// ParseNotification verifies the body signature before decoding it.
func ParseNotification(payload []byte, apiKey string) (*Notification, error) {
	if err := VerifyWebhook(payload, apiKey); err != nil {
		return nil, fmt.Errorf("webhook signature validation failed: %w", err)
	}

	var notification Notification
	if err := json.Unmarshal(payload, &notification); err != nil {
		return nil, fmt.Errorf("failed to parse heleket notification: %w", err)
	}
	if strings.TrimSpace(notification.OrderID) == "" {
		return nil, fmt.Errorf("heleket notification has no order_id")
	}

	return &notification, nil
}
