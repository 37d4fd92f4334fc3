// Package heleket integrates the Heleket crypto payment gateway.
package heleket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL  = "https://api.heleket.com"
	invoiceLifetime = 3600
)

// Client creates invoices with the merchant's payment API key.
type Client struct {
	baseURL    string
	merchantID string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, merchantID, apiKey string, httpClient *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		merchantID: merchantID,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// InvoiceRequest is the body of POST /v1/payment.
type InvoiceRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	OrderID     string `json:"order_id"`
	URLReturn   string `json:"url_return,omitempty"`
	URLSuccess  string `json:"url_success,omitempty"`
	URLCallback string `json:"url_callback,omitempty"`
	Lifetime    int    `json:"lifetime,omitempty"`
}

type Invoice struct {
	UUID          string `json:"uuid"`
	OrderID       string `json:"order_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	IsFinal       bool   `json:"is_final"`
}

type invoiceResponse struct {
	State   int                 `json:"state"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
	Result  *Invoice            `json:"result"`
}

// CreateInvoice opens a hosted crypto payment page for an order.
func (c *Client) CreateInvoice(ctx context.Context, invoice InvoiceRequest) (*Invoice, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if invoice.Lifetime == 0 {
		invoice.Lifetime = invoiceLifetime
	}

	body, err := json.Marshal(invoice)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("merchant", c.merchantID)
	req.Header.Set("sign", Sign(body, c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	closeErr := resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("failed to read heleket response: %w", readErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close heleket response body: %w", closeErr)
	}

	var result invoiceResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("heleket API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if resp.StatusCode != http.StatusOK || result.State != 0 {
		return nil, fmt.Errorf("heleket error (status %d): %s", resp.StatusCode, describeErrors(result))
	}
	if result.Result == nil || result.Result.URL == "" {
		return nil, fmt.Errorf("heleket response has no payment url")
	}

	return result.Result, nil
}

func describeErrors(result invoiceResponse) string {
	message := strings.TrimSpace(result.Message)
	for field, messages := range result.Errors {
		message += fmt.Sprintf("; %s: %s", field, strings.Join(messages, ", "))
	}
	if message == "" {
		return "unknown error"
	}
	return strings.TrimPrefix(message, "; ")
}
