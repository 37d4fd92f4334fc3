package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/gitshopapp/storefront/internal/models"
)

// OrderInfo contains all the information needed for order email templates
type OrderInfo struct {
	OrderID       string
	StoreName     string
	StoreURL      string
	CustomerName  string
	CustomerEmail string
	OrderDate     time.Time
	Items         []OrderItem
	Total         string
	Currency      string
	Provider      string
	Address       []string
}

type OrderItem struct {
	Name       string
	Quantity   int
	UnitPrice  string
	TotalPrice string
}

// NewOrderInfo flattens an order into template data.
func NewOrderInfo(order *models.Order, storeName, storeURL string) *OrderInfo {
	info := &OrderInfo{
		OrderID:       order.ID.String(),
		StoreName:     storeName,
		StoreURL:      storeURL,
		CustomerName:  order.CustomerName(),
		CustomerEmail: order.Email,
		OrderDate:     order.CreatedAt,
		Total:         order.TotalPrice.StringFixed(2),
		Currency:      order.Currency,
		Provider:      order.PaymentProvider.Label(),
	}
	for _, line := range []string{
		order.Company,
		order.Address1,
		order.Address2,
		joinNonEmpty(order.PostalCode, order.City),
		joinNonEmpty(order.Province, order.Country),
	} {
		if line != "" {
			info.Address = append(info.Address, line)
		}
	}
	for _, item := range order.Items {
		info.Items = append(info.Items, OrderItem{
			Name:       item.DisplayName(),
			Quantity:   item.Quantity,
			UnitPrice:  item.Price.StringFixed(2),
			TotalPrice: item.LineTotal().StringFixed(2),
		})
	}
	return info
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

const (
	TemplateOrderConfirmation = "order_confirmation"
	TemplateOrderCancelled    = "order_cancelled"
)

var subjects = map[string]string{
	TemplateOrderConfirmation: "Order confirmed - %s",
	TemplateOrderCancelled:    "Order cancelled - %s",
}

// Renderer provides methods to render email templates
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := map[string]any{
		"formatDate": func(t time.Time) string {
			return t.Format("January 2, 2006")
		},
	}

	html := htmltemplate.New("email").Funcs(funcs)
	text := texttemplate.New("email").Funcs(funcs)
	for name, body := range map[string][2]string{
		TemplateOrderConfirmation: {orderConfirmationHTML, orderConfirmationText},
		TemplateOrderCancelled:    {orderCancelledHTML, orderCancelledText},
	} {
		if _, err := html.New(name).Parse(body[0]); err != nil {
			return nil, fmt.Errorf("failed to parse HTML template %s: %w", name, err)
		}
		if _, err := text.New(name).Parse(body[1]); err != nil {
			return nil, fmt.Errorf("failed to parse text template %s: %w", name, err)
		}
	}

	return &Renderer{html: html, text: text}, nil
}

// Render renders an email template with the given data
func (r *Renderer) Render(templateName string, data *OrderInfo) (*Email, error) {
	subject, ok := subjects[templateName]
	if !ok {
		return nil, fmt.Errorf("unknown email template %q", templateName)
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := r.html.ExecuteTemplate(&htmlBuf, templateName, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}
	if err := r.text.ExecuteTemplate(&textBuf, templateName, data); err != nil {
		return nil, fmt.Errorf("failed to render text template: %w", err)
	}

	return &Email{
		To:      data.CustomerEmail,
		Subject: fmt.Sprintf(subject, data.StoreName),
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
		Tags: map[string]string{
			"template": templateName,
			"order_id": data.OrderID,
		},
	}, nil
}

const orderConfirmationText = `Hi {{.CustomerName}},

Thank you for your order at {{.StoreName}}. We received your payment and are preparing your order.

Order: {{.OrderID}}
Date: {{formatDate .OrderDate}}
Paid with: {{.Provider}}

{{range .Items}}- {{.Name}} x{{.Quantity}} @ {{.UnitPrice}} = {{.TotalPrice}}
{{end}}
Total: {{.Total}} {{.Currency}}
{{if .Address}}
Shipping to:
{{range .Address}}{{.}}
{{end}}{{end}}
{{.StoreURL}}
`

const orderConfirmationHTML = `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; color: #111827;">
  <h1 style="font-size: 20px;">Thanks for your order, {{.CustomerName}}!</h1>
  <p>We received your payment and are preparing your order.</p>
  <p><strong>Order:</strong> {{.OrderID}}<br><strong>Date:</strong> {{formatDate .OrderDate}}<br><strong>Paid with:</strong> {{.Provider}}</p>
  <table style="border-collapse: collapse; width: 100%;">
    {{range .Items}}
    <tr>
      <td style="padding: 4px 0;">{{.Name}}</td>
      <td style="padding: 4px 0; text-align: center;">{{.Quantity}}</td>
      <td style="padding: 4px 0; text-align: right;">{{.TotalPrice}}</td>
    </tr>
    {{end}}
    <tr>
      <td colspan="2" style="padding-top: 8px;"><strong>Total</strong></td>
      <td style="padding-top: 8px; text-align: right;"><strong>{{.Total}} {{.Currency}}</strong></td>
    </tr>
  </table>
  {{if .Address}}<p><strong>Shipping to:</strong><br>{{range .Address}}{{.}}<br>{{end}}</p>{{end}}
  <p><a href="{{.StoreURL}}">{{.StoreName}}</a></p>
</body>
</html>
`

const orderCancelledText = `Hi {{.CustomerName}},

Your order {{.OrderID}} at {{.StoreName}} was cancelled before payment completed. Your cart is still waiting for you:

{{.StoreURL}}/cart
`

const orderCancelledHTML = `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; color: #111827;">
  <h1 style="font-size: 20px;">Your order was cancelled</h1>
  <p>Hi {{.CustomerName}}, order {{.OrderID}} was cancelled before payment completed.</p>
  <p><a href="{{.StoreURL}}/cart">Return to your cart</a></p>
</body>
</html>
`
