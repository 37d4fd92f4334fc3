package views

import (
	"github.com/a-h/templ"

	"github.com/gitshopapp/storefront/ui/components/checkout"
)

// Page carries the layout fields shared by every full page.
type Page struct {
	Title     string
	StoreName string
	CartCount int
	UserName  string
}

type Product struct {
	SKU         string
	Name        string
	Description string
	Category    string
	Price       string
	Sizes       []string
}

type HomeData struct {
	Page
	Currency string
	Products []Product
	Notice   string
}

type Line struct {
	SKU       string
	Name      string
	Size      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

type CartData struct {
	Page
	Currency string
	Lines    []Line
	Subtotal string
	Error    string
}

type ProviderOption struct {
	Value string
	Label string
}

// CheckoutData backs both the full checkout page and its form fragment.
type CheckoutData struct {
	Page
	Currency         string
	Lines            []Line
	Subtotal         string
	Values           map[string]string
	Errors           map[string]string
	Providers        []ProviderOption
	SelectedProvider string
	Message          string
	ContactFields    []checkout.Field
	ShippingFields   []checkout.Field
}

type OrderData struct {
	Page
	OrderID      string
	CustomerName string
	Email        string
	Status       string
	Provider     string
	Currency     string
	Total        string
	Lines        []Line
}

type ErrorData struct {
	Page
	Message string
}

func HomePage(data HomeData) templ.Component {
	return layout(data.Page, homeContent(data))
}

func CartPage(data CartData) templ.Component {
	return layout(data.Page, cartContent(data))
}

func CheckoutPage(data CheckoutData) templ.Component {
	data = withFields(data)
	return layout(data.Page, checkoutContent(data))
}

// CheckoutForm renders only the form, for htmx swaps after a failed submit.
func CheckoutForm(data CheckoutData) templ.Component {
	return checkoutForm(withFields(data))
}

func EmptyCartPage(data Page) templ.Component {
	return layout(data, emptyCartContent())
}

func PaymentSuccessPage(data OrderData) templ.Component {
	return layout(data.Page, paymentSuccess(data))
}

func PaymentSuccess(data OrderData) templ.Component {
	return paymentSuccess(data)
}

func PaymentCancelPage(data OrderData) templ.Component {
	return layout(data.Page, paymentCancel(data))
}

func PaymentCancel(data OrderData) templ.Component {
	return paymentCancel(data)
}

func ErrorPage(data ErrorData) templ.Component {
	return layout(data.Page, errorContent(data))
}

func NotFoundPage() templ.Component {
	return layout(Page{Title: "Page not found"}, notFoundContent())
}

func withFields(data CheckoutData) CheckoutData {
	if data.ContactFields == nil {
		data.ContactFields = checkout.ContactFields()
	}
	if data.ShippingFields == nil {
		data.ShippingFields = checkout.ShippingFields()
	}
	if data.Values == nil {
		data.Values = map[string]string{}
	}
	if data.Errors == nil {
		data.Errors = map[string]string{}
	}
	return data
}
