package handlers

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/gitshopapp/storefront/internal/cart"
	"github.com/gitshopapp/storefront/internal/identity"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/ui/views"
)

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to render view", "error", err)
	}
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, views.ErrorPage(views.ErrorData{
		Page:    h.pageData(r, "Error", nil),
		Message: message,
	}))
}

func (h *Handlers) renderNotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, views.NotFoundPage())
}

// pageData fills the layout fields. current may be nil, in which case the
// cart is loaded for the item count.
func (h *Handlers) pageData(r *http.Request, title string, current *cart.Cart) views.Page {
	page := views.Page{
		Title:     title,
		StoreName: h.catalog.Name(),
	}

	if id := identity.FromContext(r.Context()); id != nil {
		page.UserName = strings.TrimSpace(id.FirstName + " " + id.LastName)
		if page.UserName == "" {
			page.UserName = id.Email
		}
	}

	if current == nil {
		if owner := h.cartOwner(r); owner != "" {
			loaded, err := h.carts.Get(r.Context(), owner)
			if err != nil {
				h.loggerFromContext(r.Context()).Warn("failed to load cart for layout", "error", err)
			}
			current = loaded
		}
	}
	page.CartCount = current.TotalItems()

	return page
}

func (h *Handlers) cartLines(current *cart.Cart) []views.Line {
	if current == nil {
		return nil
	}
	lines := make([]views.Line, 0, len(current.Items))
	for _, item := range current.Items {
		lines = append(lines, views.Line{
			SKU:       item.ProductSKU,
			Name:      item.ProductName,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: h.pricer.Format(item.UnitPrice),
			LineTotal: h.pricer.Format(item.LineTotal()),
		})
	}
	return lines
}

func (h *Handlers) orderData(r *http.Request, title string, order *models.Order) views.OrderData {
	lines := make([]views.Line, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, views.Line{
			SKU:       item.ProductSKU,
			Name:      item.ProductName,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: h.pricer.Format(item.Price),
			LineTotal: h.pricer.Format(item.LineTotal()),
		})
	}

	return views.OrderData{
		Page:         h.pageData(r, title, nil),
		OrderID:      order.ID.String(),
		CustomerName: order.CustomerName(),
		Email:        order.Email,
		Status:       order.Status.Label(),
		Provider:     order.PaymentProvider.Label(),
		Currency:     order.Currency,
		Total:        h.pricer.Format(order.TotalPrice),
		Lines:        lines,
	}
}
