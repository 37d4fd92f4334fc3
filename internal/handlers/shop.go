package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gitshopapp/storefront/internal/cart"
	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/ui/views"
)

func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.Products()
	viewProducts := make([]views.Product, 0, len(products))
	for _, product := range products {
		viewProducts = append(viewProducts, views.Product{
			SKU:         product.SKU,
			Name:        product.Name,
			Description: product.Description,
			Category:    product.Category,
			Price:       h.pricer.Format(product.Price),
			Sizes:       product.Sizes,
		})
	}

	h.render(w, r, http.StatusOK, views.HomePage(views.HomeData{
		Page:     h.pageData(r, "", nil),
		Currency: h.catalog.Currency(),
		Products: viewProducts,
	}))
}

func (h *Handlers) Cart(w http.ResponseWriter, r *http.Request) {
	h.renderCart(w, r, http.StatusOK, "")
}

func (h *Handlers) CartAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	owner := h.cartOwner(r)
	if owner == "" {
		h.renderError(w, r, http.StatusBadRequest, "Your session has expired. Please reload the page.")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderCart(w, r, http.StatusBadRequest, "The request could not be read.")
		return
	}

	quantity := 1
	if raw := strings.TrimSpace(r.PostFormValue("quantity")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.renderCart(w, r, http.StatusBadRequest, "Quantity must be a number.")
			return
		}
		quantity = parsed
	}

	sku := strings.TrimSpace(r.PostFormValue("sku"))
	size := strings.TrimSpace(r.PostFormValue("size"))
	if err := h.carts.Add(ctx, owner, sku, size, quantity); err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			h.renderCart(w, r, http.StatusBadRequest, "Quantity must be between 1 and 99.")
		case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, catalog.ErrProductInactive):
			h.renderCart(w, r, http.StatusBadRequest, "That product is no longer available.")
		case errors.Is(err, catalog.ErrInvalidSize):
			h.renderCart(w, r, http.StatusBadRequest, "Please choose an available size.")
		default:
			logger.Error("failed to add to cart", "error", err, "sku", sku)
			h.renderCart(w, r, http.StatusInternalServerError, "We could not update your cart. Please try again.")
		}
		return
	}

	logger.Info("added to cart", "sku", sku, "size", size, "quantity", quantity)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handlers) CartRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner := h.cartOwner(r)
	if owner == "" {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderCart(w, r, http.StatusBadRequest, "The request could not be read.")
		return
	}

	sku := strings.TrimSpace(r.PostFormValue("sku"))
	size := strings.TrimSpace(r.PostFormValue("size"))
	if err := h.carts.Remove(ctx, owner, sku, size); err != nil {
		h.loggerFromContext(ctx).Error("failed to remove from cart", "error", err, "sku", sku)
		h.renderCart(w, r, http.StatusInternalServerError, "We could not update your cart. Please try again.")
		return
	}

	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handlers) renderCart(w http.ResponseWriter, r *http.Request, status int, message string) {
	ctx := r.Context()

	current := &cart.Cart{Currency: h.catalog.Currency()}
	if owner := h.cartOwner(r); owner != "" {
		loaded, err := h.carts.Get(ctx, owner)
		if err != nil {
			h.loggerFromContext(ctx).Error("failed to load cart", "error", err)
			h.renderError(w, r, http.StatusInternalServerError, "We could not load your cart.")
			return
		}
		current = loaded
	}

	h.render(w, r, status, views.CartPage(views.CartData{
		Page:     h.pageData(r, "Cart", current),
		Currency: current.Currency,
		Lines:    h.cartLines(current),
		Subtotal: h.pricer.Format(current.Subtotal()),
		Error:    message,
	}))
}
