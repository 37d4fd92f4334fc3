package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gitshopapp/storefront/internal/cart"
	"github.com/gitshopapp/storefront/internal/identity"
	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/ui/components/checkout"
	"github.com/gitshopapp/storefront/ui/views"
)

const paymentProviderField = "payment_provider"

func (h *Handlers) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current, ok := h.loadCheckoutCart(w, r)
	if !ok {
		return
	}
	if current.IsEmpty() {
		h.renderEmptyCart(w, r, current)
		return
	}

	values := map[string]string{}
	if id := identity.FromContext(ctx); id != nil {
		values["first_name"] = id.FirstName
		values["last_name"] = id.LastName
		values["email"] = id.Email
	}

	data := h.checkoutData(r, current, values)
	if isHTMXRequest(r) {
		h.render(w, r, http.StatusOK, views.CheckoutForm(data))
		return
	}
	h.render(w, r, http.StatusOK, views.CheckoutPage(data))
}

func (h *Handlers) CheckoutSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "The checkout form could not be read.")
		return
	}

	values := submittedValues(r)
	input := services.SubmitInput{
		Owner:           h.cartOwner(r),
		Form:            formFromValues(values),
		PaymentProvider: values[paymentProviderField],
		BaseURL:         h.config.BaseURL,
	}
	if id := identity.FromContext(ctx); id != nil {
		input.UserID = id.UserID
		input.UserEmail = id.Email
	}

	if input.Owner == "" {
		h.redirectEmptyCart(w, r)
		return
	}

	result, err := h.checkout.Submit(ctx, input)
	if err == nil {
		logger.Info("redirecting to payment", "order_id", result.Order.ID, "provider", result.Order.PaymentProvider)
		if isHTMXRequest(r) {
			w.Header().Set("HX-Redirect", result.RedirectURL)
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, result.RedirectURL, http.StatusSeeOther)
		return
	}

	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		h.redirectEmptyCart(w, r)
	case errors.As(err, &validationErr):
		h.renderCheckoutFailure(w, r, http.StatusUnprocessableEntity, values, validationErr.Fields, "Please correct the highlighted fields.")
	case errors.Is(err, services.ErrInvalidPaymentProvider):
		h.renderCheckoutFailure(w, r, http.StatusUnprocessableEntity, values, map[string]string{
			paymentProviderField: "Choose a payment method.",
		}, "Please choose how you would like to pay.")
	case errors.Is(err, services.ErrPaymentSession):
		logger.Error("payment session failed", "error", err, "provider", input.PaymentProvider)
		h.renderCheckoutFailure(w, r, http.StatusBadGateway, values, nil, "We could not start the payment. Please try again.")
	default:
		logger.Error("checkout failed", "error", err)
		h.renderCheckoutFailure(w, r, http.StatusInternalServerError, values, nil, "Something went wrong while placing your order. Please try again.")
	}
}

// renderCheckoutFailure redisplays the submitted form. htmx requests get the
// form fragment with 200 so the swap happens.
func (h *Handlers) renderCheckoutFailure(w http.ResponseWriter, r *http.Request, status int, values, fieldErrors map[string]string, message string) {
	current, ok := h.loadCheckoutCart(w, r)
	if !ok {
		return
	}

	data := h.checkoutData(r, current, values)
	data.Errors = fieldErrors
	data.Message = message

	if isHTMXRequest(r) {
		h.render(w, r, http.StatusOK, views.CheckoutForm(data))
		return
	}
	h.render(w, r, status, views.CheckoutPage(data))
}

func (h *Handlers) redirectEmptyCart(w http.ResponseWriter, r *http.Request) {
	if isHTMXRequest(r) {
		h.render(w, r, http.StatusOK, views.EmptyCart())
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handlers) renderEmptyCart(w http.ResponseWriter, r *http.Request, current *cart.Cart) {
	if isHTMXRequest(r) {
		h.render(w, r, http.StatusOK, views.EmptyCart())
		return
	}
	h.render(w, r, http.StatusOK, views.EmptyCartPage(h.pageData(r, "Checkout", current)))
}

func (h *Handlers) loadCheckoutCart(w http.ResponseWriter, r *http.Request) (*cart.Cart, bool) {
	ctx := r.Context()

	owner := h.cartOwner(r)
	if owner == "" {
		return &cart.Cart{Currency: h.catalog.Currency()}, true
	}
	current, err := h.carts.Get(ctx, owner)
	if err != nil {
		h.loggerFromContext(ctx).Error("failed to load cart", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "We could not load your cart.")
		return nil, false
	}
	return current, true
}

func (h *Handlers) checkoutData(r *http.Request, current *cart.Cart, values map[string]string) views.CheckoutData {
	providers := h.checkout.Providers()
	options := make([]views.ProviderOption, 0, len(providers))
	for _, provider := range providers {
		options = append(options, views.ProviderOption{Value: string(provider), Label: provider.Label()})
	}

	selected := values[paymentProviderField]
	if selected == "" && len(options) > 0 {
		selected = options[0].Value
	}

	return views.CheckoutData{
		Page:             h.pageData(r, "Checkout", current),
		Currency:         current.Currency,
		Lines:            h.cartLines(current),
		Subtotal:         h.pricer.Format(current.Subtotal()),
		Values:           values,
		Providers:        options,
		SelectedProvider: selected,
	}
}

func submittedValues(r *http.Request) map[string]string {
	names := append(checkout.FieldNames(), paymentProviderField)
	values := make(map[string]string, len(names))
	for _, name := range names {
		values[name] = strings.TrimSpace(r.PostFormValue(name))
	}
	return values
}

func formFromValues(values map[string]string) services.CheckoutForm {
	return services.CheckoutForm{
		FirstName:           values["first_name"],
		LastName:            values["last_name"],
		Email:               values["email"],
		Company:             values["company"],
		Address1:            values["address1"],
		Address2:            values["address2"],
		City:                values["city"],
		Country:             values["country"],
		Province:            values["province"],
		PostalCode:          values["postal_code"],
		Phone:               values["phone"],
		SpecialInstructions: values["special_instructions"],
	}
}
