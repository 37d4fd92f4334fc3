package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/gitshopapp/storefront/ui/components/checkout"
)

func checkoutContent(data CheckoutData) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw(`<h1 class="mb-6 text-2xl font-semibold">Checkout</h1>
<div class="grid gap-8 md:grid-cols-3">
  <section class="md:col-span-2">
`)
		m.render(ctx, CheckoutForm(data))
		m.raw(`
  </section>
  <aside class="rounded-md border bg-white p-4 text-sm">
    <h2 class="mb-3 font-semibold">Order summary</h2>
    <ul>`)
		for _, line := range data.Lines {
			m.raw(`<li class="flex justify-between py-1">`)
			lineLabel(m, line)
			m.raw(`<span>`, esc(line.LineTotal), `</span></li>`)
		}
		m.raw(`</ul>
    <p class="mt-3 flex justify-between border-t pt-3 font-semibold">
      <span>Total</span><span>`, amount(data.Subtotal, data.Currency), `</span>
    </p>
  </aside>
</div>`)
	})
}

func checkoutForm(data CheckoutData) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<form id="checkout" method="post" action="/orders/checkout" hx-post="/orders/checkout" hx-target="this" hx-swap="outerHTML" novalidate>`)
		alert(m, "mb-4 rounded-md bg-red-50 px-3 py-2 text-sm", data.Message)

		fieldGroup(m, "Contact", data.ContactFields, data)
		fieldGroup(m, "Shipping address", data.ShippingFields, data)

		notesError := data.Errors["special_instructions"]
		m.raw(`<fieldset class="mb-6">
    <label for="special_instructions" class="mb-1 block text-sm">Order notes</label>
    <textarea id="special_instructions" name="special_instructions" maxlength="1000" rows="3" class="`,
			esc(checkout.InputClass(notesError != "")), `">`, esc(data.Values["special_instructions"]), `</textarea>`)
		fieldError(m, notesError)
		m.raw(`</fieldset>`)

		m.raw(`<fieldset class="mb-6">
    <legend class="mb-2 font-semibold">Payment</legend>`)
		for _, provider := range data.Providers {
			checked := ""
			if provider.Value == data.SelectedProvider {
				checked = " checked"
			}
			m.raw(`<label class="mr-4 inline-flex items-center gap-2 text-sm">
      <input type="radio" name="payment_provider" value="`, esc(provider.Value), `"`, checked, ` required>
      `, esc(provider.Label), `
    </label>`)
		}
		fieldError(m, data.Errors["payment_provider"])
		m.raw(`</fieldset>
  <button type="submit" class="rounded-md bg-gray-900 px-4 py-2 text-white">Continue to payment</button>
</form>`)
	})
}

func fieldGroup(m *markup, legend string, fields []checkout.Field, data CheckoutData) {
	m.raw(`<fieldset class="mb-6">
    <legend class="mb-2 font-semibold">`, esc(legend), `</legend>
    <div class="grid grid-cols-2 gap-3">`)
	for _, field := range fields {
		checkoutField(m, field, data.Values[field.Name], data.Errors[field.Name])
	}
	m.raw(`</div>
  </fieldset>`)
}

func checkoutField(m *markup, field checkout.Field, value, message string) {
	name := esc(field.Name)
	m.raw(`<div class="`, esc(checkout.CellClass(field)), `">
  <label for="`, name, `" class="mb-1 block text-sm">`, esc(field.Label))
	if field.Required {
		m.raw(` *`)
	}
	m.raw(`</label>
  <input id="`, name, `" name="`, name, `" type="`, esc(field.Type), `" value="`, esc(value),
		`" maxlength="`, strconv.Itoa(field.MaxLength), `"`)
	if field.Autocomplete != "" {
		m.raw(` autocomplete="`, esc(field.Autocomplete), `"`)
	}
	if field.Required {
		m.raw(` required`)
	}
	m.raw(` class="`, esc(checkout.InputClass(message != "")), `">`)
	fieldError(m, message)
	m.raw(`</div>`)
}

func fieldError(m *markup, message string) {
	if message != "" {
		m.raw(`<p class="mt-1 text-xs text-red-600">`, esc(message), `</p>`)
	}
}
