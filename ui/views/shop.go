package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
)

const maxQuantityOption = 5

func homeContent(data HomeData) templ.Component {
	return component(func(_ context.Context, m *markup) {
		heading := data.StoreName
		if heading == "" {
			heading = "Shop"
		}
		m.raw(`<h1 class="mb-6 text-2xl font-semibold">`, esc(heading), `</h1>`)
		if data.Notice != "" {
			m.raw(`<p class="mb-4 rounded-md bg-green-50 px-3 py-2 text-sm">`, esc(data.Notice), `</p>`)
		}

		if len(data.Products) == 0 {
			m.raw(`<p class="text-gray-600">No products are available right now.</p>`)
		} else {
			m.raw(`<ul class="grid gap-4">`)
			for _, product := range data.Products {
				productCard(m, product, data.Currency)
			}
			m.raw(`</ul>`)
		}
		m.raw(`<p class="mt-8"><a href="/cart" class="underline">View cart</a></p>`)
	})
}

func productCard(m *markup, product Product, currency string) {
	m.raw(`<li class="rounded-md border bg-white p-4">
  <div class="flex items-center justify-between">
    <h2 class="font-semibold">`, esc(product.Name), `</h2>
    <span>`, amount(product.Price, currency), `</span>
  </div>`)
	if product.Description != "" {
		m.raw(`<p class="mt-1 text-sm text-gray-600">`, esc(product.Description), `</p>`)
	}
	m.raw(`<form method="post" action="/cart/add" class="mt-3 flex items-center gap-2">
    <input type="hidden" name="sku" value="`, esc(product.SKU), `">`)
	if len(product.Sizes) > 0 {
		m.raw(`<select name="size" class="rounded-md border px-2 py-1 text-sm" required>`)
		for _, size := range product.Sizes {
			m.raw(`<option value="`, esc(size), `">`, esc(size), `</option>`)
		}
		m.raw(`</select>`)
	}
	m.raw(`<select name="quantity" class="rounded-md border px-2 py-1 text-sm">`)
	for i := 1; i <= maxQuantityOption; i++ {
		n := strconv.Itoa(i)
		m.raw(`<option value="`, n, `">`, n, `</option>`)
	}
	m.raw(`</select>
    <button type="submit" class="rounded-md bg-gray-900 px-3 py-1 text-sm text-white">Add to cart</button>
  </form>
</li>`)
}

func cartContent(data CartData) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<h1 class="mb-6 text-2xl font-semibold">Your cart</h1>`)
		alert(m, "mb-4 rounded-md bg-red-50 px-3 py-2 text-sm", data.Error)

		if len(data.Lines) == 0 {
			m.raw(`<p class="text-gray-600">Your cart is empty.</p>
<p class="mt-4"><a href="/" class="underline">Continue shopping</a></p>`)
			return
		}

		m.raw(`<table class="w-full text-sm">
  <thead>
    <tr class="text-left"><th>Product</th><th>Size</th><th>Qty</th><th>Price</th><th>Total</th><th></th></tr>
  </thead>
  <tbody>`)
		for _, line := range data.Lines {
			m.raw(`<tr class="border-t">
      <td>`, esc(line.Name), `</td>
      <td>`, esc(line.Size), `</td>
      <td>`, strconv.Itoa(line.Quantity), `</td>
      <td>`, esc(line.UnitPrice), `</td>
      <td>`, esc(line.LineTotal), `</td>
      <td>
        <form method="post" action="/cart/remove">
          <input type="hidden" name="sku" value="`, esc(line.SKU), `">
          <input type="hidden" name="size" value="`, esc(line.Size), `">
          <button type="submit" class="underline">Remove</button>
        </form>
      </td>
    </tr>`)
		}
		m.raw(`</tbody>
</table>
<p class="mt-4 text-right font-semibold">Subtotal: `, amount(data.Subtotal, data.Currency), `</p>
<p class="mt-6 text-right">
  <a href="/orders/checkout" class="rounded-md bg-gray-900 px-4 py-2 text-white">Checkout</a>
</p>`)
	})
}

// EmptyCart replaces the checkout form when there is nothing to pay for.
func EmptyCart() templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<div id="checkout" class="rounded-md border bg-white p-6 text-center">
  <p class="text-gray-600">Your cart is empty. Add something before checking out.</p>
  <p class="mt-4"><a href="/" class="underline">Continue shopping</a></p>
</div>`)
	})
}

func emptyCartContent() templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw(`<h1 class="mb-6 text-2xl font-semibold">Checkout</h1>
`)
		m.render(ctx, EmptyCart())
	})
}
