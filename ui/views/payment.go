package views

import (
	"context"

	"github.com/a-h/templ"
)

func paymentSuccess(data OrderData) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<div id="payment-result" class="rounded-md border bg-white p-6">
  <h1 class="mb-2 text-2xl font-semibold">Thank you, `, esc(data.CustomerName), `!</h1>
  <p class="text-gray-600">Your payment is being processed. A confirmation will be sent to `, esc(data.Email), `.</p>
  <dl class="mt-4 grid grid-cols-2 gap-2 text-sm">
    <dt class="text-gray-600">Order</dt><dd>`, esc(data.OrderID), `</dd>
    <dt class="text-gray-600">Status</dt><dd>`, esc(data.Status), `</dd>
    <dt class="text-gray-600">Payment</dt><dd>`, esc(data.Provider), `</dd>
  </dl>
  <ul class="mt-4 text-sm">`)
		for _, line := range data.Lines {
			m.raw(`<li class="flex justify-between border-t py-1">`)
			lineLabel(m, line)
			m.raw(`<span>`, esc(line.LineTotal), `</span></li>`)
		}
		m.raw(`</ul>
  <p class="mt-3 text-right font-semibold">Total: `, amount(data.Total, data.Currency), `</p>
  <p class="mt-6"><a href="/" class="underline">Continue shopping</a></p>
</div>`)
	})
}

func paymentCancel(data OrderData) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<div id="payment-result" class="rounded-md border bg-white p-6">
  <h1 class="mb-2 text-2xl font-semibold">Payment cancelled</h1>
  <p class="text-gray-600">Order `, esc(data.OrderID), ` was cancelled and you have not been charged.</p>
  <p class="mt-6"><a href="/cart" class="underline">Return to cart</a></p>
</div>`)
	})
}

func errorContent(data ErrorData) templ.Component {
	return component(func(_ context.Context, m *markup) {
		message := data.Message
		if message == "" {
			message = "Please try again in a moment."
		}
		m.raw(`<div class="rounded-md border bg-white p-6">
  <h1 class="mb-2 text-2xl font-semibold">Something went wrong</h1>
  <p class="text-gray-600">`, esc(message), `</p>
  <p class="mt-6"><a href="/" class="underline">Back to the shop</a></p>
</div>`)
	})
}

func notFoundContent() templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<div class="rounded-md border bg-white p-6 text-center">
  <h1 class="mb-2 text-2xl font-semibold">Page not found</h1>
  <p class="text-gray-600">The page you are looking for does not exist.</p>
  <p class="mt-6"><a href="/" class="underline">Back to the shop</a></p>
</div>`)
	})
}
