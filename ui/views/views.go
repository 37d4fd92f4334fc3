// Package views renders the storefront pages and htmx fragments as templ
// components.
package views

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var esc = templ.EscapeString[string]

// markup threads the first write error through a component body, so the
// body can be written top to bottom without checking every write.
type markup struct {
	w   io.Writer
	err error
}

func (m *markup) raw(parts ...string) {
	for _, part := range parts {
		if m.err != nil {
			return
		}
		_, m.err = io.WriteString(m.w, part)
	}
}

func (m *markup) render(ctx context.Context, c templ.Component) {
	if m.err == nil {
		m.err = c.Render(ctx, m.w)
	}
}

func component(body func(ctx context.Context, m *markup)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{w: w}
		body(ctx, m)
		return m.err
	})
}

func layout(page Page, content templ.Component) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		store := page.StoreName
		if store == "" {
			store = "Storefront"
		}
		title := store
		if page.Title != "" {
			title = page.Title + " | " + store
		}

		m.raw(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>`, esc(title), `</title>
  <link rel="stylesheet" href="/assets/css/app.css">
  <script src="https://unpkg.com/htmx.org@2.0.4" defer></script>
</head>
<body class="bg-gray-50 text-gray-900">
  <header class="border-b bg-white">
    <nav class="mx-auto flex max-w-4xl items-center justify-between px-4 py-3">
      <a href="/" class="font-semibold">`, esc(store), `</a>
      <div class="flex items-center gap-4 text-sm">`)
		if page.UserName != "" {
			m.raw(`<span class="text-gray-600">`, esc(page.UserName), `</span>`)
		}
		m.raw(`<a href="/cart" id="cart-link">Cart (`, strconv.Itoa(page.CartCount), `)</a>
      </div>
    </nav>
  </header>
  <main id="main" class="mx-auto max-w-4xl px-4 py-8">
`)
		m.render(ctx, content)
		m.raw(`
  </main>
</body>
</html>
`)
	})
}

// lineLabel renders "Name - Size × Qty" for summaries.
func lineLabel(m *markup, line Line) {
	m.raw(`<span>`, esc(line.Name))
	if line.Size != "" {
		m.raw(` - `, esc(line.Size))
	}
	m.raw(` &times; `, strconv.Itoa(line.Quantity), `</span>`)
}

func amount(value, currency string) string {
	return esc(value) + " " + esc(strings.ToUpper(currency))
}

func alert(m *markup, class, message string) {
	if message != "" {
		m.raw(`<p class="`, class, `" role="alert">`, esc(message), `</p>`)
	}
}
