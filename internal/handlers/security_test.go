package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gitshopapp/storefront/internal/config"
)

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireSameOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  string
		origin  string
		referer string
		want    int
	}{
		{
			name:   "matching origin",
			method: http.MethodPost,
			origin: "https://shop.example.com",
			want:   http.StatusNoContent,
		},
		{
			name:    "matching referer",
			method:  http.MethodPost,
			referer: "https://shop.example.com/orders/checkout",
			want:    http.StatusNoContent,
		},
		{
			name:   "missing origin and referer",
			method: http.MethodPost,
			want:   http.StatusForbidden,
		},
		{
			name:   "cross origin",
			method: http.MethodPost,
			origin: "https://attacker.example",
			want:   http.StatusForbidden,
		},
		{
			name:    "cross origin referer",
			method:  http.MethodPost,
			origin:  "https://shop.example.com",
			referer: "https://attacker.example/form",
			want:    http.StatusForbidden,
		},
		{
			name:   "read only method",
			method: http.MethodGet,
			want:   http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := &Handlers{
				config: &config.Config{BaseURL: "https://shop.example.com"},
				logger: discardLogger(),
			}

			req := httptest.NewRequest(tt.method, "https://shop.example.com/orders/checkout", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rec := httptest.NewRecorder()

			h.RequireSameOrigin(noContent()).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	h := &Handlers{}
	rec := httptest.NewRecorder()
	h.SecurityHeaders(noContent()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected X-Frame-Options DENY, got %q", got)
	}
	if got := rec.Header().Get("Content-Security-Policy"); !strings.Contains(got, "frame-ancestors 'none'") {
		t.Fatalf("unexpected content security policy %q", got)
	}
}

func TestSecureCookiesFromConfig(t *testing.T) {
	t.Parallel()

	if !SecureCookiesFromConfig(&config.Config{BaseURL: "https://shop.example.com"}) {
		t.Fatalf("expected secure cookies for https base url")
	}
	if SecureCookiesFromConfig(&config.Config{BaseURL: "http://localhost:8080"}) {
		t.Fatalf("expected insecure cookies for local http")
	}
	if SecureCookiesFromConfig(nil) {
		t.Fatalf("expected insecure cookies without config")
	}
}

func TestSameOriginViolationReasons(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{BaseURL: "https://shop.example.com"}
	tests := []struct {
		name    string
		host    string
		origin  string
		referer string
		want    string
	}{
		{name: "allowed by base url", host: "internal:8080", origin: "https://SHOP.example.com", want: ""},
		{name: "allowed by request host", host: "localhost:8080", origin: "http://localhost:8080", want: ""},
		{name: "missing headers", host: "shop.example.com", want: "missing_origin_and_referer"},
		{name: "opaque origin", host: "shop.example.com", origin: "null", want: "invalid_origin"},
		{name: "foreign referer", host: "shop.example.com", referer: "https://evil.example/", want: "invalid_referer"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/cart/add", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}

			if got := sameOriginViolation(cfg, req); got != tt.want {
				t.Fatalf("expected reason %q, got %q", tt.want, got)
			}
		})
	}
}
