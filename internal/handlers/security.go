package handlers

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gitshopapp/storefront/internal/config"
	"github.com/gitshopapp/storefront/internal/observability"
)

// htmx is loaded from unpkg and injects its indicator styles inline.
const contentSecurityPolicy = "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'; base-uri 'self'"

var securityHeaders = map[string]string{
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "DENY",
	"Referrer-Policy":              "strict-origin-when-cross-origin",
	"Cross-Origin-Opener-Policy":   "same-origin",
	"Cross-Origin-Resource-Policy": "same-origin",
	"Content-Security-Policy":      contentSecurityPolicy,
}

func (h *Handlers) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		for name, value := range securityHeaders {
			headers.Set(name, value)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSameOrigin rejects form posts and other writes whose Origin or
// Referer points anywhere but this shop.
func (h *Handlers) RequireSameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		reason := sameOriginViolation(h.config, r)
		if reason == "" {
			next.ServeHTTP(w, r)
			return
		}

		observability.Count(r.Context(), "security.same_origin.blocked", "reason", reason)
		h.loggerFromContext(r.Context()).Warn("blocked cross-origin request",
			"reason", reason,
			"origin", r.Header.Get("Origin"),
			"referer", r.Header.Get("Referer"),
		)
		http.Error(w, "Forbidden", http.StatusForbidden)
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

// sameOriginViolation returns an empty string when the request is allowed,
// or a short reason label otherwise.
func sameOriginViolation(cfg *config.Config, r *http.Request) string {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	referer := strings.TrimSpace(r.Header.Get("Referer"))
	if origin == "" && referer == "" {
		return "missing_origin_and_referer"
	}

	allowed := allowedHosts(cfg, r)
	if origin != "" && !allowed[urlHost(origin)] {
		return "invalid_origin"
	}
	if referer != "" && !allowed[urlHost(referer)] {
		return "invalid_referer"
	}
	return ""
}

func allowedHosts(cfg *config.Config, r *http.Request) map[string]bool {
	hosts := make(map[string]bool, 2)
	if host := requestHost(r.Host); host != "" {
		hosts[host] = true
	}
	if cfg != nil {
		if host := urlHost(cfg.BaseURL); host != "" {
			hosts[host] = true
		}
	}
	return hosts
}

func requestHost(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		hostport = host
	}
	return strings.ToLower(hostport)
}

// urlHost returns the lowercased hostname of raw, or "" when raw is not an
// absolute URL. An empty result never matches an allowed host.
func urlHost(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
