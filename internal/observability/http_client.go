package observability

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	sentryhttpclient "github.com/getsentry/sentry-go/httpclient"
)

const userAgent = "storefront/1.0"

// ProviderClient builds the HTTP client for one payment provider API. Trace
// headers are only propagated to the provider's own host.
func ProviderClient(baseURL string, timeout time.Duration) *http.Client {
	var targets []string
	if parsed, err := url.Parse(strings.TrimSpace(baseURL)); err == nil && parsed.Host != "" {
		targets = append(targets, parsed.Host)
	}

	client := &http.Client{
		Transport: &userAgentTransport{
			next: sentryhttpclient.NewSentryRoundTripper(
				http.DefaultTransport,
				sentryhttpclient.WithTracePropagationTargets(targets),
			),
		},
	}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return client
}

type userAgentTransport struct {
	next http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", userAgent)
	return t.next.RoundTrip(clone)
}
