// Package email sends transactional order emails.
package email

import (
	"context"
)

type Provider interface {
	SendEmail(ctx context.Context, email *Email) error
}

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
	// Tags are forwarded to providers that support message tagging.
	Tags map[string]string
}

// NoopProvider discards emails when no provider is configured.
type NoopProvider struct{}

func (NoopProvider) SendEmail(context.Context, *Email) error { return nil }

// NewProvider returns a Resend provider, or a no-op provider when
// credentials are missing.
func NewProvider(apiKey, from string) Provider {
	if apiKey == "" || from == "" {
		return NoopProvider{}
	}
	return NewResendProvider(apiKey, from)
}
