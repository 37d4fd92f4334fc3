package email

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	resend "github.com/resend/resend-go/v3"
)

type ResendProvider struct {
	from   string
	client *resend.Client
}

func NewResendProvider(apiKey, from string) *ResendProvider {
	return &ResendProvider{
		from:   from,
		client: resend.NewClient(apiKey),
	}
}

func (r *ResendProvider) SendEmail(ctx context.Context, email *Email) error {
	if r.client == nil {
		return fmt.Errorf("resend client not configured")
	}
	params, err := r.request(email)
	if err != nil {
		return err
	}

	sent, err := r.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email via resend: %w", err)
	}
	if sent == nil || sent.Id == "" {
		return fmt.Errorf("resend accepted email without an id")
	}
	return nil
}

func (r *ResendProvider) request(email *Email) (*resend.SendEmailRequest, error) {
	if email == nil {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(email.HTML) == "" && strings.TrimSpace(email.Text) == "" {
		return nil, fmt.Errorf("email body is empty")
	}
	to, err := mail.ParseAddress(email.To)
	if err != nil {
		return nil, fmt.Errorf("invalid email recipient: %w", err)
	}

	return &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{to.Address},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		Tags:    resendTags(email.Tags),
	}, nil
}

// resendTags keeps only values Resend accepts and orders them by name.
func resendTags(tags map[string]string) []resend.Tag {
	out := make([]resend.Tag, 0, len(tags))
	for name, value := range tags {
		if !validTagPart(name) || !validTagPart(value) {
			continue
		}
		out = append(out, resend.Tag{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func validTagPart(s string) bool {
	if s == "" || len(s) > 256 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}
