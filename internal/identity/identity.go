// Package identity reads the signed-in customer from tokens issued by the
// external authentication service.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no identity token")

// Identity is the subset of the authenticated user the storefront relies on.
type Identity struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
}

type claims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	jwt.RegisteredClaims
}

// Reader validates HS256 tokens from the Authorization header or a cookie.
type Reader struct {
	secret     []byte
	cookieName string
}

// NewReader returns nil when no secret is configured, which treats every
// visitor as a guest.
func NewReader(secret, cookieName string) *Reader {
	if strings.TrimSpace(secret) == "" {
		return nil
	}
	return &Reader{secret: []byte(secret), cookieName: cookieName}
}

func (r *Reader) FromRequest(req *http.Request) (*Identity, error) {
	if r == nil {
		return nil, ErrNoToken
	}

	raw := bearerToken(req.Header.Get("Authorization"))
	if raw == "" && r.cookieName != "" {
		if cookie, err := req.Cookie(r.cookieName); err == nil {
			raw = strings.TrimSpace(cookie.Value)
		}
	}
	if raw == "" {
		return nil, ErrNoToken
	}

	return r.Parse(raw)
}

func (r *Reader) Parse(raw string) (*Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid identity token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid identity token")
	}

	subject := strings.TrimSpace(c.Subject)
	if subject == "" {
		return nil, fmt.Errorf("identity token has no subject")
	}

	return &Identity{
		UserID:    subject,
		Email:     strings.TrimSpace(c.Email),
		FirstName: strings.TrimSpace(c.GivenName),
		LastName:  strings.TrimSpace(c.FamilyName),
	}, nil
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the signed-in identity or nil for guests.
func FromContext(ctx context.Context) *Identity {
	if ctx == nil {
		return nil
	}
	id, _ := ctx.Value(contextKey{}).(*Identity)
	return id
}

// Middleware attaches the identity when the request carries a valid token.
// Invalid tokens are treated as guests.
func Middleware(reader *Reader, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := reader.FromRequest(r)
			if err != nil {
				if !errors.Is(err, ErrNoToken) {
					logger.Debug("ignoring identity token", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
