// Package session tracks anonymous shoppers with a cookie-backed session.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	cookieName = "storefront_session"
	ttl        = 14 * 24 * time.Hour
)

// Data is what a visitor session remembers between requests.
type Data struct {
	VisitorID string `json:"visitor_id"`
	CreatedAt int64  `json:"created_at"`
}

func (d *Data) expired(now time.Time) bool {
	return now.Sub(time.Unix(d.CreatedAt, 0)) > ttl
}

type Manager struct {
	store  Store
	secure bool
}

func NewManager(store Store, secure bool) *Manager {
	return &Manager{
		store:  store,
		secure: secure,
	}
}

func (m *Manager) Close() error {
	if m == nil || m.store == nil {
		return nil
	}
	return m.store.Close()
}

// Start creates a session for a new visitor and sets its cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter) (*Data, error) {
	data := &Data{
		VisitorID: uuid.NewString(),
		CreatedAt: time.Now().Unix(),
	}

	sessionID := uuid.NewString()
	if err := m.store.Set(ctx, sessionID, data, ttl); err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return data, nil
}

// GetSession loads the session named by the request cookie.
func (m *Manager) GetSession(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if ctx == nil {
		ctx = r.Context()
	}

	data, err := m.store.Get(ctx, cookie.Value)
	if err != nil {
		return nil, err
	}
	if data.expired(time.Now()) {
		if err := m.store.Delete(ctx, cookie.Value); err != nil {
			return nil, fmt.Errorf("failed to drop expired session: %w", err)
		}
		return nil, ErrSessionNotFound
	}
	return data, nil
}
