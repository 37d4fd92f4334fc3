package session

import (
	"context"
	"net/http"
)

type contextKey struct{}

// Middleware loads the visitor session, starting a new one when the request
// carries none, and stores it in the request context. A store outage leaves
// the request without a session rather than failing it.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		data, err := m.GetSession(ctx, r)
		if err != nil {
			data, err = m.Start(ctx, w)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(WithData(ctx, data)))
	})
}

func WithData(ctx context.Context, data *Data) context.Context {
	return context.WithValue(ctx, contextKey{}, data)
}

// GetSessionFromContext retrieves session data from the request context.
func GetSessionFromContext(ctx context.Context) *Data {
	if ctx == nil {
		return nil
	}
	data, _ := ctx.Value(contextKey{}).(*Data)
	return data
}
