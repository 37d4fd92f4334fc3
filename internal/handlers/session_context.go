package handlers

import (
	"context"
	"net/http"

	"github.com/gitshopapp/storefront/internal/identity"
	"github.com/gitshopapp/storefront/internal/session"
)

func (h *Handlers) sessionFromRequest(ctx context.Context, r *http.Request) *session.Data {
	if ctx == nil {
		ctx = context.Background()
	}
	if sess := session.GetSessionFromContext(ctx); sess != nil {
		return sess
	}
	if h == nil || h.sessionManager == nil || r == nil {
		return nil
	}
	sess, err := h.sessionManager.GetSession(ctx, r)
	if err != nil {
		return nil
	}
	return sess
}

// cartOwner keys the cart by the signed-in user when there is one and by
// the visitor session otherwise.
func (h *Handlers) cartOwner(r *http.Request) string {
	ctx := r.Context()
	if id := identity.FromContext(ctx); id != nil && id.UserID != "" {
		return "user:" + id.UserID
	}
	if sess := h.sessionFromRequest(ctx, r); sess != nil && sess.VisitorID != "" {
		return "visitor:" + sess.VisitorID
	}
	return ""
}
