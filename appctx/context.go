package appctx

import (
	"context"

	"cartbackend/models"
)

// Context key for storing the session identity
type contextKey string

const SessionIdentityContextKey contextKey = "session_identity"

// SetSessionIdentity adds the validated session identity to the request context
func SetSessionIdentity(ctx context.Context, identity *models.SessionIdentity) context.Context {
	return context.WithValue(ctx, SessionIdentityContextKey, identity)
}

// GetSessionIdentity extracts the session identity from the request context.
// A missing identity means the request is anonymous - that is a normal state, not an error.
func GetSessionIdentity(ctx context.Context) (*models.SessionIdentity, bool) {
	identity, ok := ctx.Value(SessionIdentityContextKey).(*models.SessionIdentity)
	return identity, ok
}
