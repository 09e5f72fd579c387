package services

import (
	"context"

	"github.com/samber/mo"

	"cartbackend/models"
)

// UsersService defines the interface for identity reconciliation operations
type UsersService interface {
	// UpsertUser maps one external identity onto one durable user record.
	// Idempotent under at-least-once webhook delivery.
	UpsertUser(
		ctx context.Context,
		authProvider, authProviderID, email string,
		displayName, avatarURL *string,
	) (*models.User, error)
	GetUserByAuthProviderID(
		ctx context.Context,
		authProvider, authProviderID string,
	) (mo.Option[*models.User], error)
	// GetCurrentUser resolves the session identity stored in ctx to a user
	// record. Anonymous requests and not-yet-reconciled subjects both resolve
	// to None - never to an error, and never to a newly created record.
	GetCurrentUser(ctx context.Context) (mo.Option[*models.User], error)
}
