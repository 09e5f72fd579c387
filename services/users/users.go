package users

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"

	"cartbackend/appctx"
	"cartbackend/core"
	"cartbackend/db"
	"cartbackend/models"
	"cartbackend/salesnotif"
)

type UsersService struct {
	usersRepo *db.PostgresUsersRepository
}

func NewUsersService(repo *db.PostgresUsersRepository) *UsersService {
	return &UsersService{usersRepo: repo}
}

func (s *UsersService) UpsertUser(
	ctx context.Context,
	authProvider, authProviderID, email string,
	displayName, avatarURL *string,
) (*models.User, error) {
	log.Printf("📋 Starting to upsert user for authProvider: %s, authProviderID: %s", authProvider, authProviderID)

	if authProvider == "" {
		return nil, fmt.Errorf("auth_provider cannot be empty: %w", core.ErrValidation)
	}

	if authProviderID == "" {
		return nil, fmt.Errorf("auth_provider_id cannot be empty: %w", core.ErrValidation)
	}

	if email == "" {
		return nil, fmt.Errorf("email cannot be empty: %w", core.ErrValidation)
	}

	user, err := s.usersRepo.UpsertUser(ctx, authProvider, authProviderID, email, displayName, avatarURL)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w: %w", core.ErrStorage, err)
	}

	// A row written by this call's insert path has both timestamps set from
	// the same statement, so equality means the record was just created.
	if user.CreatedAt.Equal(user.UpdatedAt) {
		salesnotif.New(user.ID, fmt.Sprintf("New user signed up: %s", user.Email))
	}

	log.Printf("📋 Completed successfully - upserted user with ID: %s", user.ID)
	return user, nil
}

func (s *UsersService) GetUserByAuthProviderID(
	ctx context.Context,
	authProvider, authProviderID string,
) (mo.Option[*models.User], error) {
	log.Printf("📋 Starting to get user by authProvider: %s, authProviderID: %s", authProvider, authProviderID)

	if authProvider == "" {
		return mo.None[*models.User](), fmt.Errorf("auth_provider cannot be empty: %w", core.ErrValidation)
	}

	if authProviderID == "" {
		return mo.None[*models.User](), fmt.Errorf("auth_provider_id cannot be empty: %w", core.ErrValidation)
	}

	maybeUser, err := s.usersRepo.GetUserByAuthProviderID(ctx, authProvider, authProviderID)
	if err != nil {
		return mo.None[*models.User](), fmt.Errorf("failed to get user by auth provider ID: %w: %w", core.ErrStorage, err)
	}

	if maybeUser.IsPresent() {
		log.Printf("📋 Completed successfully - retrieved user for authProviderID: %s", authProviderID)
	} else {
		log.Printf("📋 Completed successfully - user not found for authProviderID: %s", authProviderID)
	}
	return maybeUser, nil
}

func (s *UsersService) GetCurrentUser(ctx context.Context) (mo.Option[*models.User], error) {
	identity, ok := appctx.GetSessionIdentity(ctx)
	if !ok {
		// Anonymous visitor - a normal state, not a failure
		log.Printf("📋 No session identity present - returning no current user")
		return mo.None[*models.User](), nil
	}

	log.Printf("📋 Starting to get current user for subject: %s", identity.Subject)

	maybeUser, err := s.GetUserByAuthProviderID(ctx, identity.AuthProvider, identity.Subject)
	if err != nil {
		return mo.None[*models.User](), fmt.Errorf("failed to get current user: %w", err)
	}

	// An authenticated subject whose webhook has not landed yet legitimately
	// resolves to None. Callers treat this as transient, not as an error.
	return maybeUser, nil
}
