package users

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"cartbackend/models"
)

// MockUsersService is a mock implementation of the UsersService interface
type MockUsersService struct {
	mock.Mock
}

func (m *MockUsersService) UpsertUser(
	ctx context.Context,
	authProvider, authProviderID, email string,
	displayName, avatarURL *string,
) (*models.User, error) {
	args := m.Called(ctx, authProvider, authProviderID, email, displayName, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsersService) GetUserByAuthProviderID(
	ctx context.Context,
	authProvider, authProviderID string,
) (mo.Option[*models.User], error) {
	args := m.Called(ctx, authProvider, authProviderID)
	return args.Get(0).(mo.Option[*models.User]), args.Error(1)
}

func (m *MockUsersService) GetCurrentUser(ctx context.Context) (mo.Option[*models.User], error) {
	args := m.Called(ctx)
	return args.Get(0).(mo.Option[*models.User]), args.Error(1)
}
