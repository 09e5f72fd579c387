package testutils

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"cartbackend/appctx"
	"cartbackend/config"
	"cartbackend/db"
	"cartbackend/models"
)

// LoadTestConfig loads configuration for tests from environment variables
func LoadTestConfig() (*config.AppConfig, error) {
	// Try to load environment variables from various possible locations
	_ = godotenv.Load("../.env.test") // From services/ directory
	_ = godotenv.Load(".env.test")    // From root directory
	_ = godotenv.Load()               // Default .env file

	databaseURL := os.Getenv("DB_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DB_URL is not set")
	}

	databaseSchema := os.Getenv("DB_SCHEMA")
	if databaseSchema == "" {
		return nil, fmt.Errorf("DB_SCHEMA is not set")
	}

	return &config.AppConfig{
		DatabaseURL:    databaseURL,
		DatabaseSchema: databaseSchema,
	}, nil
}

// CreateTestUser creates a test user with a unique provider ID to avoid constraint violations
func CreateTestUser(t *testing.T, usersRepo *db.PostgresUsersRepository) *models.User {
	return CreateTestUserWithProvider(t, usersRepo, "test")
}

// CreateTestUserWithProvider creates a test user with a specific auth provider
func CreateTestUserWithProvider(t *testing.T, usersRepo *db.PostgresUsersRepository, authProvider string) *models.User {
	testSubject := uuid.New().String()
	testEmail := fmt.Sprintf("%s@example.com", uuid.New().String())
	testUser, err := usersRepo.UpsertUser(context.Background(), authProvider, testSubject, testEmail, nil, nil)
	require.NoError(t, err, "Failed to create test user with provider %s", authProvider)
	return testUser
}

// CreateTestContext creates a context carrying the given session identity
func CreateTestContext(identity *models.SessionIdentity) context.Context {
	ctx := context.Background()
	return appctx.SetSessionIdentity(ctx, identity)
}

// CleanupTestUser returns a cleanup func that deletes the given user row
func CleanupTestUser(t *testing.T, dbConn *sqlx.DB, schema, userID string) func() {
	return func() {
		query := fmt.Sprintf("DELETE FROM %s.users WHERE id = $1", schema)
		if _, err := dbConn.Exec(query, userID); err != nil {
			t.Logf("⚠️ Failed to cleanup test user %s: %v", userID, err)
		}
	}
}
