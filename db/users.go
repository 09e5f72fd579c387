package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	"cartbackend/core"
	dbtx "cartbackend/db/tx"
	"cartbackend/models"
)

type PostgresUsersRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for users table
var usersColumns = []string{
	"id",
	"auth_provider",
	"auth_provider_id",
	"email",
	"display_name",
	"avatar_url",
	"created_at",
	"updated_at",
}

func NewPostgresUsersRepository(db *sqlx.DB, schema string) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db, schema: schema}
}

// UpsertUser inserts a user keyed on (auth_provider, auth_provider_id) or, if
// one already exists, patches its mutable fields. The ON CONFLICT clause rides
// on the unique index, so two concurrent first-time upserts for the same
// identity serialize instead of creating duplicate rows. id and created_at are
// never touched on the update path.
func (r *PostgresUsersRepository) UpsertUser(
	ctx context.Context,
	authProvider, authProviderID, email string,
	displayName, avatarURL *string,
) (*models.User, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(usersColumns, ", ")
	returningStr := strings.Join(usersColumns, ", ")

	// Generate ULID for new users; discarded when the row already exists
	userID := core.NewID("u")

	query := fmt.Sprintf(`
		INSERT INTO %s.users (%s)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (auth_provider, auth_provider_id)
		DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING %s`, r.schema, columnsStr, returningStr)

	user := &models.User{}
	err := db.QueryRowxContext(ctx, query, userID, authProvider, authProviderID, email, displayName, avatarURL).
		StructScan(user)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return user, nil
}

func (r *PostgresUsersRepository) GetUserByAuthProviderID(
	ctx context.Context,
	authProvider, authProviderID string,
) (mo.Option[*models.User], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(usersColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.users
		WHERE auth_provider = $1 AND auth_provider_id = $2`, columnsStr, r.schema)

	user := &models.User{}
	err := db.QueryRowxContext(ctx, query, authProvider, authProviderID).StructScan(user)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return mo.None[*models.User](), nil
		}
		return mo.None[*models.User](), fmt.Errorf("failed to get user by auth provider ID: %w", err)
	}

	return mo.Some(user), nil
}
