package models

import (
	"time"
)

// AuthProviderClerk is the only auth provider currently wired up.
const AuthProviderClerk = "clerk"

type User struct {
	ID             string    `db:"id"               json:"id"`
	AuthProvider   string    `db:"auth_provider"    json:"auth_provider"`
	AuthProviderID string    `db:"auth_provider_id" json:"auth_provider_id"`
	Email          string    `db:"email"            json:"email"`
	DisplayName    *string   `db:"display_name"     json:"display_name,omitempty"`
	AvatarURL      *string   `db:"avatar_url"       json:"avatar_url,omitempty"`
	CreatedAt      time.Time `db:"created_at"       json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"       json:"updated_at"`
}
