package models

import (
	"time"
)

// User is a row of utenti.
type User struct {
	UserID         string  `db:"user_id"`
	Username       string  `db:"username"`
	Name           string  `db:"name"`
	Email          *string `db:"email"`
	PasswordHash   *string `db:"password_hash"`
	Role           string  `db:"role"`
	AuthProvider   string  `db:"auth_provider"`
	ProviderUserID *string `db:"provider_user_id"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
