package domain

import "time"

// UserRole is the permission level of an operator account.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleOperator UserRole = "operator"
)

// Satisfies reports whether r grants at least required.
func (r UserRole) Satisfies(required UserRole) bool {
	if required == RoleOperator {
		return r == RoleOperator || r == RoleAdmin
	}
	return r == required
}

// AuthProvider identifies how a user signs in.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// User represents a user of the application in the domain.
type User struct {
	UserID         string       `json:"userID"` // Primary Key (e.g., UUID)
	Username       string       `json:"username"`
	Name           string       `json:"name"`
	Email          *string      `json:"email,omitempty"`
	PasswordHash   *string      `json:"-"`
	Role           UserRole     `json:"role"`
	AuthProvider   AuthProvider `json:"authProvider"`
	ProviderUserID *string      `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}
