package identity

import "time"

// Role determines which operations a caller may perform.
type Role string

const (
	// RoleUser is a regular account holder.
	RoleUser Role = "user"
	// RoleAdmin reviews deposits and manages accounts.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one the system knows.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account holder or administrator.
type User struct {
	ID           string
	Username     string
	Email        string
	Role         Role
	PasswordHash []byte
	IsActive     bool
	CreatedAt    time.Time
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
