// Package user implements the tenant-scoped user entity, its Postgres
// repository, and the CRUD HTTP handlers. Every query runs on the
// tenant-bound session installed by the tenant middleware, so the row-level
// security policies scope all reads and writes to the active tenant.
package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates the requested user does not exist within the
	// active tenant.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken indicates another user in the same tenant already uses
	// the email address.
	ErrEmailTaken = errors.New("email already registered")
)

// Role is a closed set of user roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a string onto the closed role set. Unknown values report
// false so forged role claims never grant anything.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// ParseRoles maps role names onto the closed set, silently dropping unknown
// entries.
func ParseRoles(names []string) []Role {
	roles := make([]Role, 0, len(names))
	for _, n := range names {
		if r, ok := ParseRole(n); ok {
			roles = append(roles, r)
		}
	}
	return roles
}

// RoleNames converts roles back to their string names for token claims.
func RoleNames(roles []Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return names
}

// HasRole reports whether the slice contains the role.
func HasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an account within a single tenant. TenantID is assigned once at
// insert from the active tenant and never updated; email uniqueness is
// composite with the tenant, so the same address can register independently
// under different tenants.
type User struct {
	ID           uuid.UUID
	TenantID     string
	Name         string
	Email        string
	Age          *int
	PasswordHash string
	Roles        []Role
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
