// Package identity holds the user entity and its roles.
package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/qabank/qabank/internal/domain"
)

// Role classifies a user's privileges.
type Role string

// Role values. Admin bypasses all ownership checks.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an authenticated identity.
type User struct {
	id          int64
	name        string
	institution string
	role        Role
	createdAt   time.Time
	updatedAt   time.Time
}

// NewUser creates a user with the default role.
func NewUser(name, institution string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, fmt.Errorf("%w: user name is empty", domain.ErrValidation)
	}
	return User{
		name:        name,
		institution: institution,
		role:        RoleUser,
	}, nil
}

// ReconstructUser rebuilds a user from stored fields.
func ReconstructUser(id int64, name, institution string, role Role, createdAt, updatedAt time.Time) User {
	return User{
		id:          id,
		name:        name,
		institution: institution,
		role:        role,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the user id.
func (u User) ID() int64 { return u.id }

// Name returns the unique user name.
func (u User) Name() string { return u.name }

// Institution returns the user's institution, possibly empty.
func (u User) Institution() string { return u.institution }

// Role returns the user's role.
func (u User) Role() Role { return u.role }

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool { return u.role == RoleAdmin }

// CreatedAt returns the creation timestamp.
func (u User) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt returns the last modification timestamp.
func (u User) UpdatedAt() time.Time { return u.updatedAt }

// WithRole returns a copy of the user with the given role.
func (u User) WithRole(role Role) User {
	u.role = role
	return u
}
