// Package entity defines the domain entities for the auth feature.
package entity

import (
	"slices"
	"time"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	return slices.Contains(roles, r)
}

// User represents a registered account.
// It contains authentication credentials and metadata for user management.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`

	// Email is the login key. It is stored lower-cased and must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`

	// Password is the bcrypt hash of the user's password.
	// It is never serialized and only loaded by the credential lookups.
	Password string `gorm:"size:255;not null" json:"-"`

	// Name is the display name.
	Name string `gorm:"size:255;not null" json:"name"`

	// Role is either admin or user.
	Role Role `gorm:"size:16;not null;default:'user';index" json:"role"`

	// IsActive is false for deactivated accounts, which may not log in.
	IsActive bool `gorm:"not null;default:true" json:"isActive"`

	// LastLogin is updated on every successful login.
	LastLogin *time.Time `json:"lastLogin,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
