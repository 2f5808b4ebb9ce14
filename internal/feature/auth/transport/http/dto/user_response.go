package dto

import (
	"time"

	"agency_backend/internal/feature/auth/domain/entity"
)

// UserRes is the public representation of an account. It never carries the password hash.
type UserRes struct {
	ID        uint       `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewUserRes converts an entity into its response form.
func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

// NewUserList converts a slice of entities.
func NewUserList(users []entity.User) []UserRes {
	out := make([]UserRes, 0, len(users))
	for i := range users {
		out = append(out, NewUserRes(&users[i]))
	}
	return out
}

// AuthRes is returned by register and login.
type AuthRes struct {
	User  UserRes `json:"user"`
	Token string  `json:"token"`
}

// TokenRes is returned when only a fresh token is issued.
type TokenRes struct {
	Token string `json:"token"`
}
