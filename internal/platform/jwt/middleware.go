package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agency_backend/internal/api"
	"agency_backend/internal/feature/auth/domain"
	"agency_backend/internal/feature/auth/domain/entity"
)

// Keys under which Protect stores the authenticated identity on the gin context.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextUser     = "user"
)

// TokenVerifier resolves a bearer token to a user ID.
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// UserLoader loads the account a token refers to.
type UserLoader interface {
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// Protect returns a Gin middleware that requires a valid bearer token whose user still exists.
// On success the user's ID, role and record are attached to the context.
func Protect(verifier TokenVerifier, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Error("You are not logged in. Please log in to get access"))
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

		userID, err := verifier.Verify(tokenStr)
		if err != nil {
			msg := "Invalid token. Please log in again"
			if errors.Is(err, ErrExpiredToken) {
				msg = "Your token has expired. Please log in again"
			}
			slog.Warn("token rejected", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Error(msg))
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, api.Error("The user belonging to this token no longer exists"))
				return
			}
			slog.Error("failed to load token user", "error", err, "user_id", userID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.Error("Something went wrong"))
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, api.Error("Your account has been deactivated"))
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Set(ContextUser, user)
		c.Next()
	}
}

// RestrictTo returns a Gin middleware that only lets through users whose role is in roles.
// It must run after Protect.
func RestrictTo(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok || !role.In(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, api.Error("You do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the ID set by Protect.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// CurrentRole returns the role set by Protect.
func CurrentRole(c *gin.Context) (entity.Role, bool) {
	v, ok := c.Get(ContextUserRole)
	if !ok {
		return "", false
	}
	role, ok := v.(entity.Role)
	return role, ok
}
