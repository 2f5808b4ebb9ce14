// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "agency_backend/internal/feature/auth/adapters"
	authhandler "agency_backend/internal/feature/auth/transport/handler"
	"agency_backend/internal/feature/auth/usecase"
	"agency_backend/internal/platform/cache"
	jwtmw "agency_backend/internal/platform/jwt"
)

// Auth bundles the components of the auth feature that the router needs.
type Auth struct {
	Handler *authhandler.AuthHandler
	Tokens  *jwtmw.Service
	Users   usecase.UserRepository
	Usecase authhandler.AuthUsecase
}

// AuthOptions configures NewAuth.
type AuthOptions struct {
	JWTSecret  string
	SetupToken string
	BcryptCost int
}

// NewUserRepository creates the UserRepository implementation.
// If Redis is available, lookups by ID are served through a Redis cache.
// Otherwise, every call goes straight to the database.
func NewUserRepository(rdb *redis.Client, db *gorm.DB) usecase.UserRepository {
	repo := authadapters.NewUserRepository(db)
	if rdb != nil {
		return cache.NewCachingUserRepository(rdb, cache.DefaultUserTTL, repo, "users")
	}
	return repo
}

// NewAuth wires the auth feature from its repository upwards.
func NewAuth(rdb *redis.Client, db *gorm.DB, opts AuthOptions) (*Auth, error) {
	tokens, err := jwtmw.NewService(opts.JWTSecret, jwtmw.TokenTTL)
	if err != nil {
		return nil, err
	}

	users := NewUserRepository(rdb, db)
	uc := usecase.NewAuthUsecase(users, tokens, usecase.Options{
		BcryptCost: opts.BcryptCost,
		SetupToken: opts.SetupToken,
	})

	return &Auth{
		Handler: authhandler.NewAuthHandler(uc),
		Tokens:  tokens,
		Users:   users,
		Usecase: uc,
	}, nil
}
