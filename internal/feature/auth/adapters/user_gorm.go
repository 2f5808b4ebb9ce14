// Package adapters provides repository implementations for the auth feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"agency_backend/internal/feature/auth/domain"
	"agency_backend/internal/feature/auth/domain/entity"
	"agency_backend/internal/feature/auth/usecase"
	"agency_backend/internal/platform/db"
)

// passwordColumn is left out of every read that does not need to compare credentials.
const passwordColumn = "password"

// userGorm is a GORM implementation of the UserRepository interface.
// It runs unchanged on PostgreSQL and SQLite.
type userGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure userGorm implements UserRepository.
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserRepository creates a new instance of userGorm.
func NewUserRepository(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create adds a user to the database.
// It returns domain.ErrEmailAlreadyExists if a user with the same email already exists.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEmail retrieves a user by email without the password hash.
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(r.db.WithContext(ctx).Omit(passwordColumn), "email = ?", email)
}

// FindByEmailWithPassword retrieves a user by email including the password hash.
func (r *userGorm) FindByEmailWithPassword(ctx context.Context, email string) (*entity.User, error) {
	return r.first(r.db.WithContext(ctx), "email = ?", email)
}

// FindByID retrieves a user by ID without the password hash.
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.first(r.db.WithContext(ctx).Omit(passwordColumn), "id = ?", id)
}

// FindByIDWithPassword retrieves a user by ID including the password hash.
func (r *userGorm) FindByIDWithPassword(ctx context.Context, id uint) (*entity.User, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

func (r *userGorm) first(tx *gorm.DB, query string, arg any) (*entity.User, error) {
	var u entity.User
	if err := tx.Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CountByRole returns the number of users holding role.
func (r *userGorm) CountByRole(ctx context.Context, role entity.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}

// UpdatePassword replaces the password hash.
func (r *userGorm) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.updateColumn(ctx, id, "password", hash)
}

// UpdateLastLogin records a successful login.
func (r *userGorm) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.updateColumn(ctx, id, "last_login", at)
}

// UpdateRole changes the user's role.
func (r *userGorm) UpdateRole(ctx context.Context, id uint, role entity.Role) error {
	return r.updateColumn(ctx, id, "role", role)
}

// SetActive activates or deactivates the user.
func (r *userGorm) SetActive(ctx context.Context, id uint, active bool) error {
	return r.updateColumn(ctx, id, "is_active", active)
}

func (r *userGorm) updateColumn(ctx context.Context, id uint, column string, value any) error {
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update(column, value)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List returns all users ordered by creation, without password hashes.
func (r *userGorm) List(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).
		Omit(passwordColumn).
		Order("created_at ASC, id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
