// Package usecase implements the business logic for the auth feature.
package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agency_backend/internal/feature/auth/domain"
	"agency_backend/internal/feature/auth/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

// fallbackDummyHash is used when a dummy hash cannot be generated at the configured cost.
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user. It returns domain.ErrEmailAlreadyExists on a duplicate email.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail retrieves a user without its password hash.
	// It returns domain.ErrUserNotFound if the user does not exist.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByEmailWithPassword retrieves a user including its password hash.
	FindByEmailWithPassword(ctx context.Context, email string) (*entity.User, error)

	// FindByID retrieves a user without its password hash.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindByIDWithPassword retrieves a user including its password hash.
	FindByIDWithPassword(ctx context.Context, id uint) (*entity.User, error)

	// CountByRole returns the number of users holding role.
	CountByRole(ctx context.Context, role entity.Role) (int64, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id uint, hash string) error

	// UpdateLastLogin records the time of a successful login.
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error

	// UpdateRole changes the user's role.
	UpdateRole(ctx context.Context, id uint, role entity.Role) error

	// SetActive activates or deactivates the user.
	SetActive(ctx context.Context, id uint, active bool) error

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]entity.User, error)
}

// TokenIssuer defines signed token creation.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (platform/jwt).
type TokenIssuer interface {
	// Issue creates a signed bearer token for the given user.
	Issue(userID uint) (string, error)
}

// Options configures an authUsecase.
type Options struct {
	// BcryptCost is the cost used for new password hashes. Zero means bcrypt.DefaultCost.
	BcryptCost int
	// SetupToken is the server-held secret required by PromoteToAdmin. Empty disables promotion.
	SetupToken string
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	User  *entity.User
	Token string
}

// authUsecase implements the registration, login and account administration flows.
type authUsecase struct {
	users      UserRepository
	tokens     TokenIssuer
	bcryptCost int
	setupToken string
	now        func() time.Time
	dummyHash  []byte
}

// NewAuthUsecase creates a new instance of authUsecase.
func NewAuthUsecase(users UserRepository, tokens TokenIssuer, opts Options) *authUsecase {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	// The dummy hash shares the real cost so a login for an unknown email takes as long as a real one.
	dummy, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), cost)
	if err != nil {
		dummy = []byte(fallbackDummyHash)
	}

	return &authUsecase{
		users:      users,
		tokens:     tokens,
		bcryptCost: cost,
		setupToken: opts.SetupToken,
		now:        now,
		dummyHash:  dummy,
	}
}

// Register creates an account and returns it with a fresh token.
// The first account registered while no admin exists becomes admin; all others become user.
func (u *authUsecase) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if err := domain.ValidateRegistration(email, in.Password, name); err != nil {
		return nil, err
	}

	_, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailAlreadyExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	admins, err := u.users.CountByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}
	role := entity.RoleUser
	if admins == 0 {
		role = entity.RoleAdmin
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:    email,
		Password: string(hashed),
		Name:     name,
		Role:     role,
		IsActive: true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Password = ""

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates a user by email and password.
// An unknown email and a wrong password both yield domain.ErrInvalidCredentials, and a bcrypt
// comparison is performed in either case so response timing does not reveal which one happened.
func (u *authUsecase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = domain.NormalizeEmail(email)

	user, err := u.users.FindByEmailWithPassword(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	passwordHash := u.dummyHash
	if user != nil {
		passwordHash = []byte(user.Password)
	}
	compareErr := bcrypt.CompareHashAndPassword(passwordHash, []byte(password))

	if user == nil || compareErr != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}
	user.Password = ""

	now := u.now()
	if err := u.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLogin = &now
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Me returns the account of an authenticated user.
func (u *authUsecase) Me(ctx context.Context, userID uint) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

// UpdatePassword replaces the password of an authenticated user after checking the current one,
// and returns a fresh token.
func (u *authUsecase) UpdatePassword(ctx context.Context, userID uint, currentPassword, newPassword string) (string, error) {
	if currentPassword == "" || newPassword == "" {
		return "", &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "currentPassword", Message: "Please provide current and new password"},
			{Field: "newPassword", Message: "Please provide current and new password"},
		}}
	}
	if err := domain.ValidateNewPassword(newPassword); err != nil {
		return "", err
	}

	user, err := u.users.FindByIDWithPassword(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), u.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	if err := u.users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// AuthorizeSetup checks a presented setup token against the server-held one.
// It fails with domain.ErrSetupTokenNotConfigured whenever no token is configured, whatever was presented.
func (u *authUsecase) AuthorizeSetup(setupToken string) error {
	if u.setupToken == "" {
		return domain.ErrSetupTokenNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(setupToken), []byte(u.setupToken)) != 1 {
		return domain.ErrInvalidSetupToken
	}
	return nil
}

// PromoteToAdmin grants the admin role to the user with the given email.
// The caller must present the server-held setup token; promotion is refused outright when none is configured.
func (u *authUsecase) PromoteToAdmin(ctx context.Context, setupToken, email string) (*entity.User, error) {
	if err := u.AuthorizeSetup(setupToken); err != nil {
		return nil, err
	}

	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.NewValidationError("email", "Email is required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := u.users.UpdateRole(ctx, user.ID, entity.RoleAdmin); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	user.Role = entity.RoleAdmin
	return user, nil
}

// ListUsers returns every account.
func (u *authUsecase) ListUsers(ctx context.Context) ([]entity.User, error) {
	return u.users.List(ctx)
}

// SetActive activates or deactivates an account. It never changes the account's role.
func (u *authUsecase) SetActive(ctx context.Context, userID uint, active bool) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.users.SetActive(ctx, user.ID, active); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	user.IsActive = active
	return user, nil
}
