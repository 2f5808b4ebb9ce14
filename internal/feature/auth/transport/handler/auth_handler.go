// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agency_backend/internal/api"
	"agency_backend/internal/feature/auth/domain"
	"agency_backend/internal/feature/auth/domain/entity"
	"agency_backend/internal/feature/auth/transport/http/dto"
	"agency_backend/internal/feature/auth/usecase"
	jwtmw "agency_backend/internal/platform/jwt"
)

// SetupTokenHeader carries the server-held secret for /auth/promote.
const SetupTokenHeader = "x-setup-token"

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.AuthResult, error)
	Login(ctx context.Context, email, password string) (*usecase.AuthResult, error)
	Me(ctx context.Context, userID uint) (*entity.User, error)
	UpdatePassword(ctx context.Context, userID uint, currentPassword, newPassword string) (string, error)
	AuthorizeSetup(setupToken string) error
	PromoteToAdmin(ctx context.Context, setupToken, email string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]entity.User, error)
	SetActive(ctx context.Context, userID uint, active bool) (*entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メール重複時は409を返却
// - 成功時はユーザーとトークン付きで201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		writeBindError(c, err, req)
		return
	}

	res, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		slog.Warn("register failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		writeError(c, err)
		return
	}

	slog.Info("user registered", "user_id", res.User.ID, "role", res.User.Role, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, api.Success("Registration successful", dto.AuthRes{
		User:  dto.NewUserRes(res.User),
		Token: res.Token,
	}))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// 未登録のメールと誤ったパスワードは同じ401メッセージを返します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		writeBindError(c, err, req)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		writeError(c, err)
		return
	}

	slog.Info("user login successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.Success("Login successful", dto.AuthRes{
		User:  dto.NewUserRes(res.User),
		Token: res.Token,
	}))
}

// Logout acknowledges a logout. Tokens are stateless; the client discards its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, api.Success("Logged out successfully", nil))
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := jwtmw.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Error("You are not logged in. Please log in to get access"))
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Success("", gin.H{"user": dto.NewUserRes(user)}))
}

// UpdatePassword changes the authenticated user's password and returns a fresh token.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	userID, ok := jwtmw.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Error("You are not logged in. Please log in to get access"))
		return
	}

	var req dto.UpdatePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err, req)
		return
	}

	token, err := h.auth.UpdatePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		slog.Warn("password update failed", "error", err, "user_id", userID, "remote_addr", c.ClientIP())
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, api.Error("Current password is incorrect"))
			return
		}
		writeError(c, err)
		return
	}

	slog.Info("password updated", "user_id", userID)
	c.JSON(http.StatusOK, api.Success("Password updated successfully", dto.TokenRes{Token: token}))
}

// Promote grants the admin role to an existing account.
// It is gated by the setup token header instead of a bearer token.
// The header is checked before the body is read, so a refused caller always gets 403.
func (h *AuthHandler) Promote(c *gin.Context) {
	setupToken := c.GetHeader(SetupTokenHeader)
	if err := h.auth.AuthorizeSetup(setupToken); err != nil {
		slog.Warn("admin promotion refused", "error", err, "remote_addr", c.ClientIP())
		writeError(c, err)
		return
	}

	var req dto.PromoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err, req)
		return
	}

	user, err := h.auth.PromoteToAdmin(c.Request.Context(), setupToken, req.Email)
	if err != nil {
		slog.Warn("admin promotion failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		writeError(c, err)
		return
	}

	slog.Info("user promoted to admin", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.Success("User "+user.Email+" promoted to admin", gin.H{"user": dto.NewUserRes(user)}))
}

// ListUsers returns every account. Admin only.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Success("", gin.H{
		"results": len(users),
		"users":   dto.NewUserList(users),
	}))
}

// SetUserStatus activates or deactivates an account. Admin only.
func (h *AuthHandler) SetUserStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, api.ValidationFailed([]api.FieldError{{Field: "id", Message: "Invalid user id"}}))
		return
	}

	var req dto.SetStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err, req)
		return
	}

	user, err := h.auth.SetActive(c.Request.Context(), uint(id), *req.IsActive)
	if err != nil {
		writeError(c, err)
		return
	}

	actor, _ := jwtmw.CurrentUserID(c)
	slog.Info("user status changed", "user_id", user.ID, "is_active", user.IsActive, "actor_id", actor)
	c.JSON(http.StatusOK, api.Success("User status updated", gin.H{"user": dto.NewUserRes(user)}))
}
