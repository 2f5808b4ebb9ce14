package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"agency_backend/internal/config"
	"agency_backend/internal/feature/auth/domain/entity"
	authhandler "agency_backend/internal/feature/auth/transport/handler"
	platformhandler "agency_backend/internal/platform/http/handler"
	"agency_backend/internal/platform/http/middleware"
	jwtmw "agency_backend/internal/platform/jwt"
	"agency_backend/internal/platform/ratelimit"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 10 << 20

// Deps are the components the router mounts.
type Deps struct {
	Auth        *authhandler.AuthHandler
	Verifier    jwtmw.TokenVerifier
	Users       jwtmw.UserLoader
	LimitStore  limiter.Store
	RateLimit   config.RateLimit
	FrontendURL string
	StartedAt   time.Time
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.SecurityHeaders(),
		middleware.CORS(d.FrontendURL),
		middleware.BodyLimit(maxBodyBytes),
	)
	r.NoRoute(platformhandler.NotFound)

	protect := jwtmw.Protect(d.Verifier, d.Users)
	adminOnly := jwtmw.RestrictTo(entity.RoleAdmin)

	// 一般的なレート制限は /api 配下すべてに適用
	api := r.Group("/api")
	api.Use(ratelimit.New(d.LimitStore, ratelimit.Options{
		Name:    "api",
		Window:  d.RateLimit.Window,
		Max:     d.RateLimit.Max,
		Message: "Too many requests from this IP, please try again later.",
	}))

	// 導通確認用
	health := platformhandler.Health(d.StartedAt)
	api.GET("/health", health)
	api.HEAD("/health", health)

	// ログイン試行は失敗したリクエストのみカウント
	authLimiter := ratelimit.New(d.LimitStore, ratelimit.Options{
		Name:           "auth",
		Window:         d.RateLimit.Window,
		Max:            d.RateLimit.AuthMax,
		SkipSuccessful: true,
		Message:        "Too many login attempts, please try again later.",
	})

	auth := api.Group("/auth")
	{
		auth.POST("/register", authLimiter, d.Auth.Register)
		auth.POST("/login", authLimiter, d.Auth.Login)
		// セットアップトークンで保護（Bearer トークン不要）
		auth.POST("/promote", d.Auth.Promote)

		auth.POST("/logout", protect, d.Auth.Logout)
		auth.GET("/me", protect, d.Auth.Me)
		auth.PATCH("/updatePassword", protect, d.Auth.UpdatePassword)
	}

	// 管理者専用のルート
	users := api.Group("/users")
	users.Use(protect, adminOnly)
	{
		users.GET("", d.Auth.ListUsers)
		users.PATCH("/:id/status", d.Auth.SetUserStatus)
	}

	return r
}
