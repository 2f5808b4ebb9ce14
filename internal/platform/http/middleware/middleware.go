// Package middleware provides the request-scoped Gin middleware shared by every route.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"
	// ContextRequestID is the gin context key holding the request id.
	ContextRequestID = "requestID"

	maxRequestIDLength = 128
)

// RequestID reuses an incoming X-Request-ID or generates one, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// AccessLog logs one line per request once the response has been written.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
			"request_id", c.GetString(ContextRequestID),
		}
		switch {
		case status >= http.StatusInternalServerError:
			slog.Error("request completed", attrs...)
		case status >= http.StatusBadRequest:
			slog.Warn("request completed", attrs...)
		default:
			slog.Info("request completed", attrs...)
		}
	}
}

// SecurityHeaders sets helmet-style response headers for a JSON API.
// HSTS is only sent on TLS requests, including those a proxy marks as https.
func SecurityHeaders() gin.HandlerFunc {
	return secure.New(secure.Config{
		STSSeconds:              15552000,
		STSIncludeSubdomains:    true,
		CustomFrameOptionsValue: "SAMEORIGIN",
		ContentTypeNosniff:      true,
		IENoOpen:                true,
		ReferrerPolicy:          "no-referrer",
		ContentSecurityPolicy:   "default-src 'self'",
		SSLProxyHeaders:         map[string]string{"X-Forwarded-Proto": "https"},
	})
}

// BodyLimit caps the request body at limit bytes. Handlers that hit the cap answer 413.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// CORS allows credentialed requests from the configured frontend origin only.
func CORS(frontendURL string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Setup-Token", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
