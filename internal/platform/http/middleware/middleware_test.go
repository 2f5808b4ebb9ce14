package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		reuse    bool
	}{
		{"generated when absent", "", false},
		{"reused when present", "abc-123", true},
		{"replaced when oversized", strings.Repeat("x", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			r := gin.New()
			r.Use(RequestID())
			r.GET("/", func(c *gin.Context) {
				seen = c.GetString(ContextRequestID)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			assert.Equal(t, seen, got)
			if tt.reuse {
				assert.Equal(t, tt.incoming, got)
			} else {
				_, err := uuid.Parse(got)
				assert.NoError(t, err, "expected a generated uuid, got %q", got)
			}
		})
	}
}

func TestAccessLog_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), AccessLog())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for path, want := range map[string]int{"/ok": 200, "/bad": 400, "/boom": 500} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"), "plain http")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	tls := httptest.NewRecorder()
	r.ServeHTTP(tls, req)
	assert.Contains(t, tls.Header().Get("Strict-Transport-Security"), "max-age=15552000")
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	small := httptest.NewRecorder()
	r.ServeHTTP(small, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	assert.Equal(t, http.StatusOK, small.Code)

	large := httptest.NewRecorder()
	r.ServeHTTP(large, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, large.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:3000"))
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Less(t, w.Code, 300)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
