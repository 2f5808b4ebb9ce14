package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency_backend/internal/api"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter() *gin.Engine {
	r := gin.New()
	h := Health(time.Now().Add(-time.Minute))
	r.GET("/api/health", h)
	r.HEAD("/api/health", h)
	r.NoRoute(NotFound)
	return r
}

type healthBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Timestamp string  `json:"timestamp"`
		Uptime    float64 `json:"uptime"`
	} `json:"data"`
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("GET reports uptime", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		setupRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

		var res healthBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, api.StatusSuccess, res.Status)
		assert.Equal(t, "Agency API is running", res.Message)
		assert.GreaterOrEqual(t, res.Data.Uptime, 60.0)
		_, err := time.Parse(time.RFC3339, res.Data.Timestamp)
		assert.NoError(t, err)
	})

	t.Run("HEAD has no body", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		setupRouter().ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/api/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, w.Body.Len())
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	})
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/nope", "Cannot GET /api/nope"},
		{http.MethodDelete, "/api/users/1", "Cannot DELETE /api/users/1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			setupRouter().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, http.StatusNotFound, w.Code)
			var res api.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.Equal(t, api.StatusError, res.Status)
			assert.Equal(t, tt.want, res.Message)
		})
	}
}
