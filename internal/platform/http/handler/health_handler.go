// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agency_backend/internal/api"
)

// Health は /api/health エンドポイントのハンドラーを返します。
// GET は稼働情報を返し、HEAD はボディなしの200を返します。
// startedAt はプロセスの起動時刻で、稼働時間の計算に使います。
func Health(startedAt time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodHead {
			c.Status(http.StatusOK)
			return
		}

		now := time.Now()
		c.JSON(http.StatusOK, api.Success("Agency API is running", gin.H{
			"timestamp": now.UTC().Format(time.RFC3339),
			"uptime":    now.Sub(startedAt).Seconds(),
		}))
	}
}

// NotFound は未定義ルートに対して404を返します。
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, api.Error("Cannot "+c.Request.Method+" "+c.Request.URL.Path))
}
