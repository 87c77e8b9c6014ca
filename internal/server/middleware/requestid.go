package middleware

import (
	"github.com/gin-gonic/gin"

	"bistro/internal/pkg/id"
)

// RequestID 请求ID中间件
// 复用客户端传入的 X-Request-ID，否则生成新的 UUID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = id.New()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}
