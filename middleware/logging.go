// middleware/logging.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"achotel/internal/logger"
)

// Logging 请求日志中间件
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		logger.Info("[%s] %s %s %d %v", c.Request.Method, path, c.ClientIP(),
			c.Writer.Status(), latency)
	}
}
