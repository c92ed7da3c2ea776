package middleware

import (
	"strings"
	"time"

	"github.com/dryp3004/DRYP-Preview/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics 记录请求数与耗时，按路由模板聚合
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		done := metrics.InFlight()
		defer done()

		start := time.Now()
		c.Next()

		metrics.RecordRequest(strings.ToUpper(c.Request.Method), c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
