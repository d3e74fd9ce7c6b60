package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/pkg/metrics"
)

// Metrics counts every finished request by method, matched route and status.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
