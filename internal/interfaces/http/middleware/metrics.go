package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts, durations, and in-flight gauge per route.
// The route template (not the raw path) is used as the label so session IDs
// do not explode cardinality.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if m.HTTPActiveRequests != nil {
			m.HTTPActiveRequests.WithLabelValues(path).Inc()
			defer m.HTTPActiveRequests.WithLabelValues(path).Dec()
		}

		start := time.Now()
		c.Next()
		prometheus.RecordHTTPRequest(m, c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
