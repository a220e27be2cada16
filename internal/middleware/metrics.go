package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/study-planner-api/internal/service"
)

// uninstrumented lists liveness and scrape endpoints whose traffic
// would drown out the API series without telling us anything about
// students.
var uninstrumented = map[string]struct{}{
	"/health":  {},
	"/ready":   {},
	"/metrics": {},
}

// Metrics returns middleware that records per-route request metrics.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		if _, skip := uninstrumented[c.Request.URL.Path]; skip {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, status, duration)
	}
}
