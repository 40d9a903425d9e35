package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shop-booking-api/internal/service"
)

// unmatchedRoute labels requests no route matched, keeping the path label
// bounded by the route table.
const unmatchedRoute = "unmatched"

// Metrics observes every request under its route pattern. Paths in skip,
// such as the scrape endpoint itself, are not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
