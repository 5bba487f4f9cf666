package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPRecorder records one served request
type HTTPRecorder interface {
	ObserveHTTPRequest(method, route, status string, elapsed time.Duration)
}

// unmatchedRoute labels requests no route matched, keeping label cardinality bounded
const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route template
func Metrics(recorder HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		recorder.ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
