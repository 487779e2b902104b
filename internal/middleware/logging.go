package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/seqmcp/internal/observability"
	"github.com/rs/zerolog/log"
)

// unmatchedRoute labels requests that matched no route, keeping the path
// label bounded.
const unmatchedRoute = "unmatched"

// RequestLogger records request latency and logs failed requests.
func RequestLogger(collector *observability.MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		collector.RecordHTTPRequestDuration(c.Request.Method, path, status, duration)

		if status >= 400 {
			log.Warn().
				Str("method", c.Request.Method).
				Str("path", path).
				Int("status", status).
				Dur("duration", duration).
				Msg("HTTP request completed with error")
			return
		}
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", duration).
			Msg("HTTP request completed")
	}
}
