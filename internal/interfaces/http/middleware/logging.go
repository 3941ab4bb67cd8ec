package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/utils"
)

// CustomLogger writes one access line per request. Paths are logged as route templates so
// subscription ids do not explode log cardinality; the health probe is skipped.
func CustomLogger(log logger.Interface, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if skip[route] {
			return
		}

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if requestID := c.GetHeader(utils.RequestIDHeader); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		if userID, ok := c.Get("user_id"); ok {
			args = append(args, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Errorw("request failed", args...)
		case status >= 400:
			log.Warnw("request rejected", args...)
		default:
			log.Debugw("request served", args...)
		}
	}
}
