package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger emits one structured log line per request: method, path,
// status, latency, caller and client info. Bodies are never logged for
// the auth endpoints, so passwords stay out of the logs.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			slog.String("ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
		}
		if id := c.GetString(requestIDKey); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
		if caller, ok := GetCaller(c); ok {
			attrs = append(attrs,
				slog.Uint64("user_id", uint64(caller.ID)),
				slog.String("username", caller.Username),
			)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", strings.Join(c.Errors.Errors(), "; ")))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", attrs...)
		case c.Writer.Status() >= 400:
			logger.Warn("request", attrs...)
		default:
			logger.Info("request", attrs...)
		}
	}
}
