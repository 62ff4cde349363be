package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"paidlinks-api/pkg/logging"
)

// RequestLogger logs one line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		log := logging.Logger()

		// Route templates keep access tokens out of the log
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		if log.GetLevel() <= zerolog.DebugLevel {
			log.Debug().
				Str("method", c.Request.Method).
				Str("path", path).
				Str("ip", c.ClientIP()).
				Msg("request started")
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		var msg string
		switch {
		case status >= 500:
			msg = "server error"
		case status >= 400:
			msg = "client error"
		default:
			msg = "request completed"
		}

		logEntry := log.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration_ms", duration/time.Millisecond).
			Int("bytes", c.Writer.Size()).
			Str("ip", c.ClientIP())

		if duration > 100*time.Millisecond {
			logEntry = logEntry.Bool("slow", true)
		}

		logEntry.Msg(msg)
	}
}
