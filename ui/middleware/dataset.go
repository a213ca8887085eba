package middleware

import (
	"context"
	"time"

	"gotally/internal"
	"gotally/internal/session"

	"github.com/gin-gonic/gin"
)

// Restorer puts the last persisted dataset into a session
type Restorer interface {
	Restore(ctx context.Context, sess *session.Session) (bool, error)
}

// EnsureDataset restores the last persisted dataset into the session when
// none is loaded yet
func EnsureDataset(restorer Restorer, sess *session.Session, logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if restorer == nil {
			c.Next()
			return
		}

		if _, ok := sess.Dataset(); !ok {
			restored, err := restorer.Restore(c.Request.Context(), sess)
			if err != nil {
				// Don't fail the request; pages show their own warnings
				logger.Warn("[EnsureDataset] Failed to restore dataset: %v", err)
			} else if restored {
				logger.Info("[EnsureDataset] Restored dataset %s", sess.Filename())
			}
		}

		c.Next()
	}
}

// RequestLogger logs one line per request through the application logger
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("[HTTP] %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
