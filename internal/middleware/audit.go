package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/pkg/middleware/requestid"
)

// Audit logs successful administrative requests with the acting subject.
func Audit(logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		subject := ""
		role := ""
		if claims := Claims(c); claims != nil {
			subject = claims.Subject
			role = string(claims.Role)
		}

		logger.Info("audit",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.String("subject", subject),
			zap.String("role", role),
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("request_id", requestid.Value(c)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
		)
	}
}
