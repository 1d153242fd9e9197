package server

import (
	"strconv"
	"time"

	"github.com/bdecent/avatarhub/internal/actorcontext"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// actorHeader carries the host user id the frontend resolved from its own
// session. The host platform terminates authentication, so the header is
// trusted as-is.
const actorHeader = "X-Actor-ID"

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if c.Writer.Status() >= 500 {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

// ActorRequired rejects requests without a parseable actor header and
// stamps the request context with the acting user.
func (s *Server) ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseActorHeader(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		ctx := actorcontext.WithUser(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func parseActorHeader(c *gin.Context) (int64, bool) {
	raw := c.GetHeader(actorHeader)
	if raw == "" {
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

func (s *Server) currentUser(c *gin.Context) (int64, bool) {
	return actorcontext.UserIDFromContext(c.Request.Context())
}
