package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/lodgia/internal/opscope"
	"go.uber.org/zap"
)

const (
	headerRequestID = "X-Request-ID"
	headerActor     = "X-Actor"
)

// RequestID propagates or generates the request correlation id and binds
// the acting user from the request headers into the context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = ulid.Make().String()
		}

		ctx := opscope.WithCorrelationID(c.Request.Context(), rid)
		if actor := c.GetHeader(headerActor); actor != "" {
			ctx = opscope.WithActor(ctx, actor)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Header(headerRequestID, rid)
		c.Next()
	}
}

// AccessLog emits one structured line per request.
func AccessLog(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http.access")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", opscope.CorrelationIDFromContext(c.Request.Context())),
		)
	}
}

// actor resolves the acting user for a request, defaulting to "system".
func actor(c *gin.Context) string {
	return opscope.ActorFromContext(c.Request.Context())
}
