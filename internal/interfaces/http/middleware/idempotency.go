package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client-chosen key of a retryable write
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// IdempotencyKeys is the store behind Idempotency
type IdempotencyKeys interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Idempotency rejects a repeated write carrying the same Idempotency-Key.
// Requests without the header pass through. A failed request releases its key
// so it can be retried. Store errors let the request through.
func Idempotency(store IdempotencyKeys, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader(IdempotencyKeyHeader)
		if header == "" {
			c.Next()
			return
		}
		if len(header) > maxIdempotencyKeyLength {
			abortWithError(c, http.StatusBadRequest, "ERR_BAD_REQUEST",
				"Idempotency-Key is too long")
			return
		}

		key := ClientOrIPKey(c) + ":" + c.Request.Method + ":" + c.FullPath() + ":" + header
		ctx := c.Request.Context()
		claimed, err := store.Claim(ctx, key, ttl)
		if err != nil {
			logger.Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			abortWithError(c, http.StatusConflict, "ERR_DUPLICATE_REQUEST",
				"A request with this Idempotency-Key was already received")
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
				logger.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
