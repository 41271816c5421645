// Package ratelimit throttles requests per client IP with ulule/limiter.
package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// DefaultRate allows ten requests per minute.
const DefaultRate = "10-M"

// New builds an in-memory limiter from a formatted rate such as "10-M" or "100-H".
func New(formatted string) (*limiter.Limiter, error) {
	if formatted == "" {
		formatted = DefaultRate
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", formatted, err)
	}
	return limiter.New(memory.NewStore(), rate), nil
}

// Middleware applies instance to each request keyed by client IP. When the
// limit is reached onLimit writes the response and the chain is aborted.
// Store failures let the request through.
func Middleware(instance *limiter.Limiter, onLimit func(c *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := instance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			slog.WarnContext(c.Request.Context(), "rate limiter unavailable", slog.String("error", err.Error()))
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.Reset, 10))
		if result.Reached {
			if onLimit == nil {
				c.AbortWithStatus(http.StatusTooManyRequests)
				return
			}
			onLimit(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
