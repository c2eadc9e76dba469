package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/shareit-dev/shareit-backend/internal/auth"
)

// Middleware rejects requests over the limit with 429. It must run after auth.UserIDRequired.
// Limiter failures are logged and the request is let through.
func Middleware(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strconv.FormatInt(auth.GetUserID(c), 10)

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}
