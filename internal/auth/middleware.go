package auth

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/shareit-dev/shareit-backend/internal/pkg/response"
)

// HeaderUserID carries the acting user's id. Authentication happens upstream; the header is trusted.
const HeaderUserID = "X-Sharer-User-Id"

// UserIDRequired is a Gin middleware that reads the acting user id from X-Sharer-User-Id.
func UserIDRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if header == "" {
			response.BadRequest(c, "missing "+HeaderUserID+" header")
			return
		}

		id, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			response.BadRequest(c, HeaderUserID+" must be an integer")
			return
		}

		// Store user id into Gin context for later handlers.
		c.Set(userIDKey, id)

		ctx := c.Request.Context()
		logger := zerolog.Ctx(ctx).With().Int64("user_id", id).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx))

		c.Next()
	}
}
