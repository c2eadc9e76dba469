package auth

import "github.com/gin-gonic/gin"

const userIDKey = "userID"

// GetUserID returns the id taken from the sharer header, or 0 when the middleware did not run.
func GetUserID(c *gin.Context) int64 {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
