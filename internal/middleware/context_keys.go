package middleware

import "github.com/gin-gonic/gin"

// userIDKey carries the authenticated user's ID. The custom type keeps it
// from colliding with other context values.
const userIDKey = contextKey("userID")

// GetUserIDFromContext returns the authenticated user ID, looking first in
// the gin context (API-token auth sets it there) and then in the request
// context (JWT auth).
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(userIDKey)); exists {
		userID, ok := v.(string)
		return userID, ok
	}
	if v := c.Request.Context().Value(userIDKey); v != nil {
		userID, ok := v.(string)
		return userID, ok
	}
	return "", false
}
