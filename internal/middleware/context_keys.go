package middleware

import "github.com/gin-gonic/gin"

// userNameKey is the key used to store the authenticated caller's owner
// identity in the request context.
const userNameKey = contextKey("userName")

// GetUserNameFromContext retrieves the authenticated owner identity from the
// Gin context. It returns the identity and a boolean indicating if it was found.
func GetUserNameFromContext(c *gin.Context) (string, bool) {
	userNameVal := c.Request.Context().Value(userNameKey)
	if userNameVal == nil {
		return "", false
	}

	userName, ok := userNameVal.(string)
	if !ok {
		// This should not happen if the auth middleware sets it correctly
		return "", false
	}

	return userName, true
}
