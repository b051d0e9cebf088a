package middlewares

import "github.com/gin-gonic/gin"

// gin context keys shared by middlewares and handlers.
const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.userID"
	CtxToken     = "auth.token"
)

func stringFromContext(c *gin.Context, key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func RequestIDFromContext(c *gin.Context) string {
	id, _ := stringFromContext(c, CtxRequestID)
	return id
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, CtxUserID)
}

// TokenFromContext returns the bearer token accepted by RequireAuth.
func TokenFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, CtxToken)
}

// abortWithError writes the same error envelope the handlers use.
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":      code,
			"message":   message,
			"requestId": RequestIDFromContext(c),
		},
	})
}
