package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mnemon/mnemon/pkg/service"
)

// RequireAPIKey guards a route group with the server access key. The key is
// read from the X-API-Key header or, for clients that cannot set headers,
// the key / api_key query parameters.
func RequireAPIKey(keys *service.APIKeyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		candidate := c.GetHeader("X-API-Key")
		if candidate == "" {
			candidate = c.Query("key")
		}
		if candidate == "" {
			candidate = c.Query("api_key")
		}
		if !keys.Validate(candidate) {
			Fail(c, http.StatusForbidden, "")
			c.Abort()
			return
		}
		c.Next()
	}
}
