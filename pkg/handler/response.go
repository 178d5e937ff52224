// Shared response envelope helpers
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var defaultCauses = map[int]string{
	http.StatusBadRequest:          "Missing one or more fields",
	http.StatusForbidden:           "Invalid API key",
	http.StatusNotFound:            "Not found",
	http.StatusUnprocessableEntity: "Malformed parameter",
}

// Success writes the standard success envelope.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Fail writes the standard failure envelope. An empty cause falls back to
// the default message for the status code.
func Fail(c *gin.Context, status int, cause string) {
	if cause == "" {
		cause = defaultCauses[status]
	}
	c.JSON(status, gin.H{"success": false, "cause": cause})
}
