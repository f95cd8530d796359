package response

import "github.com/gin-gonic/gin"

// The chat frontend consumes these payloads raw, so handlers emit the
// exact wire shapes instead of wrapping them in an envelope.

func JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
