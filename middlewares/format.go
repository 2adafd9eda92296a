package middlewares

import (
	"log"

	"github.com/gin-gonic/gin"
)

// RespondSuccess writes the standard success envelope.
func RespondSuccess(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// RespondError logs the underlying error and writes the standard error
// envelope. The logged error never reaches the client.
func RespondError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		log.Printf("HTTP %d - %s: %v", status, message, err)
	}
	c.JSON(status, gin.H{"success": false, "error": message})
}
