package util

import (
	"github.com/gin-gonic/gin"
)

// Error writes the uniform error envelope. Every failure, whatever the
// endpoint family, comes back as {"error": "<message>"}.
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"error": msg})
}
