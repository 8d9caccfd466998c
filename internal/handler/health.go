package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "sprintsync-backend"

// Root is the plain-text liveness endpoint.
func Root(c *gin.Context) {
	c.String(http.StatusOK, "SprintSync backend is running")
}

// Health reports service liveness as JSON.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
	})
}
