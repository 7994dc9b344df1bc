package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root returns the service banner
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Pictune API - image-based music curation service",
	})
}

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
