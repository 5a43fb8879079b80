package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"audio-screening-api/models"
	"audio-screening-api/services"
)

// GetScreeningConfig returns the normalized singleton screening parameters.
func GetScreeningConfig(c *gin.Context) {
	cfg, err := services.GetScreeningConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"config":  cfg,
	})
}

// UpdateScreeningConfig saves the singleton screening parameters. Out-of-range
// fields are normalized rather than rejected, so a bad tier can never grant
// full confidence.
func UpdateScreeningConfig(c *gin.Context) {
	var req models.ScreeningConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := services.SaveScreeningConfig(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"config":  saved,
	})
}
