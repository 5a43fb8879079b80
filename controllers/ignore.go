package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"audio-screening-api/config"
	"audio-screening-api/models"
)

// IgnoreSubmission hides a submission from the caller's queue. Duplicate
// ignores are no-ops; the submission and its score are never touched.
func IgnoreSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	userID, _ := c.Get("userID")

	var submission models.Submission
	if err := config.DB.Where("submission_id = ?", submissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	now := time.Now()
	entry := models.IgnoredSubmission{
		ViewerID:     userID.(int),
		SubmissionID: submissionID,
		CreateAt:     &now,
	}
	if err := config.DB.
		Where("viewer_id = ? AND submission_id = ?", userID, submissionID).
		FirstOrCreate(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ignore submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UnignoreSubmission restores a submission to the caller's queue. Restoring a
// submission that was never ignored is a no-op.
func UnignoreSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	userID, _ := c.Get("userID")

	if err := config.DB.
		Where("viewer_id = ? AND submission_id = ?", userID, submissionID).
		Delete(&models.IgnoredSubmission{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
