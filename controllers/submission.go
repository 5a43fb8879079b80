package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"audio-screening-api/config"
	"audio-screening-api/models"
	"audio-screening-api/services"
	"audio-screening-api/utils"
)

type CreateSubmissionRequest struct {
	Context      string `json:"context" binding:"required"`
	EventID      *int   `json:"event_id"`
	VenueID      *int   `json:"venue_id"`
	RecordingURL string `json:"recording_url" binding:"required"`
}

// CreateSubmission is the artist intake endpoint. It snapshots the artist's
// genres and flags a genre mismatch against the target venue at intake time.
func CreateSubmission(c *gin.Context) {
	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidContext(req.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission context"})
		return
	}
	if req.Context == models.SubmissionContextEvent && req.EventID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_id is required for event submissions"})
		return
	}
	if req.Context == models.SubmissionContextVenue && req.VenueID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "venue_id is required for venue submissions"})
		return
	}

	userID, _ := c.Get("userID")

	var artist models.User
	if err := config.DB.Where("user_id = ?", userID).First(&artist).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load artist"})
		return
	}

	artistGenres := ""
	if artist.Genres != nil {
		artistGenres = *artist.Genres
	}

	mismatch := false
	if req.Context == models.SubmissionContextVenue {
		var venue models.Venue
		if err := config.DB.Where("venue_id = ? AND delete_at IS NULL", *req.VenueID).First(&venue).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Venue not found"})
			return
		}
		mismatch = models.GenresMismatch(artistGenres, venue.RequiredGenres)
	}

	now := time.Now()
	submission := models.Submission{
		SubmissionNumber: uuid.New().String(),
		ArtistID:         artist.UserID,
		Context:          req.Context,
		EventID:          req.EventID,
		VenueID:          req.VenueID,
		RecordingURL:     utils.SanitizeInput(req.RecordingURL),
		ArtistGenres:     artistGenres,
		Status:           models.SubmissionStatusPending,
		HasGenreMismatch: mismatch,
		CreateAt:         &now,
		UpdateAt:         &now,
	}

	if err := config.DB.Create(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create submission"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// GetMySubmissions lists the caller's own submissions. Decided submissions
// include the decision note, which is visible to the originating artist.
func GetMySubmissions(c *gin.Context) {
	userID, _ := c.Get("userID")

	var submissions []models.Submission
	if err := config.DB.Preload("Event").
		Preload("Venue").
		Where("artist_id = ?", userID).
		Order("create_at DESC").
		Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// GetSubmissions lists the pending review queue for the current viewer.
// Submissions the viewer has ignored are overlaid out of the result without
// touching the records themselves.
func GetSubmissions(c *gin.Context) {
	userID, _ := c.Get("userID")

	status := c.Query("status")
	if status == "" {
		status = models.SubmissionStatusPending
	}

	query := config.DB.Preload("Artist").
		Preload("Event").
		Preload("Venue").
		Preload("Score").
		Where("status = ?", status).
		Where("submission_id NOT IN (?)",
			config.DB.Model(&models.IgnoredSubmission{}).
				Select("submission_id").
				Where("viewer_id = ?", userID),
		)

	if ctxFilter := c.Query("context"); ctxFilter != "" {
		query = query.Where("context = ?", ctxFilter)
	}

	var submissions []models.Submission
	if err := query.Order("create_at ASC").Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// GetSubmission returns one submission with its score. The trending score is
// recomputed at read time so it tracks elapsed time since approval.
func GetSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var submission models.Submission
	if err := config.DB.Preload("Artist").
		Preload("Event").
		Preload("Venue").
		Preload("Score").
		Where("submission_id = ?", submissionID).
		First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	cfg, err := services.GetScreeningConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"submission":        submission,
		"hot_indexed_score": services.ReadTimeHotScore(&submission, cfg, time.Now()),
	})
}
