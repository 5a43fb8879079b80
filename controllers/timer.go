package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"audio-screening-api/config"
	"audio-screening-api/models"
	"audio-screening-api/services"
)

type TimerRequestBody struct {
	SubmissionID  int  `json:"submission_id" binding:"required"`
	ConfirmSwitch bool `json:"confirm_switch"`
}

// RequestTimer starts (or reports on) the caller's listen timer for a
// submission. Outcomes: started, already_active (idempotent re-request),
// already_completed (non-stale listen credit exists), pending_confirmation
// (a timer for another submission is running and confirm_switch was false).
func RequestTimer(c *gin.Context) {
	var req TimerRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")

	var submission models.Submission
	if err := config.DB.Where("submission_id = ?", req.SubmissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	if submission.IsDecided() {
		c.JSON(http.StatusConflict, gin.H{"error": "Submission is already decided"})
		return
	}

	cfg, err := services.GetScreeningConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := Timer.Request(c.Request.Context(), userID.(int), req.SubmissionID,
		submission.RecordingURL, cfg.MinListenTimeSeconds, req.ConfirmSwitch)
	if err != nil {
		if derr, ok := services.AsDomainError(err); ok {
			respondDomainError(c, derr)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

// GetTimerStatus returns the caller's active timer (remaining recomputed from
// the wall clock) and their non-stale listen credits.
func GetTimerStatus(c *gin.Context) {
	userID, _ := c.Get("userID")

	status, err := Timer.Status(c.Request.Context(), userID.(int))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  status,
	})
}

// CancelTimer discards the caller's active timer with no partial credit.
func CancelTimer(c *gin.Context) {
	userID, _ := c.Get("userID")

	cancelled, err := Timer.Cancel(c.Request.Context(), userID.(int))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"cancelled": cancelled,
	})
}

// StreamTimerEvents is the change-notification channel: an SSE stream of the
// caller's timer events, so every open tab observes mutations made elsewhere.
func StreamTimerEvents(c *gin.Context) {
	userID, _ := c.Get("userID")

	events, cleanup, err := Timer.Subscribe(c.Request.Context(), userID.(int))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer cleanup()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			payload, err := json.Marshal(event)
			if err != nil {
				return true
			}
			c.SSEvent("timer", string(payload))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

type TimerOverrideRequest struct {
	ReviewerID   int `json:"reviewer_id" binding:"required"`
	SubmissionID int `json:"submission_id" binding:"required"`
}

// OverrideTimer grants a reviewer full listen credit immediately. Admin only;
// the bypass is logged distinctly from natural completion.
func OverrideTimer(c *gin.Context) {
	var req TimerOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")

	var submission models.Submission
	if err := config.DB.Where("submission_id = ?", req.SubmissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	if err := Timer.Override(c.Request.Context(), req.ReviewerID, userID.(int), req.SubmissionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// IsReviewEligible reports whether the caller currently holds a non-stale
// listen credit for the submission.
func IsReviewEligible(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	userID, _ := c.Get("userID")

	eligible, err := Timer.IsCompleted(c.Request.Context(), userID.(int), submissionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"eligible": eligible,
	})
}
