package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"audio-screening-api/config"
	"audio-screening-api/models"
	"audio-screening-api/services"
	"audio-screening-api/utils"
)

type SubmitReviewRequest struct {
	TrackScore     *int    `json:"track_score" binding:"required"`
	VibeScore      *int    `json:"vibe_score" binding:"required"`
	TechnicalScore *int    `json:"technical_score" binding:"required"`
	InternalNote   *string `json:"internal_note"`
}

func validMetricScores(scores ...*int) bool {
	for _, s := range scores {
		if s == nil || !models.ValidMetricScore(*s) {
			return false
		}
	}
	return true
}

// SubmitReview files the caller's review for a submission. The listen timer
// gates creation: without a non-stale completed listen the request is
// rejected with the unmet condition. The aggregate score is recomputed from
// the full review set in the same transaction as the write.
func SubmitReview(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validMetricScores(req.TrackScore, req.VibeScore, req.TechnicalScore) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Metric scores must be integers between 0 and 4"})
		return
	}

	userID, _ := c.Get("userID")
	reviewerID := userID.(int)

	var submission models.Submission
	if err := config.DB.Where("submission_id = ?", submissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	if submission.IsDecided() {
		respondDomainError(c, services.NewDomainError(services.CodeReviewLocked,
			"submission is already decided, reviews are locked"))
		return
	}

	// Timer gate: the reviewer must hold a completed, non-stale listen.
	eligible, err := Timer.IsCompleted(c.Request.Context(), reviewerID, submissionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !eligible {
		respondDomainError(c, services.NewDomainError(services.CodeReviewNotEligible,
			"minimum listen time not satisfied (or listen credit expired), start a listen timer first"))
		return
	}

	var existing models.Review
	err = config.DB.Where("submission_id = ? AND reviewer_id = ?", submissionID, reviewerID).First(&existing).Error
	if err == nil {
		respondDomainError(c, services.NewDomainError(services.CodeDuplicateReview,
			"you have already reviewed this submission"))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing review"})
		return
	}

	cfg, err := services.GetScreeningConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	review := models.Review{
		SubmissionID:          submissionID,
		ReviewerID:            reviewerID,
		TrackScore:            *req.TrackScore,
		VibeScore:             *req.VibeScore,
		TechnicalScore:        *req.TechnicalScore,
		InternalNote:          utils.SanitizeNote(req.InternalNote),
		ListenDurationSeconds: cfg.MinListenTimeSeconds,
		CreateAt:              &now,
		UpdateAt:              &now,
	}
	review.Rating = review.ComputeRating()

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		_, err := services.RecalculateScore(tx, &submission, now)
		return err
	})
	if err != nil {
		// A concurrent duplicate slips past the pre-check and trips the
		// unique index instead; surface the same domain condition.
		if services.IsDuplicateKeyError(err) {
			respondDomainError(c, services.NewDomainError(services.CodeDuplicateReview,
				"you have already reviewed this submission"))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
		return
	}

	// Consume the listen credit so eligibility cannot be banked. The review
	// is already persisted, so a failure here only leaves a soon-to-expire
	// entry behind.
	if err := Timer.ClearCompleted(context.Background(), reviewerID, submissionID); err != nil {
		c.JSON(http.StatusCreated, gin.H{"success": true, "review": review,
			"warning": "review saved but listen credit could not be cleared"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"review":  review,
	})
}

// UpdateReview edits the caller's own review. Edits are rejected once the
// submission is decided so historical rankings stay frozen.
func UpdateReview(c *gin.Context) {
	reviewID, err := strconv.Atoi(c.Param("id"))
	if err != nil || reviewID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validMetricScores(req.TrackScore, req.VibeScore, req.TechnicalScore) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Metric scores must be integers between 0 and 4"})
		return
	}

	userID, _ := c.Get("userID")

	var review models.Review
	if err := config.DB.Where("review_id = ?", reviewID).First(&review).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	if review.ReviewerID != userID.(int) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own review"})
		return
	}

	var submission models.Submission
	if err := config.DB.Where("submission_id = ?", review.SubmissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submission"})
		return
	}
	if submission.IsDecided() {
		respondDomainError(c, services.NewDomainError(services.CodeReviewLocked,
			"submission is already decided, reviews are locked"))
		return
	}

	now := time.Now()
	review.TrackScore = *req.TrackScore
	review.VibeScore = *req.VibeScore
	review.TechnicalScore = *req.TechnicalScore
	review.Rating = review.ComputeRating()
	review.InternalNote = utils.SanitizeNote(req.InternalNote)
	review.UpdateAt = &now

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&review).Error; err != nil {
			return err
		}
		_, err := services.RecalculateScore(tx, &submission, now)
		return err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"review":  review,
	})
}

// DeleteReview removes the caller's own review and rescores the submission.
func DeleteReview(c *gin.Context) {
	reviewID, err := strconv.Atoi(c.Param("id"))
	if err != nil || reviewID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return
	}

	userID, _ := c.Get("userID")

	var review models.Review
	if err := config.DB.Where("review_id = ?", reviewID).First(&review).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	if review.ReviewerID != userID.(int) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own review"})
		return
	}

	var submission models.Submission
	if err := config.DB.Where("submission_id = ?", review.SubmissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submission"})
		return
	}
	if submission.IsDecided() {
		respondDomainError(c, services.NewDomainError(services.CodeReviewLocked,
			"submission is already decided, reviews are locked"))
		return
	}

	now := time.Now()
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		_, err := services.RecalculateScore(tx, &submission, now)
		return err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSubmissionReviews lists reviews for a submission. Reviewers are blind
// until they contribute: other reviewers' records are only visible once the
// caller's own review exists. Admins are exempt.
func GetSubmissionReviews(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	userID, _ := c.Get("userID")
	roleID, _ := c.Get("roleID")

	if roleID.(int) != models.RoleAdmin {
		var own models.Review
		err := config.DB.Where("submission_id = ? AND reviewer_id = ?", submissionID, userID).First(&own).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondDomainError(c, services.NewDomainError(services.CodeBlindUntilContribute,
				"submit your own review before reading others"))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check own review"})
			return
		}
	}

	var reviews []models.Review
	if err := config.DB.Preload("Reviewer").
		Where("submission_id = ?", submissionID).
		Order("create_at ASC").
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	// Internal notes are reviewer-only: strip everyone else's.
	for i := range reviews {
		if reviews[i].ReviewerID != userID.(int) {
			reviews[i].InternalNote = nil
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"total":   len(reviews),
	})
}
