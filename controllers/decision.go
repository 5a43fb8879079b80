package controllers

import (
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

type DecisionRequest struct {
	Decision string  `json:"decision" binding:"required"` // approve | reject
	Note     *string `json:"note"`
}

// DecideSubmission performs the pending -> approved|rejected transition.
// The guard (review count, privilege, pending status) is verified inside the
// decision transaction and violations come back as domain errors naming the
// unmet condition. The all-time indexed score is frozen onto the submission
// inside the same transaction.
func DecideSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, derr := services.NormalizeDecision(req.Decision)
	if derr != nil {
		respondDomainError(c, derr)
		return
	}

	userID, _ := c.Get("userID")
	roleID, _ := c.Get("roleID")

	var submission models.Submission
	if err := config.DB.Where("submission_id = ?", submissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	cfg, err := services.GetScreeningConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Guard and transition run inside one transaction so a racing decision
	// cannot slip between the check and the write.
	now := time.Now()
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		return services.ApplyDecision(tx, &submission, userID.(int), roleID.(int), status, utils.SanitizeNote(req.Note), cfg, now)
	})
	if err != nil {
		if derr, ok := services.AsDomainError(err); ok {
			respondDomainError(c, derr)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply decision"})
		return
	}

	// Best-effort decision notice to the artist; never blocks the response.
	var artist models.User
	if err := config.DB.Where("user_id = ?", submission.ArtistID).First(&artist).Error; err == nil {
		go services.SendDecisionEmail(&submission, &artist)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

type DecisionNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

// UpdateDecisionNote edits the human-authored note on an already-decided
// submission. The note is the only mutable field after a terminal decision,
// and only the original decider or an admin may edit it.
func UpdateDecisionNote(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req DecisionNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")
	roleID, _ := c.Get("roleID")

	var submission models.Submission
	if err := config.DB.Where("submission_id = ?", submissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	if !submission.IsDecided() {
		c.JSON(http.StatusConflict, gin.H{"error": "Submission has no decision yet"})
		return
	}
	if roleID.(int) != models.RoleAdmin && (submission.DecidedBy == nil || *submission.DecidedBy != userID.(int)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the decider or an admin may edit the decision note"})
		return
	}

	now := time.Now()
	note := utils.SanitizeInput(req.Note)
	submission.DecisionNote = &note
	submission.UpdateAt = &now

	if err := config.DB.Save(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update decision note"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}
