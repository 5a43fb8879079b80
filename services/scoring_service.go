package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"audio-screening-api/models"
)

// RecalculateScore recomputes the derived aggregate for a submission from its
// full current review set and upserts it inside the caller's transaction.
// It must run alongside every review write and decision transition that
// invalidates the previous aggregate.
func RecalculateScore(tx *gorm.DB, submission *models.Submission, now time.Time) (*models.SubmissionScore, error) {
	var reviews []models.Review
	if err := tx.Where("submission_id = ?", submission.SubmissionID).Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to load reviews for scoring: %w", err)
	}

	cfg, err := GetScreeningConfig()
	if err != nil {
		return nil, err
	}

	var approvedAt *time.Time
	if submission.Status == models.SubmissionStatusApproved {
		approvedAt = submission.DecidedAt
	}

	result := ComputeScore(reviews, cfg, approvedAt, now)

	score := models.SubmissionScore{
		SubmissionID:            submission.SubmissionID,
		ReviewCount:             result.ReviewCount,
		RawAvgScore:             result.RawAvgScore,
		ConfidenceMultiplier:    result.ConfidenceMultiplier,
		ConfidenceAdjustedScore: result.ConfidenceAdjustedScore,
		TimeDecayMultiplier:     result.TimeDecayMultiplier,
		IndexedScore:            result.IndexedScore,
		HotIndexedScore:         result.HotIndexedScore,
		CalculatedAt:            now,
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}},
		UpdateAll: true,
	}).Create(&score).Error; err != nil {
		return nil, fmt.Errorf("failed to upsert submission score: %w", err)
	}

	return &score, nil
}

// ReadTimeHotScore returns the current trending score for a submission. For
// decided submissions the all-time indexed score is frozen, so only the decay
// factor moves with the clock; it must be recomputed on read, not on write.
func ReadTimeHotScore(submission *models.Submission, cfg models.ScreeningConfig, now time.Time) *int {
	indexed := submission.FinalIndexedScore
	if indexed == nil {
		if submission.Score == nil {
			return nil
		}
		indexed = submission.Score.IndexedScore
		if indexed == nil {
			return nil
		}
	}

	var approvedAt *time.Time
	if submission.Status == models.SubmissionStatusApproved {
		approvedAt = submission.DecidedAt
	}

	hot := HotIndexedScore(*indexed, TimeDecayMultiplier(cfg, approvedAt, now))
	return &hot
}
