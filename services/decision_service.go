package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"audio-screening-api/models"
)

// Decision values accepted by the workflow.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// CanDecide checks the guard for entering a terminal status: the submission
// must still be pending, the actor must hold review capability, and the
// review count must meet the configured minimum. The indexed score is a
// recommendation only, never a hard gate.
func CanDecide(submission *models.Submission, reviewCount int, cfg models.ScreeningConfig, actorRoleID int) *DomainError {
	if submission.IsDecided() {
		return NewDomainError(CodeAlreadyDecided,
			fmt.Sprintf("submission is already %s and cannot be decided again", submission.Status))
	}
	if actorRoleID != models.RoleReviewer && actorRoleID != models.RoleAdmin {
		return NewDomainError(CodeInsufficientPrivilege, "only reviewers and admins may decide submissions")
	}
	if reviewCount < cfg.MinReviewsForApproval {
		return NewDomainError(CodeInsufficientReviews,
			fmt.Sprintf("submission has %d review(s), %d required before a decision", reviewCount, cfg.MinReviewsForApproval))
	}
	return nil
}

// ApplyDecision performs the pending -> approved|rejected transition inside
// tx: it verifies the guard against the transaction's own reads, claims the
// row with a status predicate so a concurrent decision can never overwrite a
// terminal state, recomputes the aggregate one last time, and freezes the
// all-time indexed score onto the submission so later review edits can never
// rewrite history. Approval anchors time decay at decided_at.
func ApplyDecision(tx *gorm.DB, submission *models.Submission, actorID, actorRoleID int, decision string, note *string, cfg models.ScreeningConfig, now time.Time) error {
	switch decision {
	case models.SubmissionStatusApproved, models.SubmissionStatusRejected:
	default:
		return NewDomainError(CodeInvalidDecision, "decision must be approve or reject")
	}

	var reviewCount int64
	if err := tx.Model(&models.Review{}).
		Where("submission_id = ?", submission.SubmissionID).
		Count(&reviewCount).Error; err != nil {
		return fmt.Errorf("failed to count reviews: %w", err)
	}
	if derr := CanDecide(submission, int(reviewCount), cfg, actorRoleID); derr != nil {
		return derr
	}

	// The status predicate makes the transition atomic: of two racing
	// decisions only one matches the pending row, the loser sees zero rows.
	res := tx.Model(&models.Submission{}).
		Where("submission_id = ? AND status = ?", submission.SubmissionID, models.SubmissionStatusPending).
		Updates(map[string]interface{}{
			"status":        decision,
			"decided_by":    actorID,
			"decided_at":    now,
			"decision_note": note,
			"update_at":     now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to persist decision: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return NewDomainError(CodeAlreadyDecided, "submission was already decided and cannot be decided again")
	}

	submission.Status = decision
	submission.DecidedBy = &actorID
	submission.DecidedAt = &now
	submission.DecisionNote = note
	submission.UpdateAt = &now

	score, err := RecalculateScore(tx, submission, now)
	if err != nil {
		return err
	}
	submission.FinalIndexedScore = score.IndexedScore

	if err := tx.Model(&models.Submission{}).
		Where("submission_id = ?", submission.SubmissionID).
		Update("final_indexed_score", score.IndexedScore).Error; err != nil {
		return fmt.Errorf("failed to freeze indexed score: %w", err)
	}
	return nil
}

// NormalizeDecision maps an API decision verb to the stored status.
func NormalizeDecision(decision string) (string, *DomainError) {
	switch decision {
	case DecisionApprove, models.SubmissionStatusApproved:
		return models.SubmissionStatusApproved, nil
	case DecisionReject, models.SubmissionStatusRejected:
		return models.SubmissionStatusRejected, nil
	}
	return "", NewDomainError(CodeInvalidDecision, "decision must be approve or reject")
}
