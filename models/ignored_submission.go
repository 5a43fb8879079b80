package models

import "time"

// IgnoredSubmission hides a submission from one viewer's queue. It is a
// per-viewer overlay: ignoring never touches the submission or its score.
type IgnoredSubmission struct {
	IgnoreID     int        `gorm:"primaryKey;column:ignore_id" json:"ignore_id"`
	ViewerID     int        `gorm:"column:viewer_id;uniqueIndex:idx_ignored_viewer_submission" json:"viewer_id"`
	SubmissionID int        `gorm:"column:submission_id;uniqueIndex:idx_ignored_viewer_submission" json:"submission_id"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
}

func (IgnoredSubmission) TableName() string {
	return "ignored_submissions"
}
