package models

import "time"

// SubmissionScore is the derived aggregate for a submission. It is always
// recomputed from the full current review set and is never hand-edited.
// All score fields are null while the submission has no reviews.
type SubmissionScore struct {
	SubmissionID            int       `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	ReviewCount             int       `gorm:"column:review_count" json:"review_count"`
	RawAvgScore             *float64  `gorm:"column:raw_avg_score" json:"raw_avg_score,omitempty"`
	ConfidenceMultiplier    *float64  `gorm:"column:confidence_multiplier" json:"confidence_multiplier,omitempty"`
	ConfidenceAdjustedScore *float64  `gorm:"column:confidence_adjusted_score" json:"confidence_adjusted_score,omitempty"`
	TimeDecayMultiplier     *float64  `gorm:"column:time_decay_multiplier" json:"time_decay_multiplier,omitempty"`
	IndexedScore            *int      `gorm:"column:indexed_score" json:"indexed_score,omitempty"`
	HotIndexedScore         *int      `gorm:"column:hot_indexed_score" json:"hot_indexed_score,omitempty"`
	CalculatedAt            time.Time `gorm:"column:calculated_at" json:"calculated_at"`
}

func (SubmissionScore) TableName() string {
	return "submission_scores"
}
