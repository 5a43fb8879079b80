package models

import "time"

// Metric scale bounds. Each rubric metric is scored 0 ("strongly disliked")
// through 4 ("strongly liked"); the neutral midpoint is 2.
const (
	MetricScoreMin      = 0
	MetricScoreMax      = 4
	MetricScoreMidpoint = 2

	// RatingMax is the maximum summed rating across the three metrics.
	RatingMax = 12
)

// MetricScaleLabels maps metric scores to their qualitative meaning.
var MetricScaleLabels = map[int]string{
	0: "strongly disliked",
	1: "disliked",
	2: "neutral",
	3: "liked",
	4: "strongly liked",
}

// Review is one reviewer's evaluation of a submission across the three rubric
// metrics: track selection/identity, flow/energy, technical execution.
// At most one review exists per (submission, reviewer) pair.
type Review struct {
	ReviewID              int        `gorm:"primaryKey;column:review_id" json:"review_id"`
	SubmissionID          int        `gorm:"column:submission_id;uniqueIndex:idx_review_submission_reviewer" json:"submission_id"`
	ReviewerID            int        `gorm:"column:reviewer_id;uniqueIndex:idx_review_submission_reviewer" json:"reviewer_id"`
	TrackScore            int        `gorm:"column:track_score" json:"track_score"`
	VibeScore             int        `gorm:"column:vibe_score" json:"vibe_score"`
	TechnicalScore        int        `gorm:"column:technical_score" json:"technical_score"`
	Rating                int        `gorm:"column:rating" json:"rating"` // sum of the three metrics, 0-12
	InternalNote          *string    `gorm:"column:internal_note" json:"internal_note,omitempty"`
	ListenDurationSeconds int        `gorm:"column:listen_duration_seconds" json:"listen_duration_seconds"`
	CreateAt              *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt              *time.Time `gorm:"column:update_at" json:"update_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// ComputeRating sums the three metric scores.
func (r *Review) ComputeRating() int {
	return r.TrackScore + r.VibeScore + r.TechnicalScore
}

// ValidMetricScore reports whether v is within the 0-4 metric scale.
func ValidMetricScore(v int) bool {
	return v >= MetricScoreMin && v <= MetricScoreMax
}

// ClampMetricScore forces v into the 0-4 metric scale.
func ClampMetricScore(v int) int {
	if v < MetricScoreMin {
		return MetricScoreMin
	}
	if v > MetricScoreMax {
		return MetricScoreMax
	}
	return v
}

// NormalizeLegacyScore maps a legacy 1-5 rating onto the 0-4 scale. Missing
// values fall back to the neutral midpoint; out-of-range values clamp.
func NormalizeLegacyScore(raw *int) int {
	if raw == nil {
		return MetricScoreMidpoint
	}
	return ClampMetricScore(*raw - 1)
}
