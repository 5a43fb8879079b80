package services

import (
	"math"
	"time"

	"audio-screening-api/models"
)

// ScoreResult is the output of one scoring pass. All score fields are nil
// when the review set is empty.
type ScoreResult struct {
	ReviewCount             int
	RawAvgScore             *float64
	ConfidenceMultiplier    *float64
	ConfidenceAdjustedScore *float64
	TimeDecayMultiplier     *float64
	IndexedScore            *int
	HotIndexedScore         *int
}

// ComputeScore derives the aggregate score for a submission from its full
// current review set. It is pure and order-independent: recomputing from an
// unchanged review set always yields identical output.
func ComputeScore(reviews []models.Review, cfg models.ScreeningConfig, approvedAt *time.Time, now time.Time) ScoreResult {
	result := ScoreResult{ReviewCount: len(reviews)}
	if len(reviews) == 0 {
		return result
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	rawAvg := float64(sum) / float64(len(reviews))

	confidence := cfg.ConfidenceMultiplier(len(reviews))
	adjusted := rawAvg * confidence
	indexed := IndexRating(adjusted)

	decay := TimeDecayMultiplier(cfg, approvedAt, now)
	hot := HotIndexedScore(indexed, decay)

	result.RawAvgScore = &rawAvg
	result.ConfidenceMultiplier = &confidence
	result.ConfidenceAdjustedScore = &adjusted
	result.TimeDecayMultiplier = &decay
	result.IndexedScore = &indexed
	result.HotIndexedScore = &hot
	return result
}

// IndexRating rescales a confidence-adjusted rating from the 0-12 rating
// domain onto 0-100.
func IndexRating(adjusted float64) int {
	return int(math.Round(adjusted / float64(models.RatingMax) * 100))
}

// TimeDecayMultiplier returns 1.0 for submissions that are not approved, and
// an exponential half-life decay of days since approval otherwise, floored at
// the configured minimum so rankings never collapse to zero.
func TimeDecayMultiplier(cfg models.ScreeningConfig, approvedAt *time.Time, now time.Time) float64 {
	if approvedAt == nil {
		return 1.0
	}
	days := now.Sub(*approvedAt).Hours() / 24
	if days <= 0 {
		return 1.0
	}
	decay := math.Pow(0.5, days/cfg.HotScoreHalfLifeDays)
	if decay < cfg.HotScoreMinMultiplier {
		decay = cfg.HotScoreMinMultiplier
	}
	return decay
}

// HotIndexedScore applies a time-decay multiplier to an indexed score.
func HotIndexedScore(indexed int, decay float64) int {
	return int(math.Round(float64(indexed) * decay))
}
