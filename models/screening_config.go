package models

import "time"

// Default screening parameters, used when the singleton row is absent or a
// field is out of range.
const (
	DefaultMinReviewsForApproval = 2
	DefaultMinListenTimeSeconds  = 1200 // 20 minutes
	DefaultMinApprovalScore      = 0

	DefaultConfidenceTier2     = 0.70
	DefaultConfidenceTier3     = 0.85
	DefaultConfidenceTier4     = 0.95
	DefaultConfidenceTier5Plus = 1.00

	DefaultHotScoreHalfLifeDays  = 14.0
	DefaultHotScoreMinMultiplier = 0.30
)

// ScreeningConfig is the singleton tunable-parameter row (config_id = 1).
// Confidence tiers discount raw averages while a submission has few reviews.
type ScreeningConfig struct {
	ConfigID              int        `gorm:"primaryKey;column:config_id" json:"config_id"`
	MinReviewsForApproval int        `gorm:"column:min_reviews_for_approval" json:"min_reviews_for_approval"`
	MinListenTimeSeconds  int        `gorm:"column:min_listen_time_seconds" json:"min_listen_time_seconds"`
	MinApprovalScore      int        `gorm:"column:min_approval_score" json:"min_approval_score"`
	ConfidenceTier2       float64    `gorm:"column:confidence_tier_2" json:"confidence_tier_2"`
	ConfidenceTier3       float64    `gorm:"column:confidence_tier_3" json:"confidence_tier_3"`
	ConfidenceTier4       float64    `gorm:"column:confidence_tier_4" json:"confidence_tier_4"`
	ConfidenceTier5Plus   float64    `gorm:"column:confidence_tier_5_plus" json:"confidence_tier_5_plus"`
	HotScoreHalfLifeDays  float64    `gorm:"column:hot_score_half_life_days" json:"hot_score_half_life_days"`
	HotScoreMinMultiplier float64    `gorm:"column:hot_score_min_multiplier" json:"hot_score_min_multiplier"`
	UpdateAt              *time.Time `gorm:"column:update_at" json:"update_at"`
}

func (ScreeningConfig) TableName() string {
	return "screening_config"
}

// DefaultScreeningConfig returns a config populated with defaults.
func DefaultScreeningConfig() ScreeningConfig {
	return ScreeningConfig{
		ConfigID:              1,
		MinReviewsForApproval: DefaultMinReviewsForApproval,
		MinListenTimeSeconds:  DefaultMinListenTimeSeconds,
		MinApprovalScore:      DefaultMinApprovalScore,
		ConfidenceTier2:       DefaultConfidenceTier2,
		ConfidenceTier3:       DefaultConfidenceTier3,
		ConfidenceTier4:       DefaultConfidenceTier4,
		ConfidenceTier5Plus:   DefaultConfidenceTier5Plus,
		HotScoreHalfLifeDays:  DefaultHotScoreHalfLifeDays,
		HotScoreMinMultiplier: DefaultHotScoreMinMultiplier,
	}
}

func validTier(v float64) bool {
	return v > 0 && v <= 1
}

// Normalize repairs out-of-range fields in place. Invalid confidence tiers
// collapse to the lowest valid configured tier (never to full confidence),
// and the tier ladder is forced monotonically non-decreasing in review count.
func (c *ScreeningConfig) Normalize() {
	if c.MinReviewsForApproval < 1 {
		c.MinReviewsForApproval = DefaultMinReviewsForApproval
	}
	if c.MinListenTimeSeconds < 1 {
		c.MinListenTimeSeconds = DefaultMinListenTimeSeconds
	}
	if c.MinApprovalScore < 0 {
		c.MinApprovalScore = DefaultMinApprovalScore
	}

	lowest := 0.0
	for _, v := range []float64{c.ConfidenceTier2, c.ConfidenceTier3, c.ConfidenceTier4, c.ConfidenceTier5Plus} {
		if validTier(v) && (lowest == 0 || v < lowest) {
			lowest = v
		}
	}
	if lowest == 0 {
		// No valid tier configured at all; only then fall back to the default.
		lowest = DefaultConfidenceTier2
	}
	tiers := []*float64{&c.ConfidenceTier2, &c.ConfidenceTier3, &c.ConfidenceTier4, &c.ConfidenceTier5Plus}
	for _, t := range tiers {
		if !validTier(*t) {
			*t = lowest
		}
	}
	// More reviews never reduce confidence.
	for i := 1; i < len(tiers); i++ {
		if *tiers[i] < *tiers[i-1] {
			*tiers[i] = *tiers[i-1]
		}
	}

	if c.HotScoreHalfLifeDays <= 0 {
		c.HotScoreHalfLifeDays = DefaultHotScoreHalfLifeDays
	}
	if c.HotScoreMinMultiplier < 0 || c.HotScoreMinMultiplier > 1 {
		c.HotScoreMinMultiplier = DefaultHotScoreMinMultiplier
	}
}

// ConfidenceMultiplier returns the step-function multiplier for a review
// count. Counts below the lowest tier use the lowest tier's value; counts
// above the highest tier never extrapolate past it.
func (c *ScreeningConfig) ConfidenceMultiplier(reviewCount int) float64 {
	switch {
	case reviewCount <= 2:
		return c.ConfidenceTier2
	case reviewCount == 3:
		return c.ConfidenceTier3
	case reviewCount == 4:
		return c.ConfidenceTier4
	default:
		return c.ConfidenceTier5Plus
	}
}
