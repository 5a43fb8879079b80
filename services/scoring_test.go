package services

import (
	"testing"
	"time"

	"audio-screening-api/models"
)

func reviewsWithRatings(ratings ...int) []models.Review {
	reviews := make([]models.Review, 0, len(ratings))
	for i, r := range ratings {
		reviews = append(reviews, models.Review{
			ReviewID:     i + 1,
			SubmissionID: 1,
			ReviewerID:   i + 1,
			Rating:       r,
		})
	}
	return reviews
}

func testConfig() models.ScreeningConfig {
	cfg := models.DefaultScreeningConfig()
	cfg.Normalize()
	return cfg
}

func TestComputeScoreZeroReviews(t *testing.T) {
	result := ComputeScore(nil, testConfig(), nil, time.Now())

	if result.ReviewCount != 0 {
		t.Fatalf("review count = %d, want 0", result.ReviewCount)
	}
	if result.RawAvgScore != nil || result.ConfidenceMultiplier != nil ||
		result.ConfidenceAdjustedScore != nil || result.IndexedScore != nil ||
		result.HotIndexedScore != nil || result.TimeDecayMultiplier != nil {
		t.Fatal("expected all score fields nil for an empty review set")
	}
}

func TestComputeScoreWorkedExample(t *testing.T) {
	// Three reviews rated 10, 11, 9: mean 10.0, tier-3 confidence 0.85,
	// adjusted 8.5, indexed round(8.5/12*100) = 71.
	cfg := testConfig()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	result := ComputeScore(reviewsWithRatings(10, 11, 9), cfg, nil, now)

	if result.ReviewCount != 3 {
		t.Fatalf("review count = %d, want 3", result.ReviewCount)
	}
	if *result.RawAvgScore != 10.0 {
		t.Errorf("raw avg = %v, want 10.0", *result.RawAvgScore)
	}
	if *result.ConfidenceMultiplier != 0.85 {
		t.Errorf("confidence = %v, want 0.85", *result.ConfidenceMultiplier)
	}
	if *result.IndexedScore != 71 {
		t.Errorf("indexed = %d, want 71", *result.IndexedScore)
	}
	// Not approved: no decay.
	if *result.TimeDecayMultiplier != 1.0 {
		t.Errorf("decay = %v, want 1.0 while pending", *result.TimeDecayMultiplier)
	}
	if *result.HotIndexedScore != 71 {
		t.Errorf("hot = %d, want 71 while pending", *result.HotIndexedScore)
	}

	// Thirty days after approval with a 14-day half-life the raw decay
	// (~0.23) drops below the 0.3 floor, so hot = round(71*0.3) = 21.
	approvedAt := now.Add(-30 * 24 * time.Hour)
	decayed := ComputeScore(reviewsWithRatings(10, 11, 9), cfg, &approvedAt, now)
	if *decayed.TimeDecayMultiplier != cfg.HotScoreMinMultiplier {
		t.Errorf("decay = %v, want floored at %v", *decayed.TimeDecayMultiplier, cfg.HotScoreMinMultiplier)
	}
	if *decayed.HotIndexedScore != 21 {
		t.Errorf("hot = %d, want 21", *decayed.HotIndexedScore)
	}
}

func TestIndexedScoreMonotonicInRawAvg(t *testing.T) {
	cfg := testConfig()
	now := time.Now()

	prev := -1
	// Hold review count fixed at 3 and sweep the ratings upward.
	for rating := 0; rating <= models.RatingMax; rating++ {
		result := ComputeScore(reviewsWithRatings(rating, rating, rating), cfg, nil, now)
		if *result.IndexedScore < prev {
			t.Fatalf("indexed score decreased from %d to %d at rating %d", prev, *result.IndexedScore, rating)
		}
		prev = *result.IndexedScore
	}
}

func TestConfidenceMonotonicInReviewCount(t *testing.T) {
	cfg := testConfig()
	now := time.Now()

	prev := 0.0
	ratings := []int{}
	for count := 1; count <= 8; count++ {
		ratings = append(ratings, 8)
		result := ComputeScore(reviewsWithRatings(ratings...), cfg, nil, now)
		if *result.ConfidenceMultiplier < prev {
			t.Fatalf("confidence decreased from %v to %v at count %d", prev, *result.ConfidenceMultiplier, count)
		}
		prev = *result.ConfidenceMultiplier
	}
}

func TestHotScoreBounds(t *testing.T) {
	cfg := testConfig()
	now := time.Now()

	for _, daysAgo := range []int{0, 1, 7, 14, 30, 365} {
		approvedAt := now.Add(-time.Duration(daysAgo) * 24 * time.Hour)
		result := ComputeScore(reviewsWithRatings(12, 11, 10, 9, 12), cfg, &approvedAt, now)

		if *result.HotIndexedScore > *result.IndexedScore {
			t.Errorf("%d days: hot %d exceeds indexed %d", daysAgo, *result.HotIndexedScore, *result.IndexedScore)
		}
		floor := int(float64(*result.IndexedScore) * cfg.HotScoreMinMultiplier)
		if *result.HotIndexedScore < floor {
			t.Errorf("%d days: hot %d below floor %d", daysAgo, *result.HotIndexedScore, floor)
		}
	}
}

func TestComputeScoreIdempotent(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	approvedAt := now.Add(-10 * 24 * time.Hour)
	reviews := reviewsWithRatings(7, 9, 4, 11)

	first := ComputeScore(reviews, cfg, &approvedAt, now)
	second := ComputeScore(reviews, cfg, &approvedAt, now)

	if *first.RawAvgScore != *second.RawAvgScore ||
		*first.ConfidenceAdjustedScore != *second.ConfidenceAdjustedScore ||
		*first.IndexedScore != *second.IndexedScore ||
		*first.HotIndexedScore != *second.HotIndexedScore {
		t.Fatal("recomputation from an unchanged review set produced different output")
	}
}

func TestConfidenceDiscountBelowLowestTier(t *testing.T) {
	// A single review is below the lowest configured tier and must still be
	// discounted by the lowest tier's multiplier, never extrapolated.
	cfg := testConfig()
	result := ComputeScore(reviewsWithRatings(12), cfg, nil, time.Now())

	if *result.ConfidenceMultiplier != cfg.ConfidenceTier2 {
		t.Errorf("confidence = %v, want lowest tier %v", *result.ConfidenceMultiplier, cfg.ConfidenceTier2)
	}
	if *result.IndexedScore >= 100 {
		t.Errorf("single perfect review should not index at 100, got %d", *result.IndexedScore)
	}
}

func TestTimeDecayMultiplierPendingIsOne(t *testing.T) {
	if got := TimeDecayMultiplier(testConfig(), nil, time.Now()); got != 1.0 {
		t.Fatalf("decay for unapproved submission = %v, want 1.0", got)
	}
}
