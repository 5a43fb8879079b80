package models

import "testing"

func TestComputeRating(t *testing.T) {
	review := Review{TrackScore: 4, VibeScore: 3, TechnicalScore: 2}
	if got := review.ComputeRating(); got != 9 {
		t.Fatalf("rating = %d, want 9", got)
	}

	maxed := Review{TrackScore: 4, VibeScore: 4, TechnicalScore: 4}
	if got := maxed.ComputeRating(); got != RatingMax {
		t.Fatalf("rating = %d, want %d", got, RatingMax)
	}
}

func TestNormalizeLegacyScore(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name string
		raw  *int
		want int
	}{
		{"missing falls back to midpoint", nil, MetricScoreMidpoint},
		{"legacy 1 maps to 0", intPtr(1), 0},
		{"legacy 3 maps to 2", intPtr(3), 2},
		{"legacy 5 maps to 4", intPtr(5), 4},
		{"below range clamps low", intPtr(0), 0},
		{"above range clamps high", intPtr(9), 4},
		{"negative clamps low", intPtr(-3), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeLegacyScore(tt.raw); got != tt.want {
				t.Fatalf("NormalizeLegacyScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidMetricScore(t *testing.T) {
	for v := MetricScoreMin; v <= MetricScoreMax; v++ {
		if !ValidMetricScore(v) {
			t.Errorf("ValidMetricScore(%d) = false, want true", v)
		}
	}
	for _, v := range []int{-1, 5, 100} {
		if ValidMetricScore(v) {
			t.Errorf("ValidMetricScore(%d) = true, want false", v)
		}
	}
}
