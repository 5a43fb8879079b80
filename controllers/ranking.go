package controllers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"audio-screening-api/config"
	"audio-screening-api/models"
	"audio-screening-api/services"
)

type RankingEntry struct {
	SubmissionID     int        `json:"submission_id"`
	SubmissionNumber string     `json:"submission_number"`
	ArtistID         int        `json:"artist_id"`
	ArtistName       string     `json:"artist_name"`
	IndexedScore     int        `json:"indexed_score"`
	HotIndexedScore  int        `json:"hot_indexed_score"`
	DecidedAt        *time.Time `json:"decided_at,omitempty"`
}

// GetRankings lists approved submissions ordered by all-time indexed score or
// by trending (hot) score. Indexed scores come from the decision-time freeze;
// the hot score is recomputed here so it tracks the clock without writes.
func GetRankings(c *gin.Context) {
	sortBy := c.DefaultQuery("sort", "indexed")
	if sortBy != "indexed" && sortBy != "hot" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be indexed or hot"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	var submissions []models.Submission
	if err := config.DB.Preload("Artist").
		Where("status = ?", models.SubmissionStatusApproved).
		Where("final_indexed_score IS NOT NULL").
		Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rankings"})
		return
	}

	cfg, err := services.GetScreeningConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	entries := make([]RankingEntry, 0, len(submissions))
	for i := range submissions {
		s := &submissions[i]
		hot := services.ReadTimeHotScore(s, cfg, now)
		if hot == nil {
			continue
		}
		name := ""
		if s.Artist != nil {
			if s.Artist.ArtistName != nil && *s.Artist.ArtistName != "" {
				name = *s.Artist.ArtistName
			} else {
				name = s.Artist.FullName
			}
		}
		entries = append(entries, RankingEntry{
			SubmissionID:     s.SubmissionID,
			SubmissionNumber: s.SubmissionNumber,
			ArtistID:         s.ArtistID,
			ArtistName:       name,
			IndexedScore:     *s.FinalIndexedScore,
			HotIndexedScore:  *hot,
			DecidedAt:        s.DecidedAt,
		})
	}

	if sortBy == "hot" {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].HotIndexedScore > entries[j].HotIndexedScore
		})
	} else {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].IndexedScore > entries[j].IndexedScore
		})
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"sort":     sortBy,
		"rankings": entries,
		"total":    len(entries),
	})
}
