package models

import (
	"strings"
	"time"
)

// Venue is a performance location with an optional genre policy. When
// RequiredGenres is non-empty, submissions targeting the venue are flagged at
// intake if the artist's genres do not overlap it.
type Venue struct {
	VenueID        int        `gorm:"primaryKey;column:venue_id" json:"venue_id"`
	VenueName      string     `gorm:"column:venue_name" json:"venue_name"`
	RequiredGenres string     `gorm:"column:required_genres" json:"required_genres"` // comma separated
	CreateAt       *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

type Event struct {
	EventID   int        `gorm:"primaryKey;column:event_id" json:"event_id"`
	EventName string     `gorm:"column:event_name" json:"event_name"`
	VenueID   *int       `gorm:"column:venue_id" json:"venue_id,omitempty"`
	StartsAt  *time.Time `gorm:"column:starts_at" json:"starts_at,omitempty"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Venue *Venue `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
}

func (Venue) TableName() string {
	return "venues"
}

func (Event) TableName() string {
	return "events"
}

// SplitGenres parses a comma separated genre list into normalized values.
// Empty entries are dropped.
func SplitGenres(s string) []string {
	parts := strings.Split(s, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		g := strings.ToLower(strings.TrimSpace(p))
		if g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

// GenresMismatch reports whether an artist's genres have no overlap with a
// venue's required genres. A venue without a genre policy never mismatches.
func GenresMismatch(artistGenres, requiredGenres string) bool {
	required := SplitGenres(requiredGenres)
	if len(required) == 0 {
		return false
	}
	have := make(map[string]bool, len(required))
	for _, g := range SplitGenres(artistGenres) {
		have[g] = true
	}
	for _, g := range required {
		if have[g] {
			return false
		}
	}
	return true
}
