package models

import "time"

// Submission statuses. Transitions are monotonic: once approved or rejected a
// submission is terminal and immutable except for decision note edits.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// Submission contexts.
const (
	SubmissionContextGeneral = "general"
	SubmissionContextEvent   = "event"
	SubmissionContextVenue   = "venue"
)

// Submission is one pending or decided audio set under review.
type Submission struct {
	SubmissionID     int        `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	SubmissionNumber string     `gorm:"column:submission_number;unique" json:"submission_number"`
	ArtistID         int        `gorm:"column:artist_id" json:"artist_id"`
	Context          string     `gorm:"column:context" json:"context"`
	EventID          *int       `gorm:"column:event_id" json:"event_id,omitempty"`
	VenueID          *int       `gorm:"column:venue_id" json:"venue_id,omitempty"`
	RecordingURL     string     `gorm:"column:recording_url" json:"recording_url"`
	ArtistGenres     string     `gorm:"column:artist_genres" json:"artist_genres"` // snapshot taken at intake
	Status           string     `gorm:"column:status" json:"status"`
	HasGenreMismatch bool       `gorm:"column:has_genre_mismatch" json:"has_genre_mismatch"`
	DecidedBy        *int       `gorm:"column:decided_by" json:"decided_by,omitempty"`
	DecidedAt        *time.Time `gorm:"column:decided_at" json:"decided_at,omitempty"`
	DecisionNote     *string    `gorm:"column:decision_note" json:"decision_note,omitempty"`
	// FinalIndexedScore is the all-time ranking value frozen at decision time.
	// Review edits after a decision never change it.
	FinalIndexedScore *int       `gorm:"column:final_indexed_score" json:"final_indexed_score,omitempty"`
	CreateAt          *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt          *time.Time `gorm:"column:update_at" json:"update_at"`

	Artist *User            `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
	Event  *Event           `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Venue  *Venue           `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
	Score  *SubmissionScore `gorm:"foreignKey:SubmissionID;references:SubmissionID" json:"score,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// IsDecided reports whether the submission has reached a terminal status.
func (s *Submission) IsDecided() bool {
	return s.Status == SubmissionStatusApproved || s.Status == SubmissionStatusRejected
}

// ValidContext reports whether ctx is a known submission context.
func ValidContext(ctx string) bool {
	switch ctx {
	case SubmissionContextGeneral, SubmissionContextEvent, SubmissionContextVenue:
		return true
	}
	return false
}
