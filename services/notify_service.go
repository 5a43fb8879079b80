package services

import (
	"fmt"
	"log"

	"audio-screening-api/config"
	"audio-screening-api/models"
)

// SendDecisionEmail tells the submitting artist about the decision. Delivery
// is best effort: failures are logged, never propagated, so a mail outage
// cannot roll back a decision.
func SendDecisionEmail(submission *models.Submission, artist *models.User) {
	if artist == nil || artist.Email == "" {
		return
	}

	verdict := "approved"
	if submission.Status == models.SubmissionStatusRejected {
		verdict = "rejected"
	}

	subject := fmt.Sprintf("Your submission %s was %s", submission.SubmissionNumber, verdict)
	body := fmt.Sprintf("<p>Hello %s,</p><p>Your audio submission <b>%s</b> has been <b>%s</b>.</p>",
		artist.FullName, submission.SubmissionNumber, verdict)
	if submission.DecisionNote != nil && *submission.DecisionNote != "" {
		body += fmt.Sprintf("<p>Reviewer note: %s</p>", *submission.DecisionNote)
	}

	if err := config.SendMail([]string{artist.Email}, subject, body); err != nil {
		log.Printf("Warning: failed to send decision email for submission %d: %v", submission.SubmissionID, err)
	}
}
