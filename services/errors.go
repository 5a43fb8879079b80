package services

import (
	"errors"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Domain error codes. Each names the specific unmet condition so callers can
// surface it instead of a generic failure.
const (
	CodeInsufficientReviews   = "insufficient_reviews"
	CodeInsufficientPrivilege = "insufficient_privilege"
	CodeAlreadyDecided        = "already_decided"
	CodeReviewNotEligible     = "review_not_eligible"
	CodeDuplicateReview       = "duplicate_review"
	CodeReviewLocked          = "review_locked"
	CodeBlindUntilContribute  = "blind_until_contribute"
	CodeRecordingUnavailable  = "recording_unavailable"
	CodeInvalidDecision       = "invalid_decision"
)

// DomainError is a recoverable, user-facing rule violation, as opposed to a
// resource error (DB/Redis failure) which bubbles up unwrapped.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError builds a DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// AsDomainError unwraps err into a DomainError if it is one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsDuplicateKeyError reports whether err is a unique-constraint violation,
// either GORM's translated sentinel or MySQL error 1062. Concurrent writers
// race past any existence pre-check, so the index violation itself has to be
// recognized and mapped to the domain condition.
func IsDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *gomysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
