package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"audio-screening-api/services"
)

// Timer is the shared listen-timer service, wired in main.
var Timer *services.ReviewTimerService

// InitTimer injects the timer service used by the timer and review endpoints.
func InitTimer(svc *services.ReviewTimerService) {
	Timer = svc
}

// respondDomainError maps a domain rule violation to a 409 with its code, so
// clients can tell the specific unmet condition apart from generic failures.
func respondDomainError(c *gin.Context, err *services.DomainError) {
	status := http.StatusConflict
	switch err.Code {
	case services.CodeInsufficientPrivilege, services.CodeBlindUntilContribute:
		status = http.StatusForbidden
	case services.CodeInvalidDecision, services.CodeRecordingUnavailable:
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{
		"error": err.Message,
		"code":  err.Code,
	})
}
