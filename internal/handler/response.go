package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"coursevault/internal/domain"
	"coursevault/internal/signer"
)

// RespondError sends an error response in the boundary's wire shape:
// a 4xx/5xx status with {"error": "..."}. Callers treat any non-2xx as
// fatal for that call.
func RespondError(c *gin.Context, status int, msg string) {
	c.JSON(status, signer.ErrorResponse{Error: msg})
}

// MapDomainError translates a domain error into an HTTP status code.
func MapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSizeLimitExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrSignRequestFailed), errors.Is(err, domain.ErrCommitFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, err.Error())
}
