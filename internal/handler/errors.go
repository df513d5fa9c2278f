package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
	"github.com/yourusername/trivia-engine/internal/source/opentdb"
)

// errorStatus сопоставляет ошибку сервиса HTTP статусу и error_type
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperrors.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func handleError(c *gin.Context, component string, err error) {
	status, errType := errorStatus(err)
	if opentdb.IsRetryable(err) {
		c.Header("Retry-After", strconv.Itoa(int(opentdb.RetryAfter.Seconds())))
	}
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: Internal server error in %s: %v", component, err)
		c.JSON(status, gin.H{"error": "Internal server error", "error_type": errType})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "error_type": errType})
}
