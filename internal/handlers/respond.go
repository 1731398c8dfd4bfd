package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/paydesk/paydesk_backend/internal/apperrors"
)

// respondBindingError turns a bind failure into a 400. Validation tag
// failures are reported per field; anything else is surfaced as a format
// error.
func respondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed on '%s'", fe.Field(), fe.Tag()))
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed: " + strings.Join(msgs, "; ")})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
}

// respondServiceError maps service errors onto HTTP statuses. Unrecognized
// errors become a 500 with a generic message; the detail goes to the log only.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "Already exists"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 500 {
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
