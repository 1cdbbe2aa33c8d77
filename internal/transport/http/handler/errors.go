package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/diary-service/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer     = "Internal server error"
	errInvalidCredentials = "Invalid credentials"
	errUnauthorized       = "Unauthorized"
	errEmailTaken         = "Email already registered"
	errDiaryNotFound      = "Diary not found"
	errFileRequired       = "CSV file is required in form field \"file\""
	errFileTooLarge       = "CSV file is too large"
	errMalformedCSV       = "Malformed CSV file"
)

// respondError maps domain errors onto status codes. Anything unrecognised
// is logged and reported as a 500.
func respondError(ctx *gin.Context, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDiaryNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": errDiaryNotFound})
	case errors.Is(err, domain.ErrInvalidCredentials):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrUserNotFound):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
	case errors.Is(err, domain.ErrEmailTaken):
		ctx.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
	default:
		logger.ErrorContext(ctx.Request.Context(), op, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
