package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/diary-service/internal/domain"
	"github.com/ErlanBelekov/diary-service/internal/repository"
	"github.com/gin-gonic/gin"
)

// EnsureUser runs after Auth. Tokens outlive the accounts they were issued
// for, so a token whose user has been deleted is rejected here.
func EnsureUser(repo repository.UserRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64(UserIDKey)
		if _, err := repo.FindByID(c.Request.Context(), userID); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
				return
			}
			logger.ErrorContext(c.Request.Context(), "ensure user lookup", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Internal server error"})
			return
		}
		c.Next()
	}
}
