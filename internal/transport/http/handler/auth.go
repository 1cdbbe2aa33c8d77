package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/diary-service/internal/domain"
	"github.com/ErlanBelekov/diary-service/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	DeleteAccount(ctx context.Context, userID int64) error
}

// CookieConfig describes the session cookie set at login.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

type AuthHandler struct {
	authUsecase authUsecaser
	cookie      CookieConfig
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		cookie:      cookie,
		logger:      logger.With("component", "auth_handler"),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"    binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

type profileUser struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

// POST /auth/register
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req credentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authUsecase.Register(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(ctx, h.logger, "register", err)
		return
	}

	ctx.JSON(http.StatusCreated, registerResponse{ID: user.ID, Email: user.Email})
}

// POST /auth/login
// Sets the session cookie and also returns the token for bearer clients.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, err := h.authUsecase.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(ctx, h.logger, "login", err)
		return
	}

	h.setCookie(ctx, accessToken, int(h.cookie.MaxAge.Seconds()))
	ctx.JSON(http.StatusOK, loginResponse{AccessToken: accessToken})
}

// POST /auth/logout
// Only the cookie is cleared. Tokens already handed out stay valid until
// they expire.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.setCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// GET /auth/profile
func (h *AuthHandler) Profile(ctx *gin.Context) {
	claims, ok := ctx.MustGet(middleware.ClaimsKey).(domain.Claims)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": profileUser{UserID: claims.UserID, Email: claims.Email}})
}

// DELETE /auth/account
// Removes the caller and all of their diaries.
func (h *AuthHandler) DeleteAccount(ctx *gin.Context) {
	userID := ctx.GetInt64(middleware.UserIDKey)
	if err := h.authUsecase.DeleteAccount(ctx.Request.Context(), userID); err != nil {
		respondError(ctx, h.logger, "delete account", err)
		return
	}

	h.setCookie(ctx, "", -1)
	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) setCookie(ctx *gin.Context, value string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
