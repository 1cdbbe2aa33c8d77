package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/diary-service/internal/repository"
	"github.com/ErlanBelekov/diary-service/internal/transport/http/handler"
	"github.com/ErlanBelekov/diary-service/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Diary    *handler.DiaryHandler
	Transfer *handler.TransferHandler
	Health   *handler.HealthHandler
}

type RouterConfig struct {
	Verifier    middleware.TokenVerifier
	Extractors  []middleware.TokenExtractor
	Users       repository.UserRepository
	CORSOrigins []string
	HSTS        bool
	AuthLimiter *middleware.IPRateLimiter
}

func NewRouter(logger *slog.Logger, h Handlers, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(cfg.HSTS))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(sloggin.NewWithConfig(logger, sloggin.Config{
		WithRequestID: false,
		Filters:       []sloggin.Filter{sloggin.IgnorePath("/healthz", "/readyz")},
	}))
	r.Use(middleware.Metrics("/healthz", "/readyz"))

	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	authMW := middleware.Auth(cfg.Verifier, cfg.Extractors)
	ensureUser := middleware.EnsureUser(cfg.Users, logger)
	limit := middleware.RateLimit(cfg.AuthLimiter)

	// Public auth routes
	auth := r.Group("/auth")
	auth.POST("/register", limit, h.Auth.Register)
	auth.POST("/login", limit, h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout)

	// Protected auth routes
	auth.GET("/profile", authMW, h.Auth.Profile)
	auth.DELETE("/account", authMW, ensureUser, h.Auth.DeleteAccount)

	// Protected diary routes
	diaries := r.Group("/diaries", authMW, ensureUser)
	diaries.GET("/export/csv", h.Transfer.Export)
	diaries.POST("/import/csv", h.Transfer.Import)
	diaries.POST("", h.Diary.Create)
	diaries.GET("", h.Diary.List)
	diaries.GET("/:id", h.Diary.GetByID)
	diaries.PUT("/:id", h.Diary.Replace)
	diaries.PATCH("/:id", h.Diary.Patch)
	diaries.DELETE("/:id", h.Diary.Delete)

	return r
}
