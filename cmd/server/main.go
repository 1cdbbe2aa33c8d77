package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/diary-service/config"
	"github.com/ErlanBelekov/diary-service/internal/health"
	"github.com/ErlanBelekov/diary-service/internal/infrastructure/memory"
	"github.com/ErlanBelekov/diary-service/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/diary-service/internal/log"
	"github.com/ErlanBelekov/diary-service/internal/metrics"
	"github.com/ErlanBelekov/diary-service/internal/repository"
	"github.com/ErlanBelekov/diary-service/internal/token"
	httptransport "github.com/ErlanBelekov/diary-service/internal/transport/http"
	"github.com/ErlanBelekov/diary-service/internal/transport/http/handler"
	"github.com/ErlanBelekov/diary-service/internal/transport/http/middleware"
	"github.com/ErlanBelekov/diary-service/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

type storage struct {
	users   repository.UserRepository
	diaries repository.DiaryRepository
	checks  []health.Check
	close   func()
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		stop()
		log.Fatalf("storage: %v", err)
	}
	defer store.close()

	tokens := token.NewService([]byte(cfg.JWTSecret), cfg.JWTTTL)

	// Auth
	authUsecase := usecase.NewAuthUsecase(store.users, tokens)
	authHandler := handler.NewAuthHandler(authUsecase, handler.CookieConfig{
		Name:   cfg.CookieName,
		MaxAge: cfg.CookieMaxAge,
		Secure: cfg.SecureCookies(),
	}, logger)

	// Diaries
	diaryUsecase := usecase.NewDiaryUsecase(store.diaries)
	diaryHandler := handler.NewDiaryHandler(diaryUsecase, logger)

	// Bulk transfer
	transferUsecase := usecase.NewTransferUsecase(diaryUsecase, logger)
	transferHandler := handler.NewTransferHandler(transferUsecase, cfg.ImportMaxBytes, logger)

	metrics.Register()
	checker := health.NewChecker(cfg.Storage, logger, prometheus.DefaultRegisterer, store.checks...)

	authLimiter := middleware.NewIPRateLimiter(cfg.AuthRateRPS, cfg.AuthRateBurst)
	go authLimiter.Cleanup(ctx, time.Minute)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, httptransport.Handlers{
			Auth:     authHandler,
			Diary:    diaryHandler,
			Transfer: transferHandler,
			Health:   handler.NewHealthHandler(checker),
		}, httptransport.RouterConfig{
			Verifier:    tokens,
			Extractors:  middleware.DefaultExtractors(cfg.CookieName),
			Users:       store.users,
			CORSOrigins: cfg.CORSOrigins,
			HSTS:        cfg.SecureCookies(),
			AuthLimiter: authLimiter,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":" + cfg.MetricsPort)

	go func() {
		logger.Info("server started", "port", cfg.Port, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.Storage == "memory" {
		logger.Warn("using in-memory storage, data is lost on exit")
		s := memory.NewStore()
		return &storage{
			users:   memory.NewUserRepository(s),
			diaries: memory.NewDiaryRepository(s),
			checks:  []health.Check{health.Ping("store", s)},
			close:   func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		users:   postgres.NewUserRepository(pool),
		diaries: postgres.NewDiaryRepository(pool),
		checks: []health.Check{
			health.Ping("database", pool),
			{Name: "schema", Run: func(ctx context.Context) error { return postgres.CheckSchema(ctx, pool) }},
		},
		close: pool.Close,
	}, nil
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
