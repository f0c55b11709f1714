package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"login_backend/internal/app/di"
	"login_backend/internal/app/router"
	authhandler "login_backend/internal/feature/auth/transport/handler"
	authusecase "login_backend/internal/feature/auth/usecase"
	identityadapters "login_backend/internal/feature/identity/adapters"
	identityusecase "login_backend/internal/feature/identity/usecase"
	verificationusecase "login_backend/internal/feature/verification/usecase"
	"login_backend/internal/platform/config"
	infradb "login_backend/internal/platform/db"
	"login_backend/internal/platform/http/handler"
	"login_backend/internal/platform/http/middleware"
	"login_backend/internal/platform/http/validation"
	jwtmw "login_backend/internal/platform/jwt"
	"login_backend/internal/platform/logger"
	infraredis "login_backend/internal/platform/redis"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	cfg := config.Load()
	log := logger.Init(logger.ConfigFromEnv(cfg.AppEnv))

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JWT_SECRETチェック
	if cfg.JWTSecret == "" {
		if !cfg.DevFallbacksEnabled() {
			return jwtmw.ErrEmptySecret
		}
		log.Warn("JWT_SECRET is not set. Set a strong secret in production.")
	}

	if err := validation.Register(); err != nil {
		return err
	}

	// db
	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, infraredis.LoadConfig()); err != nil {
		log.Warn("Redis unavailable")
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("Failed to close Redis client", "error", err)
			}
		}()
	}

	// Adapters
	codeStore, err := di.NewCodeStore(ctx, rdb, cfg)
	if err != nil {
		return err
	}
	channel, err := di.NewCodeChannel(ctx, cfg)
	if err != nil {
		return err
	}
	userRepo := identityadapters.NewUserGorm(db)

	// Usecase
	verificationUC := verificationusecase.NewVerificationUsecase(codeStore, channel, di.VerificationConfig(cfg),
		verificationusecase.WithLogger(log))
	resolver := identityusecase.NewIdentityResolver(userRepo, identityusecase.WithLogger(log))
	authUC := authusecase.NewAuthUsecase(verificationUC, resolver, di.NewOAuthExchange(cfg),
		jwtmw.NewGenerator(cfg.JWTSecret), cfg.AccessTokenTTL, authusecase.WithLogger(log))

	// Handler
	authH := authhandler.NewAuthHandler(authUC)

	checks := map[string]handler.PingFunc{"db": sqlDB.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.SMSSendRate), cfg.SMSSendBurst)
	go limiter.Run(time.Minute, ctx.Done())

	// ルータ生成
	r := router.NewRouter(log, cfg.JWTSecret, authH, limiter, handler.Ready(2*time.Second, checks))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.AppEnv)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
