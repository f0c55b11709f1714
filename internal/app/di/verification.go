// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"login_backend/internal/feature/verification/adapters"
	"login_backend/internal/feature/verification/usecase"
	"login_backend/internal/platform/config"
)

// NewCodeStore creates a CodeStore implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to an in-process store when APP_ENV=development.
// The in-process store is swept every sweepInterval until ctx is done.
func NewCodeStore(ctx context.Context, rdb *redis.Client, cfg config.Config) (usecase.CodeStore, error) {
	if rdb != nil {
		return adapters.NewCodeRedis(rdb, "sms"), nil
	}
	if !cfg.DevFallbacksEnabled() {
		return nil, ErrRedisRequired
	}
	slog.Warn("Redis unavailable. Verification codes are kept in process memory.")
	mem := adapters.NewCodeMemory()
	go mem.Run(ctx, sweepInterval)
	return mem, nil
}

const sweepInterval = time.Minute

// NewCodeChannel builds the SNS channel with the SMS text rendered for SMSCodeTTL.
// Without SMS_AWS_REGION the channel reports itself as not configured on every send.
func NewCodeChannel(ctx context.Context, appCfg config.Config) (usecase.CodeChannel, error) {
	cfg := adapters.LoadSNSConfig(appCfg.SMSCodeTTL)
	if !cfg.Configured() {
		slog.Warn("SMS provider is not configured")
		return adapters.NewSNSChannelWithClient(nil, cfg), nil
	}
	return adapters.NewSNSChannel(ctx, cfg)
}

// VerificationConfig maps app settings onto the verification service config.
func VerificationConfig(cfg config.Config) usecase.Config {
	return usecase.Config{
		CodeLength:       cfg.SMSCodeLength,
		CodeTTL:          cfg.SMSCodeTTL,
		Cooldown:         cfg.SMSCooldown,
		SendTimeout:      cfg.SMSSendTimeout,
		AllowDevFallback: cfg.DevFallbacksEnabled(),
	}
}
