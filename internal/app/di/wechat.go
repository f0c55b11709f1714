package di

import (
	"log/slog"

	authusecase "login_backend/internal/feature/auth/usecase"
	"login_backend/internal/feature/identity/adapters/wechat"
	"login_backend/internal/platform/config"
	infrahttp "login_backend/internal/platform/http"
)

// NewOAuthExchange creates a fully configured WeChat exchange with HTTP client.
// 未設定の場合、APP_ENV=development ではモック、それ以外では常に失敗する実装を返す。
func NewOAuthExchange(cfg config.Config) authusecase.OAuthExchange {
	wcfg := wechat.LoadConfig()
	if wcfg.Configured() {
		return wechat.NewExchange(wcfg, infrahttp.NewHTTPClient(wcfg.Timeout))
	}
	if !cfg.DevFallbacksEnabled() {
		slog.Warn("WeChat login is not configured")
		return wechat.UnconfiguredExchange{}
	}
	slog.Warn("WeChat login is not configured. Using mock identities.")
	return wechat.MockExchange{}
}
