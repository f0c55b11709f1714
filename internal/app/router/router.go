package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	authhandler "login_backend/internal/feature/auth/transport/handler"
	"login_backend/internal/platform/http/handler"
	"login_backend/internal/platform/http/middleware"
	jwtmw "login_backend/internal/platform/jwt"
)

func NewRouter(logger *slog.Logger, jwtSecret string, authHandler *authhandler.AuthHandler,
	smsLimiter *middleware.RateLimiter, ready gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logger), gin.Recovery())

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	// 依存先（DB / Redis）の疎通確認
	r.GET("/readyz", ready)

	auth := r.Group("/auth")
	{
		// SMS送信はIP単位でも制限する
		auth.POST("/sms/send", smsLimiter.Limit(), authHandler.SendSMS)
		auth.POST("/phone/register", authHandler.RegisterByPhone)
		auth.POST("/phone/login", authHandler.LoginByPhone)
		auth.POST("/wechat/login", authHandler.LoginByWechat)
	}

	// 認証必須のルート
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	authed := r.Group("/auth")
	authed.Use(jwtmw.AuthRequired(jwtSecret))
	{
		authed.POST("/bind-phone", authHandler.BindPhone)
		authed.GET("/me", authHandler.Me)
	}

	return r
}
