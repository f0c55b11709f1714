// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"login_backend/internal/feature/auth/transport/http/dto"
	authusecase "login_backend/internal/feature/auth/usecase"
	"login_backend/internal/feature/identity/domain/entity"
	identity "login_backend/internal/feature/identity/usecase"
	verification "login_backend/internal/feature/verification/usecase"
	jwtmw "login_backend/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	RequestCode(ctx context.Context, phone string) error
	RegisterByPhone(ctx context.Context, phone, code, nickname string) (string, error)
	LoginByPhone(ctx context.Context, phone, code string) (string, error)
	LoginByWechat(ctx context.Context, providerCode string) (*authusecase.WechatLoginResult, error)
	BindPhone(ctx context.Context, userID uint, phone, code string) (*entity.User, error)
	Me(ctx context.Context, userID uint) (*entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// errorMapping は業務エラーをHTTPステータスとユーザー向けメッセージに対応付けます。
// 上から順に評価するため、ラップされたエラーは具体的なものを先に置く。
var errorMapping = []struct {
	err     error
	status  int
	message string
}{
	{verification.ErrRateLimited, http.StatusTooManyRequests, "请求过于频繁，请稍后再试"},
	{verification.ErrChannel, http.StatusServiceUnavailable, "短信发送失败，请稍后再试"},
	{authusecase.ErrInvalidOrExpiredCode, http.StatusBadRequest, "验证码错误或已过期"},
	{identity.ErrAlreadyRegistered, http.StatusConflict, "该手机号已注册"},
	{identity.ErrPhoneAlreadyBound, http.StatusConflict, "该手机号已被其他账号绑定"},
	{identity.ErrConflict, http.StatusConflict, "账号信息冲突，请重试"},
	{identity.ErrUserDisabled, http.StatusForbidden, "用户已被禁用"},
	{identity.ErrUserNotFound, http.StatusNotFound, "用户不存在"},
}

// writeError maps err to a status and message. Unknown errors become 500 without details.
func writeError(c *gin.Context, op string, err error) {
	var perr *identity.ProviderError
	if errors.As(err, &perr) {
		slog.Warn(op+" failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadGateway, dto.ErrorRes{Error: "微信授权失败: " + perr.Message})
		return
	}

	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			slog.Warn(op+" failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(m.status, dto.ErrorRes{Error: m.message})
			return
		}
	}

	slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "服务器内部错误"})
}

func bindJSON(c *gin.Context, op string, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

// currentUserID は AuthRequired ミドルウェアが設定したユーザーIDを取り出します。
func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(jwtmw.ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// SendSMS は認証コード送信APIエンドポイントを処理します。
// - 同一電話番号はクールダウン中429
// - 送信失敗時は503
func (h *AuthHandler) SendSMS(c *gin.Context) {
	var req dto.SendSMSReq
	if !bindJSON(c, "send sms", &req) {
		return
	}
	if err := h.auth.RequestCode(c.Request.Context(), req.Phone); err != nil {
		writeError(c, "send sms", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "验证码已发送"})
}

// RegisterByPhone は電話番号での新規登録APIエンドポイントを処理します。
func (h *AuthHandler) RegisterByPhone(c *gin.Context) {
	var req dto.PhoneRegisterReq
	if !bindJSON(c, "phone register", &req) {
		return
	}
	token, err := h.auth.RegisterByPhone(c.Request.Context(), req.Phone, req.Code, req.Nickname)
	if err != nil {
		writeError(c, "phone register", err)
		return
	}
	slog.Info("phone register successful", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenRes{AccessToken: token, TokenType: dto.TokenTypeBearer})
}

// LoginByPhone は電話番号＋コードでのログインAPIエンドポイントを処理します。
// 未登録の電話番号は自動で登録されます。
func (h *AuthHandler) LoginByPhone(c *gin.Context) {
	var req dto.PhoneLoginReq
	if !bindJSON(c, "phone login", &req) {
		return
	}
	token, err := h.auth.LoginByPhone(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		writeError(c, "phone login", err)
		return
	}
	slog.Info("phone login successful", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenRes{AccessToken: token, TokenType: dto.TokenTypeBearer})
}

// LoginByWechat は WeChat ログインAPIエンドポイントを処理します。
func (h *AuthHandler) LoginByWechat(c *gin.Context) {
	var req dto.WechatLoginReq
	if !bindJSON(c, "wechat login", &req) {
		return
	}
	res, err := h.auth.LoginByWechat(c.Request.Context(), req.Code)
	if err != nil {
		writeError(c, "wechat login", err)
		return
	}
	slog.Info("wechat login successful", "user_id", res.User.ID, "new_user", res.IsNewUser, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.WechatLoginRes{
		AccessToken:  res.AccessToken,
		TokenType:    dto.TokenTypeBearer,
		IsPhoneBound: res.IsPhoneBound,
		IsNewUser:    res.IsNewUser,
		User:         dto.NewUserRes(res.User),
	})
}

// BindPhone はログイン中ユーザーへの電話番号紐付けAPIエンドポイントを処理します。
func (h *AuthHandler) BindPhone(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "unauthorized"})
		return
	}
	var req dto.BindPhoneReq
	if !bindJSON(c, "bind phone", &req) {
		return
	}
	u, err := h.auth.BindPhone(c.Request.Context(), userID, req.Phone, req.Code)
	if err != nil {
		writeError(c, "bind phone", err)
		return
	}
	slog.Info("bind phone successful", "user_id", userID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewUserRes(u))
}

// Me はログイン中のユーザー情報を返します。
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "unauthorized"})
		return
	}
	u, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		writeError(c, "me", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(u))
}
