package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"login_backend/internal/feature/identity/domain/entity"
	identity "login_backend/internal/feature/identity/usecase"
)

// CodeVerifier は認証コードの発行と検証を抽象化します。
// Goの慣例に従い、インターフェースはコンシューマー（usecase）が定義します。
type CodeVerifier interface {
	RequestCode(ctx context.Context, phone string) error
	Verify(ctx context.Context, phone, code string) (bool, error)
}

// IdentityResolver はアカウントの検索・作成・紐付けを抽象化します。
type IdentityResolver interface {
	LoginOrRegisterByPhone(ctx context.Context, phone, nickname string) (*entity.User, error)
	RegisterByPhone(ctx context.Context, phone, nickname string) (*entity.User, error)
	LoginByOAuth(ctx context.Context, id entity.ProviderIdentity) (*entity.User, bool, error)
	BindPhone(ctx context.Context, u *entity.User, phone string) (*entity.User, error)
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// OAuthExchange は OAuth の code をプロバイダーのユーザー情報に交換します。
type OAuthExchange interface {
	ExchangeCodeForIdentity(ctx context.Context, code string) (entity.ProviderIdentity, error)
}

// TokenIssuer はJWTトークン生成のインターフェースを定義します。
type TokenIssuer interface {
	Mint(subjectID uint, ttl time.Duration) (string, error)
}

// WechatLoginResult is the outcome of a WeChat login.
type WechatLoginResult struct {
	AccessToken  string
	User         *entity.User
	IsNewUser    bool
	IsPhoneBound bool
}

// authUsecase は認証フローを組み立てます。
type authUsecase struct {
	codes    CodeVerifier
	resolver IdentityResolver
	oauth    OAuthExchange
	tokens   TokenIssuer
	tokenTTL time.Duration
	logger   *slog.Logger
}

// Option configures an authUsecase.
type Option func(*authUsecase)

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(u *authUsecase) { u.logger = l }
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(codes CodeVerifier, resolver IdentityResolver, oauth OAuthExchange, tokens TokenIssuer, tokenTTL time.Duration, opts ...Option) *authUsecase {
	u := &authUsecase{
		codes:    codes,
		resolver: resolver,
		oauth:    oauth,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// RequestCode は電話番号に認証コードを送信します。
func (u *authUsecase) RequestCode(ctx context.Context, phone string) error {
	return u.codes.RequestCode(ctx, phone)
}

// RegisterByPhone はコード検証後に新規ユーザーを作成し、トークンを返します。
func (u *authUsecase) RegisterByPhone(ctx context.Context, phone, code, nickname string) (string, error) {
	if err := u.verify(ctx, phone, code); err != nil {
		return "", err
	}
	user, err := u.resolver.RegisterByPhone(ctx, phone, nickname)
	if err != nil {
		return "", err
	}
	return u.mint(user)
}

// LoginByPhone はコード検証後にユーザーを検索または作成し、トークンを返します。
func (u *authUsecase) LoginByPhone(ctx context.Context, phone, code string) (string, error) {
	if err := u.verify(ctx, phone, code); err != nil {
		return "", err
	}
	user, err := u.resolver.LoginOrRegisterByPhone(ctx, phone, "")
	if err != nil {
		return "", err
	}
	return u.mint(user)
}

// LoginByWechat は WeChat の code でログインします。
// 交換に失敗した場合はユーザーを作成しません。
func (u *authUsecase) LoginByWechat(ctx context.Context, providerCode string) (*WechatLoginResult, error) {
	id, err := u.oauth.ExchangeCodeForIdentity(ctx, providerCode)
	if err != nil {
		return nil, err
	}
	user, isNew, err := u.resolver.LoginByOAuth(ctx, id)
	if err != nil {
		return nil, err
	}
	token, err := u.mint(user)
	if err != nil {
		return nil, err
	}
	return &WechatLoginResult{
		AccessToken:  token,
		User:         user,
		IsNewUser:    isNew,
		IsPhoneBound: user.IsPhoneBound(),
	}, nil
}

// BindPhone はログイン中のユーザーにコード検証済みの電話番号を紐付けます。
func (u *authUsecase) BindPhone(ctx context.Context, userID uint, phone, code string) (*entity.User, error) {
	user, err := u.resolver.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, identity.ErrUserDisabled
	}
	if err := u.verify(ctx, phone, code); err != nil {
		return nil, err
	}
	return u.resolver.BindPhone(ctx, user, phone)
}

// Me はログイン中のユーザーを返します。
func (u *authUsecase) Me(ctx context.Context, userID uint) (*entity.User, error) {
	user, err := u.resolver.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, identity.ErrUserDisabled
	}
	return user, nil
}

func (u *authUsecase) verify(ctx context.Context, phone, code string) error {
	ok, err := u.codes.Verify(ctx, phone, code)
	if err != nil {
		return fmt.Errorf("failed to verify code: %w", err)
	}
	if !ok {
		return ErrInvalidOrExpiredCode
	}
	return nil
}

func (u *authUsecase) mint(user *entity.User) (string, error) {
	token, err := u.tokens.Mint(user.ID, u.tokenTTL)
	if err != nil {
		u.logger.Error("failed to mint token", "user_id", user.ID, "error", err)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
