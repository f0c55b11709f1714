package wechat

import (
	"context"

	"login_backend/internal/feature/identity/domain/entity"
	"login_backend/internal/feature/identity/usecase"
)

// MockExchange returns a deterministic identity per code. Development only.
type MockExchange struct{}

// ExchangeCodeForIdentity maps code to mock_openid_<code> / mock_unionid_<code>.
func (MockExchange) ExchangeCodeForIdentity(_ context.Context, code string) (entity.ProviderIdentity, error) {
	if code == "" {
		return entity.ProviderIdentity{}, &usecase.ProviderError{Message: "empty code"}
	}
	return entity.ProviderIdentity{
		OpenID:   "mock_openid_" + code,
		UnionID:  "mock_unionid_" + code,
		Nickname: "微信用户",
		Avatar:   "https://thirdwx.qlogo.cn/mmopen/vi_32/mock_avatar/132",
	}, nil
}

// UnconfiguredExchange fails every exchange. Wired when WeChat has no credentials in production.
type UnconfiguredExchange struct{}

func (UnconfiguredExchange) ExchangeCodeForIdentity(context.Context, string) (entity.ProviderIdentity, error) {
	return entity.ProviderIdentity{}, &usecase.ProviderError{Message: "wechat login is not configured"}
}
