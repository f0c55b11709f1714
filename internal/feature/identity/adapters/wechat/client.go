package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"login_backend/internal/feature/identity/adapters/wechat/dto"
	"login_backend/internal/feature/identity/domain/entity"
	"login_backend/internal/feature/identity/usecase"
)

// Exchange は WeChat OAuth の code を ProviderIdentity に交換します。
type Exchange struct {
	cfg    Config
	client *http.Client
}

// NewExchange は指定された設定とHTTPクライアントでExchangeの新しいインスタンスを生成します。
func NewExchange(cfg Config, client *http.Client) *Exchange {
	return &Exchange{cfg: cfg, client: client}
}

// ExchangeCodeForIdentity は access_token を取得してからユーザー情報を取得します。
// プロバイダーのエラー応答、非2xx、通信エラーはすべて *usecase.ProviderError になります。
func (e *Exchange) ExchangeCodeForIdentity(ctx context.Context, code string) (entity.ProviderIdentity, error) {
	q := url.Values{}
	q.Set("appid", e.cfg.AppID)
	q.Set("secret", e.cfg.AppSecret)
	q.Set("code", code)
	q.Set("grant_type", "authorization_code")

	var tok dto.AccessTokenResponse
	if err := e.get(ctx, "/sns/oauth2/access_token", q, &tok, &tok.ErrorFields); err != nil {
		return entity.ProviderIdentity{}, err
	}
	if tok.AccessToken == "" || tok.OpenID == "" {
		return entity.ProviderIdentity{}, &usecase.ProviderError{Message: "wechat returned an incomplete access token"}
	}

	q = url.Values{}
	q.Set("access_token", tok.AccessToken)
	q.Set("openid", tok.OpenID)
	q.Set("lang", "zh_CN")

	var info dto.UserInfoResponse
	if err := e.get(ctx, "/sns/userinfo", q, &info, &info.ErrorFields); err != nil {
		return entity.ProviderIdentity{}, err
	}

	id := entity.ProviderIdentity{
		OpenID:   info.OpenID,
		UnionID:  info.UnionID,
		Nickname: info.Nickname,
		Avatar:   info.HeadImgURL,
	}
	if id.OpenID == "" {
		id.OpenID = tok.OpenID
	}
	// userinfoにunionidがなければaccess_token応答のものを使う
	if id.UnionID == "" {
		id.UnionID = tok.UnionID
	}
	return id, nil
}

func (e *Exchange) get(ctx context.Context, path string, q url.Values, out any, errFields *dto.ErrorFields) error {
	u := fmt.Sprintf("%s%s?%s", e.cfg.BaseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &usecase.ProviderError{Message: "failed to build wechat request", Err: err}
	}

	res, err := e.client.Do(req)
	if err != nil {
		slog.Error("wechat request failed", "path", path, "error", err)
		return &usecase.ProviderError{Message: "wechat service unavailable", Err: err}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		slog.Error("wechat returned non-2xx", "path", path, "status", res.StatusCode)
		return &usecase.ProviderError{Message: fmt.Sprintf("wechat http %d", res.StatusCode)}
	}

	// WeChat は text/plain で JSON を返すことがあるため Content-Type は見ない
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &usecase.ProviderError{Message: "invalid wechat response", Err: err}
	}
	if errFields.ErrCode != 0 {
		slog.Error("wechat returned error", "path", path, "errcode", errFields.ErrCode, "errmsg", errFields.ErrMsg)
		msg := errFields.ErrMsg
		if msg == "" {
			msg = "unknown error"
		}
		return &usecase.ProviderError{Message: fmt.Sprintf("wechat error %d: %s", errFields.ErrCode, msg)}
	}
	return nil
}
