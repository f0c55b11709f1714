// Package dto defines the WeChat OAuth API response bodies.
package dto

// ErrorFields is embedded by every response; a non-zero ErrCode means failure.
type ErrorFields struct {
	ErrCode int    `json:"errcode,omitempty"`
	ErrMsg  string `json:"errmsg,omitempty"`
}

// AccessTokenResponse is returned by /sns/oauth2/access_token.
type AccessTokenResponse struct {
	ErrorFields
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	OpenID       string `json:"openid"`
	Scope        string `json:"scope"`
	UnionID      string `json:"unionid,omitempty"`
}

// UserInfoResponse is returned by /sns/userinfo.
type UserInfoResponse struct {
	ErrorFields
	OpenID     string `json:"openid"`
	UnionID    string `json:"unionid,omitempty"`
	Nickname   string `json:"nickname"`
	HeadImgURL string `json:"headimgurl"`
}
