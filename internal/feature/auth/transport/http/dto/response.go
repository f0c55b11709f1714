package dto

import "login_backend/internal/feature/identity/domain/entity"

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

// MessageRes is a plain acknowledgement.
type MessageRes struct {
	Message string `json:"message"`
}

// ErrorRes is returned for every failure.
type ErrorRes struct {
	Error string `json:"error"`
}

// TokenRes is returned by the phone register/login endpoints.
type TokenRes struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserRes is the public view of a user.
type UserRes struct {
	ID              uint    `json:"id"`
	Phone           *string `json:"phone"`
	IsPhoneVerified bool    `json:"is_phone_verified"`
	Nickname        *string `json:"nickname"`
	Avatar          *string `json:"avatar"`
	WechatOpenID    *string `json:"wechat_openid"`
	WechatUnionID   *string `json:"wechat_unionid"`
	IsActive        bool    `json:"is_active"`
}

// WechatLoginRes is returned by /auth/wechat/login.
type WechatLoginRes struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type"`
	IsPhoneBound bool    `json:"is_phone_bound"`
	IsNewUser    bool    `json:"is_new_user"`
	User         UserRes `json:"user"`
}

// NewUserRes converts the entity to its public view.
func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		ID:              u.ID,
		Phone:           u.Phone,
		IsPhoneVerified: u.PhoneVerified,
		Nickname:        u.Nickname,
		Avatar:          u.Avatar,
		WechatOpenID:    u.WechatOpenID,
		WechatUnionID:   u.WechatUnionID,
		IsActive:        u.IsActive,
	}
}
