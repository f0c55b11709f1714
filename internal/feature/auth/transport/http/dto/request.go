// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// SendSMSReq は /auth/sms/send のリクエストボディです。
type SendSMSReq struct {
	Phone string `json:"phone" binding:"required,mobile"`
}

// PhoneRegisterReq は /auth/phone/register のリクエストボディです。
type PhoneRegisterReq struct {
	Phone    string `json:"phone" binding:"required,mobile"`
	Code     string `json:"code" binding:"required,numeric,min=4,max=10"`
	Nickname string `json:"nickname" binding:"omitempty,max=100"`
}

// PhoneLoginReq は /auth/phone/login のリクエストボディです。
type PhoneLoginReq struct {
	Phone string `json:"phone" binding:"required,mobile"`
	Code  string `json:"code" binding:"required,numeric,min=4,max=10"`
}

// WechatLoginReq は /auth/wechat/login のリクエストボディです。
type WechatLoginReq struct {
	Code string `json:"code" binding:"required,max=256"`
}

// BindPhoneReq は /auth/bind-phone のリクエストボディです。
type BindPhoneReq struct {
	Phone string `json:"phone" binding:"required,mobile"`
	Code  string `json:"code" binding:"required,numeric,min=4,max=10"`
}
