// Package entity defines the domain entities for the identity feature.
package entity

import "time"

// User is the durable account that phone and WeChat identities resolve to.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Phone is unique across users when set.
	Phone         *string `gorm:"uniqueIndex;size:20"`
	PhoneVerified bool    `gorm:"not null;default:false"`

	// WechatOpenID is scoped to one WeChat application and unique when set.
	WechatOpenID *string `gorm:"uniqueIndex;size:100"`

	// WechatUnionID is stable across the organization's WeChat applications.
	// Not unique.
	WechatUnionID *string `gorm:"index;size:100"`

	// Nickname と Avatar は一度設定されたらOAuthログインで上書きしない。
	Nickname *string `gorm:"size:100"`
	Avatar   *string `gorm:"size:500"`

	IsActive bool `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPhoneBound reports whether a verified phone is attached.
func (u *User) IsPhoneBound() bool {
	return u.Phone != nil && *u.Phone != "" && u.PhoneVerified
}

// StringValue dereferences an optional column, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// OptionalString returns nil for "" so empty values stay NULL in storage.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
