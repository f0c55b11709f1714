// Package wechat exchanges WeChat OAuth authorization codes for user identities.
package wechat

import (
	"os"
	"time"
)

// DefaultBaseURL is the WeChat Open Platform API host.
const DefaultBaseURL = "https://api.weixin.qq.com"

// Config holds configuration for the WeChat OAuth client.
type Config struct {
	AppID     string        // WeChat Open Platform AppID
	AppSecret string        // AppSecret paired with AppID
	BaseURL   string        // API host, overridden in tests
	Timeout   time.Duration // HTTP request timeout
}

// LoadConfig loads WeChat configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("WECHAT_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		AppID:     os.Getenv("WECHAT_APP_ID"),
		AppSecret: os.Getenv("WECHAT_APP_SECRET"),
		BaseURL:   base,
		Timeout:   10 * time.Second,
	}
}

// Configured reports whether both AppID and AppSecret are set.
func (c Config) Configured() bool {
	return c.AppID != "" && c.AppSecret != ""
}
