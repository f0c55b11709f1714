// Package http provides the outbound HTTP client shared by provider adapters.
package http

import (
	"net"
	"net/http"
	"time"
)

// DefaultTimeout is used when the caller passes a non-positive timeout.
const DefaultTimeout = 10 * time.Second

// NewHTTPClient builds the client used for OAuth provider calls.
// プロバイダーは少数のホストのみなので、ホスト単位のアイドル接続を多めに保持する。
// http.DefaultClient はタイムアウトなしのため使わないこと。
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
