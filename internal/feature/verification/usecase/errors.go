// Package usecase implements the one-time verification code lifecycle.
package usecase

import "errors"

var (
	// ErrRateLimited is returned when a cooldown marker exists for the phone.
	ErrRateLimited = errors.New("verification code requested too frequently")

	// ErrChannel is returned when code delivery failed or timed out.
	ErrChannel = errors.New("verification code delivery failed")

	// ErrChannelNotConfigured is reported by a CodeChannel that has no provider credentials.
	// Outside production it enables the log-only development fallback.
	ErrChannelNotConfigured = errors.New("verification code channel not configured")
)
