// Package usecase sequences code verification, identity resolution and token minting.
package usecase

import "errors"

var (
	// ErrInvalidOrExpiredCode is returned when the submitted code is wrong, consumed or expired.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
)
