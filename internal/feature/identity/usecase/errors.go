// Package usecase resolves phone and OAuth identities onto a single user record.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user lookup matches no row.
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyRegistered is returned by RegisterByPhone when the phone already has an account.
	ErrAlreadyRegistered = errors.New("phone already registered")

	// ErrPhoneAlreadyBound is returned when binding a phone owned by a different user.
	ErrPhoneAlreadyBound = errors.New("phone already bound to another user")

	// ErrUserDisabled is returned for inactive users on every login path.
	ErrUserDisabled = errors.New("user is disabled")

	// ErrConflict is returned when a uniqueness constraint rejects a write.
	ErrConflict = errors.New("identity conflict")
)

// ProviderError is an OAuth exchange failure carrying the provider's message.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return "oauth provider error: " + e.Message + ": " + e.Err.Error()
	}
	return "oauth provider error: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }
