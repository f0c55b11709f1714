// Package jwtmw mints and verifies the HS256 access tokens handed to clients.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EnvKeyJWTSecret is the environment variable holding the signing secret.
const EnvKeyJWTSecret = "JWT_SECRET"

// ErrEmptySecret is returned when minting without a configured secret.
var ErrEmptySecret = errors.New("jwt secret is not configured")

// Generator mints signed tokens for a subject.
type Generator struct {
	secret []byte
}

// NewGenerator creates a Generator signing with secret.
func NewGenerator(secret string) *Generator {
	return &Generator{secret: []byte(secret)}
}

// Mint creates a signed JWT whose subject is the user id and which expires after ttl.
func (g *Generator) Mint(subjectID uint, ttl time.Duration) (string, error) {
	if len(g.secret) == 0 {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subjectID,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
