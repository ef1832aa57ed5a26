// Package auth issues and validates device tokens. A device token is an
// HS256 JWT whose subject is the device's opaque owner key; it is the only
// identity the itinerary API knows about.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "my-trip-planner"

// ErrInvalidToken is returned for a missing, malformed, expired or
// wrongly-signed device token. Handlers should map this to HTTP 401.
var ErrInvalidToken = errors.New("invalid device token")

// DeviceTokens mints owner keys and the signed tokens that carry them.
type DeviceTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewDeviceTokens creates a DeviceTokens manager.
// secret must be at least 32 characters for HS256 security.
func NewDeviceTokens(secret string, ttl time.Duration) *DeviceTokens {
	return &DeviceTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Device is a newly issued identity.
type Device struct {
	OwnerKey  string
	Token     string
	ExpiresAt time.Time
}

// Issue mints a fresh random owner key and a token for it.
func (m *DeviceTokens) Issue() (Device, error) {
	key, err := uuid.NewRandom()
	if err != nil {
		return Device{}, fmt.Errorf("auth.DeviceTokens.Issue: owner key: %w", err)
	}
	return m.IssueFor(key.String())
}

// IssueFor returns a new token for an existing owner key, e.g. to extend a
// device's session before its token expires.
func (m *DeviceTokens) IssueFor(ownerKey string) (Device, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   ownerKey,
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Device{}, fmt.Errorf("auth.DeviceTokens.IssueFor: sign token: %w", err)
	}
	return Device{OwnerKey: ownerKey, Token: signed, ExpiresAt: exp.Truncate(time.Second)}, nil
}

// ValidateToken parses a device token and returns its owner key.
// The context is unused; it keeps the signature compatible with validators
// that call out to a remote identity service.
func (m *DeviceTokens) ValidateToken(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: token is empty", ErrInvalidToken)
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: subject is not an owner key", ErrInvalidToken)
	}
	return claims.Subject, nil
}
