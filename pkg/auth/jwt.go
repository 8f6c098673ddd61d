// Package auth reads the claims of access tokens issued by the UBS API.
//
// The console never holds the signing key. Tokens are parsed without
// verification and used only for session bookkeeping; the API stays the
// authority on whether a token is valid.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformedToken = errors.New("malformed access token")
	ErrTokenExpired   = errors.New("access token expired")
)

// Claims are the fields the console reads from an access token.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Expired reports whether the token is past its exp claim at now.
// A token without exp never expires on the console side.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// TTL returns the remaining lifetime, or fallback when the token has no exp.
func (c Claims) TTL(now time.Time, fallback time.Duration) time.Duration {
	if c.ExpiresAt.IsZero() {
		return fallback
	}
	return c.ExpiresAt.Sub(now)
}

var parser = jwt.NewParser()

// ParseUnverified extracts claims without checking the signature.
func ParseUnverified(token string) (*Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrMalformedToken
	}

	mc := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	claims := &Claims{}
	if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if role, ok := mc["role"].(string); ok {
		claims.Role = role
	}
	return claims, nil
}

// ParseActive is ParseUnverified plus an expiry check against now.
func ParseActive(token string, now time.Time) (*Claims, error) {
	claims, err := ParseUnverified(token)
	if err != nil {
		return nil, err
	}
	if claims.Expired(now) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}
